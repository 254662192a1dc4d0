package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/database"
	"github.com/google/uuid"
)

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) holiday.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

// ListByRange implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) ListByRange(ctx context.Context, from, to time.Time) ([]holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, holiday_date, name, type, created_at, updated_at
		FROM holidays
		WHERE holiday_date BETWEEN $1 AND $2
		ORDER BY holiday_date
	`

	rows, err := q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var holidays []holiday.Holiday
	for rows.Next() {
		var h holiday.Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Name, &h.Type, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holidays: %w", err)
	}

	return holidays, nil
}

// Upsert implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) Upsert(ctx context.Context, h holiday.Holiday) (holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return holiday.Holiday{}, fmt.Errorf("failed to generate holiday id: %w", err)
	}

	query := `
		INSERT INTO holidays (id, holiday_date, name, type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (holiday_date) DO UPDATE
		SET name = EXCLUDED.name, type = EXCLUDED.type, updated_at = NOW()
		RETURNING id, holiday_date, name, type, created_at, updated_at
	`

	var saved holiday.Holiday
	err = q.QueryRow(ctx, query, id.String(), h.Date, h.Name, h.Type).Scan(
		&saved.ID,
		&saved.Date,
		&saved.Name,
		&saved.Type,
		&saved.CreatedAt,
		&saved.UpdatedAt,
	)
	if err != nil {
		return holiday.Holiday{}, fmt.Errorf("failed to upsert holiday: %w", err)
	}

	return saved, nil
}
