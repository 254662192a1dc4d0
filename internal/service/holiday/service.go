package holiday

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/validator"
)

type HolidayServiceImpl struct {
	txManager database.TxManager
	holiday.HolidayRepository
}

func NewHolidayService(txManager database.TxManager, holidayRepo holiday.HolidayRepository) holiday.HolidayService {
	return &HolidayServiceImpl{
		txManager:         txManager,
		HolidayRepository: holidayRepo,
	}
}

// Import implements holiday.HolidayService.
func (s *HolidayServiceImpl) Import(ctx context.Context, file holiday.ImportFile) ([]holiday.Holiday, error) {
	if err := file.Validate(); err != nil {
		return nil, err
	}

	imported := make([]holiday.Holiday, 0, len(file.Holidays))
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		for _, entry := range file.Holidays {
			date, _ := validator.IsValidDate(entry.Date)

			holidayType := holiday.Type(entry.Type)
			if holidayType == "" {
				holidayType = holiday.TypeMandatory
			}

			h, err := s.HolidayRepository.Upsert(txCtx, holiday.Holiday{
				Date: date,
				Name: entry.Name,
				Type: holidayType,
			})
			if err != nil {
				return fmt.Errorf("failed to upsert holiday %s: %w", entry.Date, err)
			}
			imported = append(imported, h)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("holidays imported", "count", len(imported))
	return imported, nil
}
