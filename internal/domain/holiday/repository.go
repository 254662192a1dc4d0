package holiday

import (
	"context"
	"time"
)

type HolidayRepository interface {
	// ListByRange returns holidays with from <= date <= to ordered by date
	ListByRange(ctx context.Context, from, to time.Time) ([]Holiday, error)

	// Upsert inserts a holiday or replaces the one already stored on the same date
	Upsert(ctx context.Context, h Holiday) (Holiday, error)
}
