package holiday

import "context"

type HolidayService interface {
	// Import validates the file and upserts every entry in one transaction
	Import(ctx context.Context, file ImportFile) ([]Holiday, error)
}
