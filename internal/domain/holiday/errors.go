package holiday

import "errors"

var (
	ErrHolidayNotFound = errors.New("holiday not found")
	ErrEmptyImport     = errors.New("holiday file contains no entries")
)
