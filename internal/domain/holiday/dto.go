package holiday

import (
	"fmt"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/validator"
)

// ImportFile is the YAML document accepted by the holiday import command.
//
//	holidays:
//	  - date: 2025-01-26
//	    name: Republic Day
//	    type: Mandatory
type ImportFile struct {
	Holidays []ImportEntry `yaml:"holidays"`
}

type ImportEntry struct {
	Date string `yaml:"date"`
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

func (f *ImportFile) Validate() error {
	if len(f.Holidays) == 0 {
		return ErrEmptyImport
	}

	var errs validator.ValidationErrors
	seen := make(map[string]int, len(f.Holidays))

	for i, h := range f.Holidays {
		field := fmt.Sprintf("holidays[%d]", i)

		if _, ok := validator.IsValidDate(h.Date); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".date",
				Message: "date must be in YYYY-MM-DD format",
			})
		} else if prev, dup := seen[h.Date]; dup {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".date",
				Message: fmt.Sprintf("duplicate of holidays[%d]", prev),
			})
		} else {
			seen[h.Date] = i
		}

		if validator.IsEmpty(h.Name) {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".name",
				Message: "name is required",
			})
		}

		if h.Type != "" && !Type(h.Type).IsValid() {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".type",
				Message: "type must be Mandatory or Optional",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
