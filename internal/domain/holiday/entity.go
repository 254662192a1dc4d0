package holiday

import "time"

type Type string

const (
	TypeMandatory Type = "Mandatory"
	TypeOptional  Type = "Optional"
)

func (t Type) IsValid() bool {
	return t == TypeMandatory || t == TypeOptional
}

type Holiday struct {
	ID        string
	Date      time.Time
	Name      string
	Type      Type
	CreatedAt time.Time
	UpdatedAt time.Time
}
