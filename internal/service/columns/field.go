package columns

import (
	"errors"
	"fmt"
	"strings"
)

// Field is a canonical column role. The order of the constants is the
// resolution order.
type Field int

const (
	Date Field = iota
	Employee
	Process
	Quantity
	DurationMinutes
	Machine
	ProcessType

	fieldCount
)

var (
	ErrUnknownField     = errors.New("unknown field")
	ErrInvalidDirective = errors.New("invalid directive")
)

var fieldNames = [fieldCount]string{
	Date:            "date",
	Employee:        "employee",
	Process:         "process",
	Quantity:        "quantity",
	DurationMinutes: "duration_minutes",
	Machine:         "machine",
	ProcessType:     "process_type",
}

func (f Field) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

func (f Field) Valid() bool {
	return f >= 0 && f < fieldCount
}

// Mandatory reports whether every sheet must provide a column for f.
func (f Field) Mandatory() bool {
	return f >= Date && f <= DurationMinutes
}

// Fields returns all canonical fields in resolution order.
func Fields() []Field {
	fields := make([]Field, 0, fieldCount)
	for f := Date; f < fieldCount; f++ {
		fields = append(fields, f)
	}
	return fields
}

// ParseField accepts the canonical name, case-insensitive. "duration" and
// "minutes" are accepted for duration_minutes.
func ParseField(s string) (Field, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.ReplaceAll(name, "-", "_")
	switch name {
	case "duration", "minutes":
		return DurationMinutes, nil
	}
	for f, n := range fieldNames {
		if n == name {
			return Field(f), nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownField, s)
}

func (f Field) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w %d", ErrUnknownField, int(f))
	}
	return []byte(fieldNames[f]), nil
}

func (f *Field) UnmarshalText(b []byte) error {
	parsed, err := ParseField(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
