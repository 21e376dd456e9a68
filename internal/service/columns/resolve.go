package columns

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Overrides are the per-run column directives. They are read-only for the
// resolver and never touch the built-in alias table.
type Overrides struct {
	Columns map[Field]Locator
	Aliases map[Field][]string
}

// ParseOverrides reads "field=column" and "field=alias" directives.
func ParseOverrides(columnDirectives, aliasDirectives []string) (Overrides, error) {
	const op = "columns.ParseOverrides"

	var ov Overrides
	for _, d := range columnDirectives {
		f, value, err := splitDirective(d)
		if err != nil {
			return Overrides{}, fmt.Errorf("%s: column %w", op, err)
		}
		if ov.Columns == nil {
			ov.Columns = make(map[Field]Locator)
		}
		ov.Columns[f] = ParseLocator(value)
	}
	for _, d := range aliasDirectives {
		f, value, err := splitDirective(d)
		if err != nil {
			return Overrides{}, fmt.Errorf("%s: alias %w", op, err)
		}
		if ov.Aliases == nil {
			ov.Aliases = make(map[Field][]string)
		}
		ov.Aliases[f] = append(ov.Aliases[f], value)
	}
	return ov, nil
}

func splitDirective(d string) (Field, string, error) {
	name, value, ok := strings.Cut(d, "=")
	if !ok {
		name, value, ok = strings.Cut(d, ":")
	}
	if !ok || strings.TrimSpace(value) == "" {
		return 0, "", fmt.Errorf("%w %q: expected field=value", ErrInvalidDirective, d)
	}
	f, err := ParseField(name)
	if err != nil {
		return 0, "", fmt.Errorf("directive %q: %w", d, err)
	}
	return f, strings.TrimSpace(value), nil
}

// Merge returns ov with other layered on top: other's columns replace ov's
// for the same field, aliases are concatenated.
func (ov Overrides) Merge(other Overrides) Overrides {
	out := Overrides{
		Columns: make(map[Field]Locator, len(ov.Columns)+len(other.Columns)),
		Aliases: make(map[Field][]string, len(ov.Aliases)+len(other.Aliases)),
	}
	for f, l := range ov.Columns {
		out.Columns[f] = l
	}
	for f, l := range other.Columns {
		out.Columns[f] = l
	}
	for f, a := range ov.Aliases {
		out.Aliases[f] = append(out.Aliases[f], a...)
	}
	for f, a := range other.Aliases {
		out.Aliases[f] = append(out.Aliases[f], a...)
	}
	return out
}

// Resolve binds every canonical field to a column of headers.
//
// Explicit columns are validated and bound first. Remaining fields are
// matched in enumeration order against the alias table extended with
// ov.Aliases; for each field the first unclaimed header in column order
// wins. A missing mandatory field fails with UnresolvedMandatoryFieldError.
func Resolve(headers []string, ov Overrides) (Mapping, error) {
	m, err := Suggest(headers, ov)
	if err != nil {
		return Mapping{}, err
	}

	if missing := m.Missing(); len(missing) > 0 {
		slices.SortFunc(missing, func(a, b Field) int {
			return cmp.Compare(a.String(), b.String())
		})
		return Mapping{}, &UnresolvedMandatoryFieldError{Fields: missing}
	}
	return m, nil
}

// Suggest runs the same matching as Resolve but returns the partial mapping
// when mandatory fields are missing. Invalid explicit columns still fail.
func Suggest(headers []string, ov Overrides) (Mapping, error) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = Normalize(h)
	}

	for f, l := range ov.Columns {
		if !f.Valid() {
			return Mapping{}, &InvalidExplicitColumnError{Field: f, Locator: l, Reason: ErrUnknownField.Error()}
		}
	}

	var m Mapping
	claimed := make([]bool, len(headers))

	for _, f := range Fields() {
		l, ok := ov.Columns[f]
		if !ok {
			continue
		}
		col, found := l.find(headers, normalized)
		if !found {
			return Mapping{}, &InvalidExplicitColumnError{Field: f, Locator: l, Reason: "no such column in the sheet"}
		}
		if claimed[col] {
			return Mapping{}, &InvalidExplicitColumnError{Field: f, Locator: l, Reason: "column already assigned to another field"}
		}
		claimed[col] = true
		m.bind(f, col, headers[col])
	}

	table := Builtin().With(ov.Aliases)
	for _, f := range Fields() {
		if _, bound := m.Column(f); bound {
			continue
		}
		for col, key := range normalized {
			if claimed[col] || key == "" {
				continue
			}
			if table.Matches(f, key) {
				claimed[col] = true
				m.bind(f, col, headers[col])
				break
			}
		}
	}
	return m, nil
}
