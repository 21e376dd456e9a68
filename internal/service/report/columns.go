package report

import (
	"fmt"

	"trumetrapla/internal/service/columns"
)

type FieldInfo struct {
	Name      string   `json:"name"`
	Mandatory bool     `json:"mandatory"`
	Aliases   []string `json:"aliases"`
}

// Fields lists the canonical fields with the aliases in effect, built-in
// ones plus the configured defaults.
func (s *Service) Fields() []FieldInfo {
	table := columns.Builtin().With(s.defaults.Aliases)

	out := make([]FieldInfo, 0, len(columns.Fields()))
	for _, f := range columns.Fields() {
		out = append(out, FieldInfo{
			Name:      f.String(),
			Mandatory: f.Mandatory(),
			Aliases:   table.Aliases(f),
		})
	}
	return out
}

// Suggestion is a partial column mapping for a header row.
type Suggestion struct {
	Columns map[string]string `json:"columns"`
	Missing []string          `json:"missing"`
}

// SuggestColumns proposes a mapping for headers without failing on missing
// mandatory fields.
func (s *Service) SuggestColumns(headers []string, ov columns.Overrides) (Suggestion, error) {
	const op = "service.report.SuggestColumns"

	m, err := columns.Suggest(headers, s.defaults.Merge(ov))
	if err != nil {
		return Suggestion{}, fmt.Errorf("%s: %w", op, err)
	}

	sg := Suggestion{Columns: m.Headers(), Missing: []string{}}
	for _, f := range m.Missing() {
		sg.Missing = append(sg.Missing, f.String())
	}
	return sg, nil
}
