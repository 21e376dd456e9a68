package columns

import (
	"fmt"
	"maps"
	"slices"

	"trumetrapla/internal/constants"
)

// AliasTable holds the normalized header aliases of every canonical field.
// A table is never modified after construction; With returns a new one.
type AliasTable struct {
	sets [fieldCount]map[string]struct{}
}

var builtin = mustBuiltinTable()

// Builtin returns the process-wide table of Italian and English aliases.
func Builtin() AliasTable {
	return builtin
}

func mustBuiltinTable() AliasTable {
	sources := [fieldCount]map[string]bool{
		Date:            constants.DateAliases,
		Employee:        constants.EmployeeAliases,
		Process:         constants.ProcessAliases,
		Quantity:        constants.QuantityAliases,
		DurationMinutes: constants.DurationAliases,
		Machine:         constants.MachineAliases,
		ProcessType:     constants.ProcessTypeAliases,
	}

	var t AliasTable
	for f := Date; f < fieldCount; f++ {
		set := make(map[string]struct{}, len(sources[f]))
		for alias, enabled := range sources[f] {
			if !enabled {
				continue
			}
			if key := Normalize(alias); key != "" {
				set[key] = struct{}{}
			}
		}
		if len(set) == 0 {
			panic(fmt.Sprintf("columns: no built-in aliases for field %s", f))
		}
		t.sets[f] = set
	}
	return t
}

// With returns a copy of t extended with extra aliases. Entries are added,
// never removed, and adding an alias twice has no effect.
func (t AliasTable) With(extra map[Field][]string) AliasTable {
	if len(extra) == 0 {
		return t
	}

	var out AliasTable
	for f := Date; f < fieldCount; f++ {
		out.sets[f] = t.sets[f]
	}
	for f, aliases := range extra {
		if !f.Valid() {
			continue
		}
		set := maps.Clone(out.sets[f])
		if set == nil {
			set = make(map[string]struct{}, len(aliases))
		}
		for _, alias := range aliases {
			if key := Normalize(alias); key != "" {
				set[key] = struct{}{}
			}
		}
		out.sets[f] = set
	}
	return out
}

// Matches reports whether the already normalized header is an alias of f.
func (t AliasTable) Matches(f Field, normalized string) bool {
	if !f.Valid() {
		return false
	}
	_, ok := t.sets[f][normalized]
	return ok
}

// Aliases lists the normalized aliases of f in lexical order.
func (t AliasTable) Aliases(f Field) []string {
	if !f.Valid() {
		return nil
	}
	return slices.Sorted(maps.Keys(t.sets[f]))
}
