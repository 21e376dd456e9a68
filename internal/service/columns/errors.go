package columns

import (
	"fmt"
	"strings"
)

// UnresolvedMandatoryFieldError lists the mandatory fields no column was
// found for, sorted by name.
type UnresolvedMandatoryFieldError struct {
	Fields []Field
}

func (e *UnresolvedMandatoryFieldError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.String()
	}
	return fmt.Sprintf("no column found for mandatory field(s): %s; use a column override or an alias", strings.Join(names, ", "))
}

// InvalidExplicitColumnError reports an override pointing at a column the
// sheet does not have, or at a column already claimed by another override.
type InvalidExplicitColumnError struct {
	Field   Field
	Locator Locator
	Reason  string
}

func (e *InvalidExplicitColumnError) Error() string {
	return fmt.Sprintf("column %s for field %s: %s", e.Locator, e.Field, e.Reason)
}
