package columns

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds a header for matching: trims, lower-cases, strips
// diacritics and collapses inner whitespace. "  Quantità   Prodotta " and
// "quantita prodotta" normalize to the same key.
func Normalize(header string) string {
	// transform.Chain keeps state, so each call builds its own.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, header)
	if err != nil {
		folded = header
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
