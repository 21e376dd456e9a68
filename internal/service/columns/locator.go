package columns

import (
	"fmt"
	"strconv"
	"strings"
)

// Locator points at a sheet column, by header text or by 0-based index.
type Locator struct {
	Header  string
	Index   int
	byIndex bool
}

func HeaderLocator(header string) Locator {
	return Locator{Header: header}
}

func IndexLocator(index int) Locator {
	return Locator{Index: index, byIndex: true}
}

// ParseLocator reads a locator as typed by a user. "#3" always means the
// fourth column; any other text is a header, which find falls back to
// reading as an index when no header matches.
func ParseLocator(s string) Locator {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "#"); ok {
		if i, err := strconv.Atoi(rest); err == nil {
			return IndexLocator(i)
		}
	}
	return HeaderLocator(s)
}

func (l Locator) ByIndex() bool {
	return l.byIndex
}

func (l Locator) String() string {
	if l.byIndex {
		return fmt.Sprintf("#%d", l.Index)
	}
	return strconv.Quote(l.Header)
}

// find returns the column the locator designates. Header text is matched
// exactly first, then after normalization, then read as an index.
func (l Locator) find(headers, normalized []string) (int, bool) {
	if l.byIndex {
		return l.Index, l.Index >= 0 && l.Index < len(headers)
	}

	for i, h := range headers {
		if h == l.Header {
			return i, true
		}
	}
	key := Normalize(l.Header)
	if key != "" {
		for i, n := range normalized {
			if n == key {
				return i, true
			}
		}
	}
	if i, err := strconv.Atoi(strings.TrimSpace(l.Header)); err == nil && i >= 0 && i < len(headers) {
		return i, true
	}
	return -1, false
}
