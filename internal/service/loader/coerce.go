package loader

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"trumetrapla/internal/storage"
)

var (
	errNotANumber   = errors.New("not a number")
	errNegative     = errors.New("negative value")
	errFractional   = errors.New("fractional quantity")
	errNotADate     = errors.New("not a recognizable date")
	errNotADuration = errors.New("not a recognizable duration")
	errMissing      = errors.New("missing value")
)

// Layouts tried in order. Day-first comes before month-first, so 03/02/2024
// is 3 February; 12/31/2024 still parses through the month-first fallback.
var dateLayouts = []string{
	time.DateOnly,
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2.1.2006",
	"02/01/06",
	"2/1/06",
	"02.01.06",
	"2.1.06",
	"02-01-06",
	"01/02/2006",
	"1/2/2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	time.DateTime,
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
}

var italianMonths = strings.NewReplacer(
	"gennaio", "January",
	"febbraio", "February",
	"marzo", "March",
	"aprile", "April",
	"maggio", "May",
	"giugno", "June",
	"luglio", "July",
	"agosto", "August",
	"settembre", "September",
	"ottobre", "October",
	"novembre", "November",
	"dicembre", "December",
	"gen", "Jan",
	"feb", "Feb",
	"mar", "Mar",
	"apr", "Apr",
	"mag", "May",
	"giu", "Jun",
	"lug", "Jul",
	"ago", "Aug",
	"set", "Sep",
	"ott", "Oct",
	"nov", "Nov",
	"dic", "Dec",
)

func coerceDate(c storage.Cell) (time.Time, error) {
	switch c.Kind {
	case storage.CellDate:
		return storage.Day(c.Time), nil
	case storage.CellNumber:
		if c.Number < 1 {
			return time.Time{}, errNotADate
		}
		t, err := excelize.ExcelDateToTime(c.Number, false)
		if err != nil {
			return time.Time{}, errNotADate
		}
		return storage.Day(t), nil
	case storage.CellText:
		return parseDate(c.Text)
	}
	return time.Time{}, errNotADate
}

func parseDate(s string) (time.Time, error) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return time.Time{}, errMissing
	}
	translated := italianMonths.Replace(strings.ToLower(s))

	// time.Parse matches month names case-insensitively
	for _, candidate := range []string{s, translated} {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, candidate); err == nil {
				return storage.Day(t), nil
			}
		}
	}
	return time.Time{}, errNotADate
}

func coerceQuantity(c storage.Cell) (int, error) {
	var f float64
	switch c.Kind {
	case storage.CellNumber:
		f = c.Number
	case storage.CellText:
		var err error
		if f, err = parseQuantity(c.Text); err != nil {
			return 0, err
		}
	case storage.CellBlank:
		return 0, errMissing
	default:
		return 0, errNotANumber
	}

	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return 0, errNotANumber
	case f < 0:
		return 0, errNegative
	case f != math.Trunc(f):
		return 0, errFractional
	case f > math.MaxInt32:
		return 0, fmt.Errorf("%w: %v is out of range", errNotANumber, f)
	}
	return int(f), nil
}

func coerceDuration(c storage.Cell) (float64, error) {
	var minutes float64
	switch c.Kind {
	case storage.CellNumber:
		minutes = c.Number
	case storage.CellDuration:
		minutes = c.Duration.Minutes()
	case storage.CellDate:
		// a time-formatted workbook cell: the serial is a fraction of a day
		if c.Number > 0 {
			minutes = c.Number * 24 * 60
		} else {
			minutes = float64(c.Time.Hour()*60+c.Time.Minute()) + float64(c.Time.Second())/60
		}
	case storage.CellText:
		var err error
		if minutes, err = parseDuration(c.Text); err != nil {
			return 0, err
		}
	case storage.CellBlank:
		return 0, errMissing
	}

	if math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return 0, errNotANumber
	}
	if minutes < 0 {
		return 0, errNegative
	}
	return minutes, nil
}

var (
	clockPattern    = regexp.MustCompile(`^(\d+):([0-5]?\d)(?::([0-5]?\d))?$`)
	minutesSuffix   = regexp.MustCompile(`^(.+?)\s*(?:min|mins|minuti|minutes|m|')$`)
	goDurationLike  = regexp.MustCompile(`^(\d+(?:[.,]\d+)?h)?\s*(\d+(?:[.,]\d+)?m)?$`)
	thousandsDotted = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+$`)
)

// parseDuration reads minutes from "90", "90,5", "1:30", "01:30:00",
// "90 min" or "1h30m".
func parseDuration(s string) (float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, errMissing
	}

	if m := clockPattern.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		ss := 0
		if m[3] != "" {
			ss, _ = strconv.Atoi(m[3])
		}
		return float64(h*60+mm) + float64(ss)/60, nil
	}

	if strings.Contains(s, "h") {
		compact := strings.ReplaceAll(s, " ", "")
		if !strings.HasSuffix(compact, "m") && !strings.HasSuffix(compact, "h") {
			// "1h30" means 1h30m
			compact += "m"
		}
		if goDurationLike.MatchString(compact) {
			d, err := time.ParseDuration(strings.ReplaceAll(compact, ",", "."))
			if err == nil {
				return d.Minutes(), nil
			}
		}
		return 0, errNotADuration
	}

	if m := minutesSuffix.FindStringSubmatch(s); m != nil {
		return parseNumber(m[1])
	}

	f, err := parseNumber(s)
	if err != nil {
		return 0, errNotADuration
	}
	return f, nil
}

// parseQuantity reads a piece count. Quantities are whole, so dot groups of
// three digits are always thousands: "12.000" is 12000, "1.500" is 1500.
func parseQuantity(s string) (float64, error) {
	t := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	t = strings.ReplaceAll(t, "\u00a0", "")
	if thousandsDotted.MatchString(t) {
		t = strings.ReplaceAll(t, ".", "")
	}
	return parseNumber(t)
}

// parseNumber accepts both "1234.5" and the Italian "1.234,5". A single dot
// group such as "1.500" stays a decimal; durations use it for fractions.
func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if s == "" {
		return 0, errMissing
	}

	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ",", ".")
	case thousandsDotted.MatchString(s) && strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errNotANumber
	}
	return f, nil
}
