package table

// cast.go turns raw cell text into typed values.
//
// Typed cells matter to row checks: a check inspecting text sees strings,
// while numbers arrive as int64 or float64 and booleans as bool. When the
// resource declares no schema, column types are inferred from a sample of
// rows so that a column of plain numbers is not treated as text.

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// InferenceSampleRows is how many data rows type inference looks at.
const InferenceSampleRows = 100

var (
	integerRegex = regexp.MustCompile(`^[+-]?\d+$`)
	numberRegex  = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
)

var (
	trueValues  = []string{"true", "True", "TRUE", "1"}
	falseValues = []string{"false", "False", "FALSE", "0"}
)

// TwoDigitYearPivot bounds how far in the future a two-digit year may land
// before it is read as the previous century.
var TwoDigitYearPivot = 20

var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"Jan 2, 2006", "2 Jan 2006",
		"20060102",
	}
	datetimeLayouts = []string{
		time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02 15:04",
	}
)

// Cast converts raw to the type of f. Missing values are handled by the
// caller; raw is never empty here unless "" is not a missing value.
func Cast(raw string, f Field) (any, error) {
	switch f.Type {
	case TypeString, TypeAny, "":
		return raw, nil
	case TypeInteger:
		s := strings.TrimSpace(raw)
		if !integerRegex.MatchString(s) {
			return nil, fmt.Errorf("type is \"integer/%s\"", formatName(f))
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("type is \"integer/%s\"", formatName(f))
		}
		return n, nil
	case TypeNumber:
		s := strings.TrimSpace(raw)
		if !numberRegex.MatchString(s) {
			return nil, fmt.Errorf("type is \"number/%s\"", formatName(f))
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("type is \"number/%s\"", formatName(f))
		}
		return n, nil
	case TypeBoolean:
		if b, ok := castBool(strings.TrimSpace(raw)); ok {
			return b, nil
		}
		return nil, fmt.Errorf("type is \"boolean/%s\"", formatName(f))
	case TypeDate:
		if t, ok := castDate(strings.TrimSpace(raw), f.Format); ok {
			return t, nil
		}
		return nil, fmt.Errorf("type is \"date/%s\"", formatName(f))
	case TypeDatetime:
		if t, ok := castDatetime(strings.TrimSpace(raw), f.Format); ok {
			return t, nil
		}
		return nil, fmt.Errorf("type is \"datetime/%s\"", formatName(f))
	}
	return nil, fmt.Errorf("unsupported type %q", f.Type)
}

func formatName(f Field) string {
	if f.Format == "" {
		return "default"
	}
	return f.Format
}

func castBool(s string) (bool, bool) {
	for _, v := range trueValues {
		if s == v {
			return true, true
		}
	}
	for _, v := range falseValues {
		if s == v {
			return false, true
		}
	}
	return false, false
}

// castDate parses s with the field format: "default" is ISO 8601, "any"
// tries the common layouts, anything else is a strptime pattern.
func castDate(s, format string) (time.Time, bool) {
	switch format {
	case "", "default":
		t, err := time.Parse("2006-01-02", s)
		return t, err == nil
	case "any":
		return parseAnyDate(s)
	default:
		t, err := time.Parse(strptimeLayout(format), s)
		return t, err == nil
	}
}

func castDatetime(s, format string) (time.Time, bool) {
	switch format {
	case "", "default":
		t, err := time.Parse(time.RFC3339, s)
		return t, err == nil
	case "any":
		for _, layout := range datetimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return parseAnyDate(s)
	default:
		t, err := time.Parse(strptimeLayout(format), s)
		return t, err == nil
	}
}

// parseAnyDate tries unambiguous four-digit-year layouts first, then
// two-digit years adjusted around TwoDigitYearPivot.
func parseAnyDate(s string) (time.Time, bool) {
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}
	return time.Time{}, false
}

var strptimeDirectives = strings.NewReplacer(
	"%Y", "2006", "%y", "06", "%m", "01", "%d", "02",
	"%H", "15", "%M", "04", "%S", "05", "%b", "Jan", "%B", "January",
	"%z", "-0700", "%Z", "MST", "%%", "%",
)

func strptimeLayout(format string) string {
	return strptimeDirectives.Replace(format)
}

// InferFields derives a string/integer/number/boolean field per column from
// the first InferenceSampleRows rows. Empty cells do not vote.
func InferFields(names []string, rows [][]string) []Field {
	fields := make([]Field, len(names))
	for col, name := range names {
		fields[col] = Field{Name: name, Type: inferColumn(col, rows)}
	}
	return fields
}

func inferColumn(col int, rows [][]string) string {
	isInt, isNum, isBool := true, true, true
	seen := 0

	for i, row := range rows {
		if i >= InferenceSampleRows {
			break
		}
		if col >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[col])
		if v == "" {
			continue
		}
		seen++
		if isInt && !integerRegex.MatchString(v) {
			isInt = false
		}
		if isNum && !numberRegex.MatchString(v) {
			isNum = false
		}
		if _, ok := castBool(v); isBool && !ok {
			isBool = false
		}
	}

	switch {
	case seen == 0:
		return TypeAny
	case isInt:
		return TypeInteger
	case isNum:
		return TypeNumber
	case isBool:
		return TypeBoolean
	default:
		return TypeString
	}
}
