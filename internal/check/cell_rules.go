package check

import (
	"strconv"
	"strings"
	"unicode"
)

const (
	noteForbiddenMarkers = "Cell value cannot contain bullets, dashes, new line or tab characters. Please make separate rows."
	noteBareNumber       = "Numeric cell values must be a bare number. Please strip the number of its unit and add the unit to the column name."
)

// listMarkers are the substrings that reveal a list or multi-line entry
// packed into one cell. "â€”" is an em-dash decoded with the wrong charset.
var listMarkers = []string{"•", "* ", "- ", "â€”", "\n", "\t"}

// currencySymbols are the units the bare-number check looks for.
var currencySymbols = []string{"$"}

var valueKinds = []string{KindForbiddenValue}

// ForbiddenMarkers flags text cells containing bullets, list dashes, an
// em-dash artifact, newlines or tabs. Trailing whitespace is ignored.
type ForbiddenMarkers struct{}

func (ForbiddenMarkers) Type() string         { return "forbidden-markers" }
func (ForbiddenMarkers) ErrorTypes() []string { return valueKinds }

func (ForbiddenMarkers) ValidateRow(row Row) []Finding {
	var out []Finding
	for i := range row.Cells {
		text, ok := row.Text(i)
		if !ok {
			continue
		}
		if containsAny(strings.TrimRightFunc(text, unicode.IsSpace), listMarkers) {
			out = append(out, cellFinding(KindForbiddenValue, row, i, noteForbiddenMarkers))
		}
	}
	return out
}

// BareNumber flags text cells that are a number decorated with a currency
// symbol, such as "$ 42.50". Cells whose remainder is not numeric pass.
type BareNumber struct{}

func (BareNumber) Type() string         { return "bare-number" }
func (BareNumber) ErrorTypes() []string { return valueKinds }

func (BareNumber) ValidateRow(row Row) []Finding {
	var out []Finding
	for i := range row.Cells {
		text, ok := row.Text(i)
		if !ok || !containsAny(text, currencySymbols) {
			continue
		}
		if isDecoratedNumber(text) {
			out = append(out, cellFinding(KindForbiddenValue, row, i, noteBareNumber))
		}
	}
	return out
}

func isDecoratedNumber(text string) bool {
	rest := text
	for _, sym := range currencySymbols {
		rest = strings.Trim(rest, sym)
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return false
	}
	_, err := strconv.ParseFloat(rest, 64)
	return err == nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
