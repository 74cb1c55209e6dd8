package check

import (
	"unicode"
	"unicode/utf8"
)

// MaxLabelLength is the longest column name PostgreSQL accepts as an
// identifier without truncation.
const MaxLabelLength = 63

const (
	noteHeaderLength    = "Column name must be less than 63 characters long."
	noteSnakeCaseHeader = "Column name must all be in lower case, and for multiple words, separate them with an underscore."
	noteHeaderFirstChar = "Column name must begin with an alphabetic letter."
)

var labelKinds = []string{KindForbiddenLabel}

// HeaderLength flags labels longer than MaxLabelLength characters.
type HeaderLength struct{}

func (HeaderLength) Type() string         { return "header-length" }
func (HeaderLength) ErrorTypes() []string { return labelKinds }

func (HeaderLength) ValidateHeader(h Header) []Finding {
	var out []Finding
	for i, label := range h.Labels {
		if utf8.RuneCountInString(label) > MaxLabelLength {
			out = append(out, labelFinding(h, i, noteHeaderLength))
		}
	}
	return out
}

// SnakeCaseHeader flags labels containing whitespace or an uppercase letter.
type SnakeCaseHeader struct{}

func (SnakeCaseHeader) Type() string         { return "snake-case-header" }
func (SnakeCaseHeader) ErrorTypes() []string { return labelKinds }

func (SnakeCaseHeader) ValidateHeader(h Header) []Finding {
	var out []Finding
	for i, label := range h.Labels {
		if !isSnakeCase(label) {
			out = append(out, labelFinding(h, i, noteSnakeCaseHeader))
		}
	}
	return out
}

func isSnakeCase(label string) bool {
	for _, r := range label {
		if unicode.IsSpace(r) || unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// HeaderFirstChar flags non-empty labels whose first character is not a letter.
type HeaderFirstChar struct{}

func (HeaderFirstChar) Type() string         { return "header-first-char" }
func (HeaderFirstChar) ErrorTypes() []string { return labelKinds }

func (HeaderFirstChar) ValidateHeader(h Header) []Finding {
	var out []Finding
	for i, label := range h.Labels {
		if label == "" {
			continue // blank labels are reported by the structural pass
		}
		first, _ := utf8.DecodeRuneInString(label)
		if !unicode.IsLetter(first) {
			out = append(out, labelFinding(h, i, noteHeaderFirstChar))
		}
	}
	return out
}
