package report

import (
	"fmt"

	"github.com/JonMunkholm/tabcheck/internal/check"
)

// Error is one entry in a report: a structural problem found while reading
// the table, or a finding emitted by a check.
type Error struct {
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Message     string   `json:"message"`
	Tags        []string `json:"tags"`
	Note        string   `json:"note"`
	Label       string   `json:"label,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	RowNumbers  []int    `json:"rowNumbers,omitempty"`
	RowNumber   int      `json:"rowNumber,omitempty"`
	FieldNumber int      `json:"fieldNumber,omitempty"`
	FieldName   string   `json:"fieldName,omitempty"`
	Cell        string   `json:"cell,omitempty"`
	Cells       []string `json:"cells,omitempty"`
}

// Structural error kinds produced while reading a table. Source kinds live
// in the table package; check kinds live in the check package.
const (
	KindCheck      = "check-error"
	KindBlankLabel = "blank-label"
	KindDupLabel   = "duplicate-label"
	KindBadLabel   = "incorrect-label"
	KindMissLabel  = "missing-label"
	KindExtraLabel = "extra-label"
	KindBlankRow   = "blank-row"
	KindExtraCell  = "extra-cell"
	KindMissCell   = "missing-cell"
	KindType       = "type-error"
	KindConstraint = "constraint-error"
	KindUnique     = "unique-error"
)

type kindInfo struct {
	title       string
	description string
	tags        []string
	message     func(e Error) string
}

var kinds = map[string]kindInfo{
	"source-error": {
		title:       "Source Error",
		description: "Data reading error because of not supported or inconsistent contents.",
		message: func(e Error) string {
			return "The data source has not supported or has inconsistent contents: " + e.Note
		},
	},
	"scheme-error": {
		title:       "Scheme Error",
		description: "Data reading error because of incorrect scheme.",
		message: func(e Error) string {
			return "The data source could not be successfully loaded: " + e.Note
		},
	},
	"format-error": {
		title:       "Format Error",
		description: "Data reading error because of incorrect format.",
		message: func(e Error) string {
			return "The data source could not be successfully parsed: " + e.Note
		},
	},
	"encoding-error": {
		title:       "Encoding Error",
		description: "Data reading error because of an encoding problem.",
		message: func(e Error) string {
			return "The data source could not be successfully decoded: " + e.Note
		},
	},
	KindCheck: {
		title:       "Check Error",
		description: "A validation cannot be processed.",
		message: func(e Error) string {
			return "The validation cannot be processed: " + e.Note
		},
	},
	KindBlankLabel: {
		title:       "Blank Label",
		description: "A label in the header row is missing a value. Label should be provided and not be blank.",
		tags:        []string{"#table", "#header", "#label"},
		message: func(e Error) string {
			return fmt.Sprintf("Label in the header in field at position %q is blank", fmt.Sprint(e.FieldNumber))
		},
	},
	KindDupLabel: {
		title:       "Duplicate Label",
		description: "Two columns in the header row have the same value. Column names should be unique.",
		tags:        []string{"#table", "#header", "#label"},
		message: func(e Error) string {
			return fmt.Sprintf("Label %q in the header at position %q is duplicated to a label: %s", e.Label, fmt.Sprint(e.FieldNumber), e.Note)
		},
	},
	KindBadLabel: {
		title:       "Incorrect Label",
		description: "One of the data source header does not match the field name defined in the schema.",
		tags:        []string{"#table", "#header", "#label"},
		message: func(e Error) string {
			return fmt.Sprintf("Label %q in field %s at position %q does not match the field name in the schema", e.Label, e.FieldName, fmt.Sprint(e.FieldNumber))
		},
	},
	KindMissLabel: {
		title:       "Missing Label",
		description: "Based on the schema there should be a label that is missing in the data's header.",
		tags:        []string{"#table", "#header", "#label"},
		message: func(e Error) string {
			return fmt.Sprintf("There is a missing label in the header's field %q at position %q", e.FieldName, fmt.Sprint(e.FieldNumber))
		},
	},
	KindExtraLabel: {
		title:       "Extra Label",
		description: "The header of the data source contains label that does not exist in the provided schema.",
		tags:        []string{"#table", "#header", "#label"},
		message: func(e Error) string {
			return fmt.Sprintf("There is an extra label %q in header at position %q", e.Label, fmt.Sprint(e.FieldNumber))
		},
	},
	check.KindForbiddenLabel: {
		title:       "Forbidden Label",
		description: "One of the data source header does not conform to the naming rules.",
		tags:        []string{"#table", "#header", "#label"},
		message: func(e Error) string {
			return fmt.Sprintf("Label %q at position %q is forbidden: %s", e.Label, fmt.Sprint(e.FieldNumber), e.Note)
		},
	},
	KindBlankRow: {
		title:       "Blank Row",
		description: "This row is empty. A row should contain at least one value.",
		tags:        []string{"#table", "#row"},
		message: func(e Error) string {
			return fmt.Sprintf("Row at position %q is completely blank", fmt.Sprint(e.RowNumber))
		},
	},
	KindExtraCell: {
		title:       "Extra Cell",
		description: "This row has more values compared to the header row. All the rows in tabular data must have the same number of columns.",
		tags:        []string{"#table", "#row", "#cell"},
		message: func(e Error) string {
			return fmt.Sprintf("Row at position %q has an extra value in field at position %q", fmt.Sprint(e.RowNumber), fmt.Sprint(e.FieldNumber))
		},
	},
	KindMissCell: {
		title:       "Missing Cell",
		description: "This row has less values compared to the header row. All the rows in tabular data must have the same number of columns.",
		tags:        []string{"#table", "#row", "#cell"},
		message: func(e Error) string {
			return fmt.Sprintf("Row at position %q has a missing cell in field %q at position %q", fmt.Sprint(e.RowNumber), e.FieldName, fmt.Sprint(e.FieldNumber))
		},
	},
	KindType: {
		title:       "Type Error",
		description: "The value does not match the schema type and format for this field.",
		tags:        []string{"#table", "#row", "#cell"},
		message: func(e Error) string {
			return fmt.Sprintf("Type error in the cell %q in row %q and field %q at position %q: %s", e.Cell, fmt.Sprint(e.RowNumber), e.FieldName, fmt.Sprint(e.FieldNumber), e.Note)
		},
	},
	KindConstraint: {
		title:       "Constraint Error",
		description: "A field value does not conform to a constraint.",
		tags:        []string{"#table", "#row", "#cell"},
		message: func(e Error) string {
			return fmt.Sprintf("The cell %q in row at position %q and field %q at position %q does not conform to a constraint: %s", e.Cell, fmt.Sprint(e.RowNumber), e.FieldName, fmt.Sprint(e.FieldNumber), e.Note)
		},
	},
	KindUnique: {
		title:       "Unique Error",
		description: "This field is a unique field but it contains a value that has been used in another row.",
		tags:        []string{"#table", "#row", "#cell"},
		message: func(e Error) string {
			return fmt.Sprintf("Row at position %q has unique constraint violation in field %q at position %q: %s", fmt.Sprint(e.RowNumber), e.FieldName, fmt.Sprint(e.FieldNumber), e.Note)
		},
	},
	check.KindForbiddenValue: {
		title:       "Forbidden Value",
		description: "The value does not conform to the data entry rules.",
		tags:        []string{"#table", "#row", "#cell"},
		message: func(e Error) string {
			return fmt.Sprintf("The cell %q in row at position %q and field %q at position %q has an error: %s", e.Cell, fmt.Sprint(e.RowNumber), e.FieldName, fmt.Sprint(e.FieldNumber), e.Note)
		},
	},
	check.KindDuplicateRow: {
		title:       "Duplicate Row",
		description: "The row is duplicated.",
		tags:        []string{"#table", "#row"},
		message: func(e Error) string {
			return fmt.Sprintf("Row at position %q is duplicated: %s", fmt.Sprint(e.RowNumber), e.Note)
		},
	},
	check.KindTruncatedValue: {
		title:       "Truncated Value",
		description: "The value is possible truncated.",
		tags:        []string{"#table", "#row", "#cell"},
		message: func(e Error) string {
			return fmt.Sprintf("The cell %q in row at position %q and field %q at position %q has an error: %s", e.Cell, fmt.Sprint(e.RowNumber), e.FieldName, fmt.Sprint(e.FieldNumber), e.Note)
		},
	},
}

// complete fills the title, description, tags and message of e from the
// kind catalog. Unknown kinds use the note as their message.
func complete(e Error) Error {
	info, ok := kinds[e.Type]
	if !ok {
		e.Title = e.Type
		e.Message = e.Note
		if e.Tags == nil {
			e.Tags = []string{}
		}
		return e
	}
	e.Title = info.title
	e.Description = info.description
	e.Tags = append([]string{}, info.tags...)
	e.Message = info.message(e)
	return e
}

// NewError builds an error of kind with a note and no location.
func NewError(kind, note string) Error {
	return complete(Error{Type: kind, Note: note})
}

// LabelError builds a label error for the label at 1-based position field.
func LabelError(kind string, labels []string, rowNumbers []int, field int, label, fieldName, note string) Error {
	return complete(Error{
		Type:        kind,
		Note:        note,
		Label:       label,
		Labels:      append([]string(nil), labels...),
		RowNumbers:  append([]int(nil), rowNumbers...),
		FieldNumber: field,
		FieldName:   fieldName,
	})
}

// RowError builds an error located at a row, and at a cell when field > 0.
func RowError(kind string, rowNumber int, cells []string, field int, fieldName, cell, note string) Error {
	return complete(Error{
		Type:        kind,
		Note:        note,
		RowNumber:   rowNumber,
		FieldNumber: field,
		FieldName:   fieldName,
		Cell:        cell,
		Cells:       append([]string(nil), cells...),
	})
}

// FromFinding converts a check finding into a report error.
func FromFinding(f check.Finding) Error {
	return complete(Error{
		Type:        f.Type,
		Note:        f.Note,
		Label:       f.Label,
		Labels:      f.Labels,
		RowNumbers:  f.RowNumbers,
		RowNumber:   f.RowNumber,
		FieldNumber: f.FieldNumber,
		FieldName:   f.FieldName,
		Cell:        f.Cell,
		Cells:       f.Cells,
	})
}
