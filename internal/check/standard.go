package check

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// DuplicateRow flags rows whose cells repeat an earlier row exactly.
// It keeps a digest per row seen, so a fresh instance is needed per scan.
type DuplicateRow struct {
	seen map[[sha256.Size]byte]int
}

// NewDuplicateRow returns a DuplicateRow with empty memory.
func NewDuplicateRow() *DuplicateRow {
	return &DuplicateRow{seen: make(map[[sha256.Size]byte]int)}
}

func (*DuplicateRow) Type() string         { return "duplicate-row" }
func (*DuplicateRow) ErrorTypes() []string { return []string{KindDuplicateRow} }

func (c *DuplicateRow) ValidateRow(row Row) []Finding {
	cells := cellStrings(row.Cells)
	key := sha256.Sum256([]byte(strings.Join(cells, "\x1f")))

	first, dup := c.seen[key]
	if !dup {
		c.seen[key] = row.Number
		return nil
	}
	return []Finding{{
		Type:      KindDuplicateRow,
		Note:      fmt.Sprintf("the same as row at position %d", first),
		RowNumber: row.Number,
		Cells:     cells,
	}}
}

// ForbiddenValue flags cells of one field whose value is in a deny list.
type ForbiddenValue struct {
	FieldName string
	Values    []string
}

func (ForbiddenValue) Type() string         { return "forbidden-value" }
func (ForbiddenValue) ErrorTypes() []string { return valueKinds }

func (c ForbiddenValue) ValidateRow(row Row) []Finding {
	for i := range row.Cells {
		if row.FieldName(i) != c.FieldName {
			continue
		}
		cell := CellString(row.Cells[i])
		for _, v := range c.Values {
			if cell == v {
				return []Finding{cellFinding(KindForbiddenValue, row, i, fmt.Sprintf("forbidden value %q", cell))}
			}
		}
		return nil
	}
	return nil
}

func newForbiddenValue(p Params) (Check, error) {
	field, err := p.String("fieldName")
	if err != nil {
		return nil, err
	}
	if field == "" {
		return nil, errors.New("parameter \"fieldName\" is required")
	}
	values, err := p.Strings("values")
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, errors.New("parameter \"values\" is required")
	}
	return ForbiddenValue{FieldName: field, Values: values}, nil
}

// Lengths and magnitudes at which values were likely cut by an export tool.
var (
	truncatedStringLengths = []int{255}
	truncatedIntegerValues = []int64{math.MaxInt32, math.MaxInt64}
)

// TruncatedValue flags cells that look cut off by a storage limit.
type TruncatedValue struct{}

func (TruncatedValue) Type() string         { return "truncated-value" }
func (TruncatedValue) ErrorTypes() []string { return []string{KindTruncatedValue} }

func (TruncatedValue) ValidateRow(row Row) []Finding {
	var out []Finding
	for i, cell := range row.Cells {
		var note string
		switch v := cell.(type) {
		case string:
			n := utf8.RuneCountInString(v)
			for _, l := range truncatedStringLengths {
				if n == l {
					note = "value is probably truncated due to length"
				}
			}
		case int64:
			for _, l := range truncatedIntegerValues {
				if v == l || v == -l {
					note = "value is probably truncated due to integer limit"
				}
			}
		}
		if note != "" {
			out = append(out, cellFinding(KindTruncatedValue, row, i, note))
		}
	}
	return out
}
