package table

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"unicode/utf8"
)

// Dialect holds the structural parsing parameters of a table.
// The zero value reads a comma-separated file with one header row.
type Dialect struct {
	Delimiter        string `json:"delimiter,omitempty"`
	QuoteChar        string `json:"quoteChar,omitempty"`
	Header           *bool  `json:"header,omitempty"`
	HeaderRows       []int  `json:"headerRows,omitempty"`
	HeaderJoin       string `json:"headerJoin,omitempty"`
	CommentChar      string `json:"commentChar,omitempty"`
	SkipInitialSpace bool   `json:"skipInitialSpace,omitempty"`
	Encoding         string `json:"encoding,omitempty"`
	Sheet            string `json:"sheet,omitempty"` // Excel sheet name or 1-based index
}

// ParseDialect builds a Dialect from its descriptor. Format-specific
// settings may be flat or nested under "csv" and "excel":
//
//	{"header": true, "csv": {"delimiter": ";"}, "excel": {"sheet": 2}}
func ParseDialect(raw json.RawMessage) (Dialect, error) {
	var d Dialect
	if len(raw) == 0 || string(raw) == "null" {
		return d, nil
	}

	var desc struct {
		Dialect
		Sheet json.RawMessage `json:"sheet,omitempty"`
		CSV   *Dialect        `json:"csv,omitempty"`
		Excel *struct {
			Sheet json.RawMessage `json:"sheet,omitempty"`
		} `json:"excel,omitempty"`
	}
	if err := json.Unmarshal(raw, &desc); err != nil {
		return d, fmt.Errorf("dialect descriptor: %w", err)
	}

	d = desc.Dialect
	if c := desc.CSV; c != nil {
		if c.Delimiter != "" {
			d.Delimiter = c.Delimiter
		}
		if c.QuoteChar != "" {
			d.QuoteChar = c.QuoteChar
		}
		if c.SkipInitialSpace {
			d.SkipInitialSpace = true
		}
	}

	sheet := desc.Sheet
	if desc.Excel != nil && len(desc.Excel.Sheet) > 0 {
		sheet = desc.Excel.Sheet
	}
	if len(sheet) > 0 {
		s, err := sheetName(sheet)
		if err != nil {
			return d, err
		}
		d.Sheet = s
	}

	return d, d.Validate()
}

func sheetName(raw json.RawMessage) (string, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return name, nil
	}
	var idx int
	if err := json.Unmarshal(raw, &idx); err != nil || idx < 1 {
		return "", errors.New("dialect sheet must be a name or a 1-based index")
	}
	return strconv.Itoa(idx), nil
}

// Validate reports settings no reader can honour.
func (d Dialect) Validate() error {
	if d.Delimiter != "" && utf8.RuneCountInString(d.Delimiter) != 1 {
		return fmt.Errorf("dialect delimiter %q must be a single character", d.Delimiter)
	}
	if d.QuoteChar != "" && d.QuoteChar != `"` {
		return fmt.Errorf("dialect quoteChar %q is not supported, only '\"'", d.QuoteChar)
	}
	if d.CommentChar != "" && utf8.RuneCountInString(d.CommentChar) != 1 {
		return fmt.Errorf("dialect commentChar %q must be a single character", d.CommentChar)
	}
	for _, n := range d.HeaderRows {
		if n < 1 {
			return fmt.Errorf("dialect headerRows must be 1-based, got %d", n)
		}
	}
	return nil
}

// HasHeader reports whether the table declares a header row.
func (d Dialect) HasHeader() bool {
	return d.Header == nil || *d.Header
}

// headerRows returns the sorted header row numbers, [1] by default.
func (d Dialect) headerRows() []int {
	if !d.HasHeader() {
		return nil
	}
	if len(d.HeaderRows) == 0 {
		return []int{1}
	}
	rows := append([]int(nil), d.HeaderRows...)
	sort.Ints(rows)
	return rows
}

func (d Dialect) headerJoin() string {
	if d.HeaderJoin == "" {
		return " "
	}
	return d.HeaderJoin
}

func (d Dialect) delimiter(format string) rune {
	if d.Delimiter != "" {
		r, _ := utf8.DecodeRuneInString(d.Delimiter)
		return r
	}
	if format == FormatTSV {
		return '\t'
	}
	return ','
}
