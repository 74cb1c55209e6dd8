package table

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Table is a parsed table: the header as declared plus the data rows as
// raw text. Casting happens in the scan so every cell is seen by the
// structural pass first.
type Table struct {
	Place      string
	Format     string
	Labels     []string
	HeaderRows []int
	Rows       []Record
	Bytes      int64

	// Replaced counts invalid UTF-8 bytes that were rewritten to '?'.
	Replaced int
}

// Record is one data row and its 1-based physical row number.
type Record struct {
	Number int
	Cells  []string
}

// Read fetches and parses src. Failures are returned as *SourceError.
func Read(ctx context.Context, src Source) (*Table, error) {
	if !Supported(src.Format) {
		return nil, sourceErr(KindFormat, src.Locator, fmt.Errorf("format %q is not supported", src.Format))
	}
	if err := src.Dialect.Validate(); err != nil {
		return nil, sourceErr(KindFormat, src.Locator, err)
	}

	data, err := src.fetch(ctx)
	if err != nil {
		return nil, err
	}

	var (
		records  []Record
		replaced int
	)
	switch src.Format {
	case FormatCSV, FormatTSV:
		records, replaced, err = readCSV(bytes.NewReader(data), src.Format, src.Dialect)
	case FormatXLSX:
		records, err = readExcel(bytes.NewReader(data), src.Dialect)
	case FormatJSON:
		records, replaced, err = readJSON(bytes.NewReader(data), src.Dialect)
	}
	if err != nil {
		if se, ok := err.(*SourceError); ok {
			se.Place = src.Locator
			return nil, se
		}
		return nil, sourceErr(KindFormat, src.Locator, err)
	}

	t := &Table{
		Place:    src.Locator,
		Format:   src.Format,
		Bytes:    int64(len(data)),
		Replaced: replaced,
	}
	t.Labels, t.HeaderRows, t.Rows = splitHeader(records, src.Dialect)
	return t, nil
}

// splitHeader separates the header rows from the data rows. Multiple header
// rows are joined per column; rows above the last header row that are not
// header rows are dropped. Without a header, labels are field1..fieldN.
func splitHeader(records []Record, d Dialect) ([]string, []int, []Record) {
	headerRows := d.headerRows()
	if len(headerRows) == 0 {
		width := 0
		for _, r := range records {
			width = max(width, len(r.Cells))
		}
		labels := make([]string, width)
		for i := range labels {
			labels[i] = "field" + strconv.Itoa(i+1)
		}
		return labels, nil, records
	}

	last := headerRows[len(headerRows)-1]
	isHeader := make(map[int]bool, len(headerRows))
	for _, n := range headerRows {
		isHeader[n] = true
	}

	var parts [][]string
	for i := 0; i < last && i < len(records); i++ {
		if isHeader[i+1] {
			parts = append(parts, records[i].Cells)
		}
	}

	var data []Record
	if last < len(records) {
		data = records[last:]
	}
	return joinLabels(parts, d.headerJoin()), headerRows, data
}

func joinLabels(parts [][]string, sep string) []string {
	if len(parts) == 1 {
		return append([]string(nil), parts[0]...)
	}
	width := 0
	for _, p := range parts {
		width = max(width, len(p))
	}
	labels := make([]string, width)
	for col := range labels {
		var pieces []string
		for _, p := range parts {
			if col < len(p) && p[col] != "" {
				pieces = append(pieces, p[col])
			}
		}
		labels[col] = strings.Join(pieces, sep)
	}
	return labels
}
