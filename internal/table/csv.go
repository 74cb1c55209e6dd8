package table

import (
	"encoding/csv"
	"errors"
	"io"
	"unicode/utf8"
)

func readCSV(r io.Reader, format string, d Dialect) ([]Record, int, error) {
	text, err := wrapText(r, d.Encoding)
	if err != nil {
		return nil, 0, sourceErr(KindEncoding, "", err)
	}

	cr := csv.NewReader(text)
	cr.Comma = d.delimiter(format)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = d.SkipInitialSpace
	if d.CommentChar != "" {
		cr.Comment, _ = utf8.DecodeRuneInString(d.CommentChar)
	}

	var records []Record
	for {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, text.Replaced(), err
		}
		line, _ := cr.FieldPos(0)
		records = append(records, Record{Number: line, Cells: cells})
	}
	return records, text.Replaced(), nil
}
