package table

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// readJSON reads a JSON table: either an array of arrays whose first element
// is the header, or an array of objects whose keys (in first-seen order)
// form the header.
func readJSON(r io.Reader, d Dialect) ([]Record, int, error) {
	text, err := wrapText(r, d.Encoding)
	if err != nil {
		return nil, 0, sourceErr(KindEncoding, "", err)
	}

	dec := json.NewDecoder(text)
	dec.UseNumber()

	var items []json.RawMessage
	if err := dec.Decode(&items); err != nil {
		return nil, text.Replaced(), fmt.Errorf("json table must be an array: %w", err)
	}
	if len(items) == 0 {
		return nil, text.Replaced(), nil
	}

	var records []Record
	if first := firstByte(items[0]); first == '{' {
		records, err = jsonObjects(items)
	} else {
		records, err = jsonArrays(items)
	}
	return records, text.Replaced(), err
}

func jsonArrays(items []json.RawMessage) ([]Record, error) {
	records := make([]Record, 0, len(items))
	for i, item := range items {
		var cells []any
		dec := json.NewDecoder(bytes.NewReader(item))
		dec.UseNumber()
		if err := dec.Decode(&cells); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		records = append(records, Record{Number: i + 1, Cells: jsonCells(cells)})
	}
	return records, nil
}

func jsonObjects(items []json.RawMessage) ([]Record, error) {
	var keys []string
	index := make(map[string]int)
	rows := make([]map[string]any, 0, len(items))

	for i, item := range items {
		ordered, values, err := decodeObject(item)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		for _, k := range ordered {
			if _, ok := index[k]; !ok {
				index[k] = len(keys)
				keys = append(keys, k)
			}
		}
		rows = append(rows, values)
	}

	records := make([]Record, 0, len(rows)+1)
	records = append(records, Record{Number: 1, Cells: keys})
	for i, values := range rows {
		cells := make([]any, 0, len(keys))
		for _, k := range keys {
			cells = append(cells, values[k])
		}
		records = append(records, Record{Number: i + 2, Cells: jsonCells(cells)})
	}
	return records, nil
}

// decodeObject returns the keys of a JSON object in document order.
func decodeObject(raw json.RawMessage) ([]string, map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, errors.New("expected an object")
	}

	var keys []string
	values := make(map[string]any)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, errors.New("expected an object key")
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		if _, dup := values[key]; !dup {
			keys = append(keys, key)
		}
		values[key] = v
	}
	return keys, values, nil
}

func jsonCells(values []any) []string {
	cells := make([]string, len(values))
	for i, v := range values {
		switch c := v.(type) {
		case nil:
			cells[i] = ""
		case string:
			cells[i] = c
		case json.Number:
			cells[i] = c.String()
		case bool:
			if c {
				cells[i] = "true"
			} else {
				cells[i] = "false"
			}
		default:
			b, _ := json.Marshal(c)
			cells[i] = string(b)
		}
	}
	return cells
}

func firstByte(raw json.RawMessage) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}
