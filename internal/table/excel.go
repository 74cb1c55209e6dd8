package table

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

func readExcel(r io.Reader, d Dialect) ([]Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := pickSheet(f.GetSheetList(), d.Sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	records := make([]Record, 0, len(rows))
	for i, cells := range rows {
		records = append(records, Record{Number: i + 1, Cells: cells})
	}
	return records, nil
}

// pickSheet resolves a sheet name or 1-based index; the first sheet by default.
func pickSheet(sheets []string, want string) (string, error) {
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	if want == "" {
		return sheets[0], nil
	}
	for _, s := range sheets {
		if s == want {
			return s, nil
		}
	}
	if idx, err := strconv.Atoi(want); err == nil && idx >= 1 && idx <= len(sheets) {
		return sheets[idx-1], nil
	}
	return "", fmt.Errorf("sheet %q not found", want)
}
