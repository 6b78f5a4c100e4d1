package loader

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// parseXLSX reads the first worksheet of an Excel catalog. The first row is
// the header; warnings carry 1-based sheet row numbers.
func parseXLSX(data []byte) ([]row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", sheets[0], err)
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("worksheet %q is empty", sheets[0])
	}

	cols, err := resolveColumns(cells[0])
	if err != nil {
		return nil, err
	}

	var rows []row
	for i := 1; i < len(cells); i++ {
		if isEmptyRow(cells[i]) {
			continue
		}
		number := i + 1
		doc, warns := mapFields(cells[i], cols, number)
		rows = append(rows, row{number: number, doc: doc, warnings: warns})
	}
	return rows, nil
}
