package importer

import (
	"bytes"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/xuri/excelize/v2"
)

// ParseXLSX maps the first sheet of a workbook to canonical sales
// events through the same row pipeline as CSV input.
func (m *Mapper) ParseXLSX(data []byte, orgID snowflake.ID) (*Result, error) {
	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return &Result{}, nil
	}

	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	filtered := make([][]string, 0, len(rows))
	for _, row := range rows {
		if !rowEmpty(row) {
			filtered = append(filtered, row)
		}
	}

	// GetRows trims trailing empty cells, so a row whose last columns
	// are blank comes back narrower than the header. Pad to the header
	// width; the short-row drop applies to truncated CSV lines only.
	if len(filtered) > 1 {
		headerLen := len(filtered[0])
		for i, row := range filtered[1:] {
			if len(row) < headerLen {
				padded := make([]string, headerLen)
				copy(padded, row)
				filtered[i+1] = padded
			}
		}
	}

	return m.mapRows(filtered, orgID), nil
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if cleanField(cell) != "" {
			return false
		}
	}
	return true
}
