package menuparse

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/pageza/comedor/backend/internal/types"
)

// ParseXLSX parses one week from the first sheet of an Excel workbook.
func ParseXLSX(name string, r io.Reader) (*types.MenuWeek, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", name, err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", name)
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheets[0], name, err)
	}
	return ParseGrid(name, rows)
}
