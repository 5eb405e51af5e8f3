package menuparse

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/pageza/comedor/backend/internal/types"
)

// ParseCSV parses one week exported as Windows-1252 CSV.
func ParseCSV(name string, raw []byte) (*types.MenuWeek, error) {
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}

	var rows [][]string
	for _, line := range strings.Split(string(decoded), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rows = append(rows, splitLine(line))
	}

	return ParseGrid(name, rows)
}

// splitLine splits one CSV line on commas. A double quote toggles quoting
// wherever it appears, so commas inside quotes stay in the cell. Quote
// characters are dropped.
func splitLine(line string) []string {
	var (
		cells    []string
		cell     strings.Builder
		inQuotes bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			cells = append(cells, cell.String())
			cell.Reset()
		default:
			cell.WriteRune(r)
		}
	}
	return append(cells, cell.String())
}
