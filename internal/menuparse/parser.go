// Package menuparse reads the kitchen's weekly menu spreadsheets.
//
// A sheet holds one plan week: a header row naming the days, then blocks of
// rows introduced by a meal-type label (DESAYUNO, COMIDA, CENA). Every cell
// under a day column may list several dishes separated by commas.
package menuparse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pageza/comedor/backend/internal/models"
	"github.com/pageza/comedor/backend/internal/normalize"
	"github.com/pageza/comedor/backend/internal/schedule"
	"github.com/pageza/comedor/backend/internal/types"
)

var (
	// ErrNoWeekNumber means neither the sheet nor its file name carry a week number.
	ErrNoWeekNumber = errors.New("week number not found")
	// ErrNoHeader means no day header row was found near the top of the sheet.
	ErrNoHeader = errors.New("day header row not found")
)

const headerSearchRows = 5

var (
	weekTitleRe = regexp.MustCompile(`(?i)SEMANA\s+(\d+)`)
	fileWeekRe  = regexp.MustCompile(`S(\d+)`)
)

var mealLabels = map[string]string{
	"desayuno":  models.MealTypeBreakfast,
	"desayunos": models.MealTypeBreakfast,
	"comida":    models.MealTypeLunch,
	"comidas":   models.MealTypeLunch,
	"almuerzo":  models.MealTypeLunch,
	"cena":      models.MealTypeDinner,
	"cenas":     models.MealTypeDinner,
}

var mealOrder = []string{models.MealTypeBreakfast, models.MealTypeLunch, models.MealTypeDinner}

// ParseGrid extracts one plan week from rows of cells. name is the source
// file name, used as a fallback for the week number.
func ParseGrid(name string, rows [][]string) (*types.MenuWeek, error) {
	rows = dropBlankRows(rows)

	header := -1
	for i := 0; i < len(rows) && i < headerSearchRows; i++ {
		if isHeaderRow(rows[i]) {
			header = i
			break
		}
	}

	week, err := weekNumber(name, rows, header)
	if err != nil {
		return nil, err
	}
	if header < 0 {
		return nil, ErrNoHeader
	}

	columns := dayColumns(rows[header])

	var order []string
	meals := make(map[string]map[string][]string)
	for _, col := range columns {
		if _, seen := meals[col.label]; !seen {
			meals[col.label] = make(map[string][]string)
			order = append(order, col.label)
		}
	}

	current := ""
	for _, row := range rows[header+1:] {
		if len(row) > 0 {
			if mt, ok := mealType(row[0]); ok {
				current = mt
			}
		}
		if current == "" {
			continue
		}
		for _, col := range columns {
			if col.index >= len(row) {
				continue
			}
			for _, piece := range strings.Split(row[col.index], ",") {
				if dish := normalize.DishName(piece); dish != "" {
					meals[col.label][current] = append(meals[col.label][current], dish)
				}
			}
		}
	}

	out := &types.MenuWeek{Week: week, Days: make([]types.MenuDay, 0, len(order))}
	for _, label := range order {
		day := types.MenuDay{Day: label, Meals: []types.MenuMeal{}}
		for _, mt := range mealOrder {
			dishes := meals[label][mt]
			if len(dishes) == 0 {
				continue
			}
			meal := types.MenuMeal{Type: mt, Items: make([]types.MenuItem, 0, len(dishes))}
			for _, d := range dishes {
				meal.Items = append(meal.Items, types.MenuItem{Name: d, Allergens: []string{}})
			}
			day.Meals = append(day.Meals, meal)
		}
		out.Days = append(out.Days, day)
	}
	return out, nil
}

func weekNumber(name string, rows [][]string, header int) (int, error) {
	limit := header
	if limit < 0 {
		limit = headerSearchRows
	}
	for i := 0; i < len(rows) && i <= limit; i++ {
		if m := weekTitleRe.FindStringSubmatch(strings.Join(rows[i], " ")); m != nil {
			return strconv.Atoi(m[1])
		}
	}
	if m := fileWeekRe.FindStringSubmatch(name); m != nil {
		return strconv.Atoi(m[1])
	}
	return 0, fmt.Errorf("%w in %q", ErrNoWeekNumber, name)
}

func isHeaderRow(row []string) bool {
	for _, cell := range row {
		if _, ok := dayLabel(cell); ok {
			return true
		}
	}
	return false
}

type dayColumn struct {
	index int
	label string
}

// dayColumns lists the day columns of a header row from left to right.
// Spreadsheet exports with merged cells leave every other header cell blank;
// in that layout only odd columns carry days.
func dayColumns(header []string) []dayColumn {
	empty := 0
	for _, cell := range header {
		if strings.TrimSpace(cell) == "" {
			empty++
		}
	}
	duplicated := empty > 2

	var cols []dayColumn
	for i, cell := range header {
		if duplicated && i%2 == 0 {
			continue
		}
		if label, ok := dayLabel(cell); ok {
			cols = append(cols, dayColumn{index: i, label: label})
		}
	}
	return cols
}

// dayLabel maps a header cell to its day token. A week title cell such as
// "SEMANA 1 MARZO" is never a day.
func dayLabel(cell string) (string, bool) {
	if weekTitleRe.MatchString(cell) {
		return "", false
	}
	c := normalize.Fold(strings.TrimSpace(normalize.Repair(cell)))
	if c == "" {
		return "", false
	}
	switch {
	case strings.Contains(c, "sab"), strings.Contains(c, "dom"):
		return schedule.Weekend, true
	case strings.Contains(c, "lun"):
		return schedule.Monday, true
	case strings.Contains(c, "mar"):
		return schedule.Tuesday, true
	case strings.Contains(c, "mier"), strings.Contains(c, "mie"):
		return schedule.Wednesday, true
	case strings.Contains(c, "jue"):
		return schedule.Thursday, true
	case strings.Contains(c, "vie"):
		return schedule.Friday, true
	}
	return "", false
}

func mealType(cell string) (string, bool) {
	key := strings.TrimSuffix(normalize.Fold(strings.TrimSpace(cell)), ":")
	mt, ok := mealLabels[strings.TrimSpace(key)]
	return mt, ok
}

func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0:0]
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}
