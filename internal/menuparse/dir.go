package menuparse

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/pageza/comedor/backend/internal/types"
)

// FileError reports a sheet that could not be parsed and was skipped.
type FileError struct {
	File string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e FileError) Unwrap() error { return e.Err }

// Source is one uploaded or on-disk sheet.
type Source struct {
	Name string
	Data []byte
}

// ParseSources parses every source, skipping the ones that fail. Sources are
// visited by ascending S<n> file number and the weeks come back sorted by
// week number.
func ParseSources(sources []Source) (*types.MenuData, []FileError) {
	sorted := append([]Source(nil), sources...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return fileOrder(sorted[i].Name) < fileOrder(sorted[j].Name)
	})

	data := &types.MenuData{Allergens: []string{}, Weeks: []types.MenuWeek{}}
	var failures []FileError
	for _, src := range sorted {
		week, err := parseSource(src)
		if err != nil {
			log.WithField("file", src.Name).Warnf("Skipping menu sheet: %v", err)
			failures = append(failures, FileError{File: src.Name, Err: err})
			continue
		}
		log.WithFields(log.Fields{"file": src.Name, "week": week.Week, "days": len(week.Days)}).Debug("Parsed menu sheet")
		data.Weeks = append(data.Weeks, *week)
	}

	sort.SliceStable(data.Weeks, func(i, j int) bool {
		return data.Weeks[i].Week < data.Weeks[j].Week
	})
	return data, failures
}

// ParseDir parses every .csv and .xlsx file in dir.
func ParseDir(dir string) (*types.MenuData, []FileError, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var sources []Source
	var failures []FileError
	for _, e := range entries {
		if e.IsDir() || !Supported(e.Name()) {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			failures = append(failures, FileError{File: e.Name(), Err: err})
			continue
		}
		sources = append(sources, Source{Name: e.Name(), Data: raw})
	}

	data, parseFailures := ParseSources(sources)
	return data, append(failures, parseFailures...), nil
}

// Supported reports whether the file extension is a known sheet format.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

func parseSource(src Source) (*types.MenuWeek, error) {
	if strings.EqualFold(filepath.Ext(src.Name), ".xlsx") {
		return ParseXLSX(src.Name, bytes.NewReader(src.Data))
	}
	return ParseCSV(src.Name, src.Data)
}

// fileOrder sorts files without an S<n> number after numbered ones.
func fileOrder(name string) int {
	if m := fileWeekRe.FindStringSubmatch(filepath.Base(name)); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return int(^uint(0) >> 1)
}
