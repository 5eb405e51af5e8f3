package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pageza/comedor/backend/internal/allergen"
	"github.com/pageza/comedor/backend/internal/menuparse"
	"github.com/pageza/comedor/backend/internal/types"
)

const (
	defaultSheetsDir = "menu-data-csv"
	defaultMenuFile  = "menu_data.json"
)

func newProcessCSVCmd(root *rootOptions) *cobra.Command {
	var (
		dir     string
		out     string
		noInfer bool
	)

	cmd := &cobra.Command{
		Use:   "process-csv",
		Short: "Parse weekly .csv/.xlsx sheets into a menu data document",
		RunE: func(cmd *cobra.Command, args []string) error {
			sheetsDir, output, _ := root.importDefaults()
			dir = firstNonEmpty(dir, sheetsDir, defaultSheetsDir)
			out = firstNonEmpty(out, output, defaultMenuFile)

			data, failures, err := menuparse.ParseDir(dir)
			if err != nil {
				return err
			}
			for _, f := range failures {
				log.Warnf("Skipped %s", f.Error())
			}
			if len(data.Weeks) == 0 {
				return fmt.Errorf("no sheet in %s could be parsed", dir)
			}
			if !noInfer {
				logAllergenStats(allergen.Annotate(data), data.ItemCount())
			}
			if err := writeMenuData(out, data); err != nil {
				return err
			}
			log.WithFields(log.Fields{
				"weeks":  len(data.Weeks),
				"items":  data.ItemCount(),
				"failed": len(failures),
			}).Infof("Wrote %s", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory holding the weekly sheets (default "+defaultSheetsDir+")")
	cmd.Flags().StringVar(&out, "out", "", "Output JSON file (default "+defaultMenuFile+")")
	cmd.Flags().BoolVar(&noInfer, "no-infer", false, "Leave item allergens empty")
	return cmd
}

func newInferAllergensCmd(root *rootOptions) *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "infer-allergens",
		Short: "Fill item allergens of a menu data document from dish names",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, output, _ := root.importDefaults()
			in = firstNonEmpty(in, output, defaultMenuFile)
			out = firstNonEmpty(out, in)

			data, err := readMenuData(in)
			if err != nil {
				return err
			}
			logAllergenStats(allergen.Annotate(data), data.ItemCount())
			if err := writeMenuData(out, data); err != nil {
				return err
			}
			log.Infof("Wrote %s", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "Input JSON file (default "+defaultMenuFile+")")
	cmd.Flags().StringVar(&out, "out", "", "Output JSON file (default: overwrite input)")
	return cmd
}

func readMenuData(path string) (*types.MenuData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var data types.MenuData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &data, nil
}

func writeMenuData(path string, data *types.MenuData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode menu data: %w", err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// logAllergenStats reports categories by descending frequency.
func logAllergenStats(stats allergen.Stats, items int) {
	type entry struct {
		name  string
		count int
	}
	var entries []entry
	for name, count := range stats {
		if count > 0 {
			entries = append(entries, entry{name, count})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})

	log.Infof("Inferred allergens for %d items", items)
	for _, e := range entries {
		pct := 0.0
		if items > 0 {
			pct = float64(e.count) * 100 / float64(items)
		}
		log.Infof("  %-16s %4d dishes (%.1f%%)", e.name, e.count, pct)
	}
}
