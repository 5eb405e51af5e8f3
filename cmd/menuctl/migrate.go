package main

import (
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pageza/comedor/backend/internal/database"
	"github.com/pageza/comedor/backend/internal/events"
	"github.com/pageza/comedor/backend/internal/schedule"
	"github.com/pageza/comedor/backend/internal/service"
)

func newMigrateMenuCmd(root *rootOptions) *cobra.Command {
	var (
		startDate      string
		file           string
		deleteExisting bool
	)

	cmd := &cobra.Command{
		Use:   "migrate-menu",
		Short: "Import a menu data document onto the calendar (Monday-first)",
		Example: "  menuctl migrate-menu --start-date 2025-01-13\n" +
			"  menuctl migrate-menu -d 2025-01-13 -f ./menu_data.json --delete-existing",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, output, defaultStart := root.importDefaults()
			startDate = firstNonEmpty(startDate, defaultStart)
			file = firstNonEmpty(file, output, defaultMenuFile)
			if startDate == "" {
				return fmt.Errorf("--start-date is required (YYYY-MM-DD)")
			}
			start, err := schedule.ParseDate(startDate)
			if err != nil {
				return fmt.Errorf("invalid --start-date: %w", err)
			}

			data, err := readMenuData(file)
			if err != nil {
				return err
			}
			if err := data.Validate(); err != nil {
				return fmt.Errorf("invalid menu data in %s: %w", file, err)
			}

			db, closeDB, err := root.openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			publisher := events.NewKafkaPublisher(root.cfg.KafkaBrokers, root.cfg.KafkaTopic)
			defer publisher.Close()

			summary, err := service.NewImportService(db, publisher).Import(cmd.Context(), data, service.ImportOptions{
				StartDate:      start,
				Convention:     schedule.MondayFirst,
				Source:         service.SourceCLI,
				DeleteExisting: deleteExisting,
			})
			if err != nil {
				return err
			}

			log.WithFields(log.Fields{
				"created": summary.CreatedCount,
				"skipped": summary.SkippedCount,
				"errors":  summary.ErrorCount,
			}).Info("Menu import finished")
			for _, w := range summary.Warnings {
				log.Warn(w)
			}
			for _, msg := range summary.ErrorMessages {
				log.Error(msg)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}

	cmd.Flags().StringVarP(&startDate, "start-date", "d", "", "Monday of the first plan week, YYYY-MM-DD")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Menu data JSON file (default "+defaultMenuFile+")")
	cmd.Flags().BoolVar(&deleteExisting, "delete-existing", false, "Delete menus inside the imported date span first")
	return cmd
}

func newAutomigrateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "automigrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, closeDB, err := root.openDB()
			if err != nil {
				return err
			}
			defer closeDB()
			log.Infof("Schema is up to date (%d tables)", len(database.Models()))
			return nil
		},
	}
}
