// Command menuctl runs the offline menu pipeline: sheet parsing, allergen
// inference and calendar import, plus database maintenance.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/pageza/comedor/backend/config"
	"github.com/pageza/comedor/backend/internal/database"
	"github.com/pageza/comedor/backend/internal/logging"
)

type rootOptions struct {
	configPath string
	logLevel   string

	file *config.FileConfig
	cfg  *config.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, out io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	if err := cmd.ExecuteContext(ctx); err != nil {
		log.Errorf("menuctl: %v", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "menuctl",
		Short:         "Menu pipeline and maintenance tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML defaults file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newProcessCSVCmd(opts),
		newInferAllergensCmd(opts),
		newMigrateMenuCmd(opts),
		newSeedCmd(opts),
		newAutomigrateCmd(opts),
	)
	return cmd
}

// load reads the environment, overlays the defaults file and the flags, and
// configures logging.
func (o *rootOptions) load() error {
	cfg, err := config.LoadEnv()
	if err != nil {
		return err
	}
	if o.configPath != "" {
		fc, err := config.LoadFile(o.configPath)
		if err != nil {
			return err
		}
		fc.Apply(cfg)
		o.file = fc
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := logging.Setup(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile}); err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}

// importDefaults returns the [import] section of the defaults file, if any.
func (o *rootOptions) importDefaults() (sheetsDir, output, startDate string) {
	if o.file == nil {
		return "", "", ""
	}
	return o.file.Import.SheetsDir, o.file.Import.Output, o.file.Import.StartDate
}

// openDB connects to the configured database and brings the schema up to date.
// The caller closes the returned handle.
func (o *rootOptions) openDB() (*gorm.DB, func(), error) {
	if err := config.ValidateDatabase(o.cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid database configuration: %w", err)
	}
	db, err := database.New(o.cfg)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if err := database.RunMigrations(db); err != nil {
		closeDB()
		return nil, nil, err
	}
	return db, closeDB, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
