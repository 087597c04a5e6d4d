package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jask/slicewidgets/internal/config"
	"github.com/jask/slicewidgets/internal/database"
	"github.com/jask/slicewidgets/internal/logging"
	"github.com/jask/slicewidgets/internal/service"
)

var rootCmd = &cobra.Command{
	Use:           "slicewidgets",
	Short:         "Measurement widgets over 2-D slice views",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(recordsCmd)

	rootCmd.PersistentFlags().String("config", "", "config file (default ~/.config/slicewidgets/config.toml)")
	rootCmd.PersistentFlags().String("db", "", "sqlite database path, overrides database.path")
	rootCmd.PersistentFlags().String("migrations", "", "run migrations from this directory instead of the embedded set")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// env is what every command shares: config, logger and the archive.
type env struct {
	cfg     config.Config
	log     *slog.Logger
	db      *sql.DB
	archive *service.ArchiveService
	closers []io.Closer
}

// openEnv loads config, sets up logging and opens the migrated database.
// quiet drops logs unless log.file is set, for commands that own the
// terminal.
func openEnv(cmd *cobra.Command, quiet bool) (*env, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		if err := os.Setenv("SLICEWIDGETS_CONFIG", p); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Database.Path = p
	}

	e := &env{cfg: cfg}
	if quiet && cfg.Log.File == "" {
		e.log = logging.Discard()
	} else {
		logger, closer, err := logging.New(logging.Config{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			File:   cfg.Log.File,
			Output: cmd.ErrOrStderr(),
		})
		if err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
		e.log = logger
		e.closers = append(e.closers, closer)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		e.Close()
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	dir, _ := cmd.Flags().GetString("migrations")
	if dir != "" {
		err = database.RunMigrationsFrom(cfg.Database.Path, dir)
	} else {
		err = database.RunMigrations(cfg.Database.Path)
	}
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	db, err := database.OpenWith(cfg.Database.Path, database.Options{
		BusyTimeout: cfg.Database.BusyTimeout,
		JournalMode: cfg.Database.JournalMode,
	})
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open db: %w", err)
	}
	e.db = db
	e.closers = append(e.closers, db)
	e.archive = &service.ArchiveService{DB: db, Log: e.log}
	e.log.Debug("environment ready", "db", cfg.Database.Path)
	return e, nil
}

// Close releases resources in reverse order of acquisition.
func (e *env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i].Close())
	}
	e.closers = nil
	return errors.Join(errs...)
}
