package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/spotilytics/internal/formatter"
	"github.com/desertthunder/spotilytics/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file from the template if needed, then opens the database,
// which applies pending migrations, and reports the migration state.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	if _, err := os.Stat(r.configPath); errors.Is(err, os.ErrNotExist) {
		r.logger.Info("config file not found, creating from template", "path", r.configPath)
		if err := shared.CreateConfigFile(r.configPath); err != nil {
			return err
		}
		r.writePlainln("%s Created %s", formatter.Styles.OK("✓"), r.configPath)
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	if cmd.Bool("rollback") {
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		r.writePlainln("%s Rolled back the latest migration", formatter.Styles.OK("✓"))
	}

	statuses, err := shared.Migrations(db)
	if err != nil {
		return err
	}

	table := formatter.Table{Title: "Migrations", Headers: []string{"Version", "Name", "Applied"}}
	for _, s := range statuses {
		applied := "no"
		if s.Applied {
			applied = "yes"
		}
		table.Rows = append(table.Rows, []string{fmt.Sprintf("%04d", s.Version), s.Name, applied})
	}
	if err := formatter.Render(r.output, formatter.FormatText, table); err != nil {
		return err
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	if !r.config.Credentials.Spotify.Configured() {
		r.writePlainln("\n%s", formatter.Styles.Warn("Add your Spotify client_id and client_secret to "+r.configPath+", then run: spotilytics auth login"))
	}
	return nil
}
