package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/profile-builder/internal/config"
	"github.com/jonathan/profile-builder/internal/db"
)

var (
	migrateConfig string
	migrateList   bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long:  "Apply every embedded SQL migration that has not yet been recorded in schema_migrations. Requires DATABASE_URL.",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().StringVarP(&migrateConfig, "config", "c", "", "Path to a JSON config file")
	migrateCmd.Flags().BoolVar(&migrateList, "list", false, "List embedded migrations without applying them")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	if migrateList {
		migs, err := db.Migrations()
		if err != nil {
			return err
		}
		for _, m := range migs {
			fmt.Fprintf(out, "%04d  %s\n", m.Version, m.Name)
		}
		return nil
	}

	cfg, err := config.Load(migrateConfig)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	applied, err := database.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if len(applied) == 0 {
		fmt.Fprintln(out, "Database is up to date")
		return nil
	}
	for _, v := range applied {
		fmt.Fprintf(out, "Applied migration %04d\n", v)
	}
	return nil
}
