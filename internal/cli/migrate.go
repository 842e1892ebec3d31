package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ems/internal/platform/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		mg := newMigrator()
		defer mg.Close()
		if err := mg.Up(); err != nil {
			exitError("migrate up: %v", err)
		}
		printVersion(cmd, mg)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if migrateSteps <= 0 && !migrateAll {
			exitError("pass --steps N or --all")
		}
		mg := newMigrator()
		defer mg.Close()
		if err := mg.Down(migrateSteps); err != nil {
			exitError("migrate down: %v", err)
		}
		printVersion(cmd, mg)
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied schema version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		mg := newMigrator()
		defer mg.Close()
		printVersion(cmd, mg)
	},
}

var (
	migrateDir   string
	migrateSteps int
	migrateAll   bool
)

func init() {
	migrateCmd.PersistentFlags().StringVar(&migrateDir, "dir", "", "Migrations directory (defaults to MIGRATIONS_DIR)")
	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 0, "Number of migrations to roll back")
	migrateDownCmd.Flags().BoolVar(&migrateAll, "all", false, "Roll back every migration")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

func newMigrator() *db.Migrator {
	cfg := loadConfig()
	dir := migrateDir
	if dir == "" {
		dir = cfg.MigrationsDir
	}
	mg, err := db.NewMigrator(cfg.DatabaseURL, dir)
	if err != nil {
		exitError("%v", err)
	}
	return mg
}

func printVersion(cmd *cobra.Command, mg *db.Migrator) {
	version, dirty, ok, err := mg.Version()
	if err != nil {
		exitError("read version: %v", err)
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
		return
	}
	suffix := ""
	if dirty {
		suffix = " (dirty)"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "version %d%s\n", version, suffix)
}
