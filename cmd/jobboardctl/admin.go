package main

import (
	"fmt"

	dbfs "github.com/garnizeh/jobboard/db"
	"github.com/garnizeh/jobboard/internal/alerts"
	"github.com/garnizeh/jobboard/internal/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations and reseed document schemas",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := db.Migrate(ctx, a.DB, dbfs.Migrations, dbfs.SeedFiles); err != nil {
			return err
		}
		if err := a.Schemas.Reload(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Database migrated.")
		return nil
	},
}

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Deadline alerts",
}

var scanUser string

var alertsScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan one user's tracked jobs for approaching deadlines and notify them",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if scanUser == "" {
			return fmt.Errorf("--user is required")
		}
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		found, err := alerts.Scan(ctx, scanUser, a.Tracker, a.Repo, a.Notifier)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, al := range found {
			fmt.Fprintf(out, "%s\t%s\t%d days\n", al.Job.JobID, al.Job.Title, al.DaysUntilDeadline)
		}
		fmt.Fprintf(out, "%d alerts\n", len(found))
		return nil
	},
}

func init() {
	alertsScanCmd.Flags().StringVar(&scanUser, "user", "", "uid of the user to scan")
	alertsCmd.AddCommand(alertsScanCmd)
	rootCmd.AddCommand(migrateCmd, alertsCmd)
}
