package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/garnizeh/jobboard/internal/catalog"
	"github.com/garnizeh/jobboard/internal/wizard"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List and import job postings",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List postings, newest first",
	RunE:  runJobsList,
}

var jobsImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import postings from a JSON array file",
	Long:  "Import postings from a JSON array file. Each posting must pass the same checks as a wizard submission; invalid ones are reported and skipped.",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsImport,
}

var (
	listRole     string
	listCategory string
	listStatus   string
)

func init() {
	jobsListCmd.Flags().StringVar(&listRole, "role", "", "Only postings with this role")
	jobsListCmd.Flags().StringVar(&listCategory, "category", "", "Only postings in this category")
	jobsListCmd.Flags().StringVar(&listStatus, "status", "", "Only postings with this status")

	jobsCmd.AddCommand(jobsListCmd, jobsImportCmd)
	rootCmd.AddCommand(jobsCmd)
}

func runJobsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	jobs, err := a.Catalog.ListJobs(ctx, catalog.JobFilter{
		Role:     listRole,
		Category: listCategory,
		Status:   models.JobStatus(listStatus),
	})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "JOB ID\tTITLE\tCOMPANY\tSTATUS\tPOSTED\tDEADLINE")
	for _, j := range jobs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", j.JobID, j.Title, j.CompanyName, j.Status, j.DatePosted, j.ApplicationDeadline)
	}
	return tw.Flush()
}

func runJobsImport(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	var postings []models.Job
	if err := json.Unmarshal(raw, &postings); err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[0], err)
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	imported, skipped := 0, 0
	for i, p := range postings {
		err := wizard.New(func(ctx context.Context, job models.Job) error {
			created, err := a.Catalog.CreateJob(ctx, job)
			if err == nil {
				fmt.Fprintf(out, "imported %s %s\n", created.JobID, created.Title)
			}
			return err
		}, wizard.WithDraft(p)).Submit(ctx)
		if err != nil {
			skipped++
			fmt.Fprintf(out, "skipped #%d %q: %v\n", i+1, p.Title, err)
			for _, ve := range wizard.ValidateAll(wizard.ApplyDefaults(p, time.Now())) {
				fmt.Fprintf(out, "  step %d %s: %s\n", ve.Step, ve.Field, ve.Message)
			}
			continue
		}
		imported++
	}
	fmt.Fprintf(out, "%d imported, %d skipped\n", imported, skipped)
	return nil
}
