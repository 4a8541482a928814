// ABOUTME: CLI commands for saved clustering reports.
// ABOUTME: Provides list and read subcommands over the report store.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Manage saved reports",
	Long:  "List and read clustering reports saved with --save.",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent reports",
	Long:  "List saved reports, most recent first.",
	RunE:  runReportsList,
}

var reportsReadCmd = &cobra.Command{
	Use:   "read <path>",
	Short: "Read a report",
	Long:  "Print a saved report by file path.",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportsRead,
}

// Flags
var (
	reportsLimit int
	reportsDays  int
)

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsReadCmd)

	reportsListCmd.Flags().IntVar(&reportsLimit, "limit", 10, "Maximum number of reports to show")
	reportsListCmd.Flags().IntVar(&reportsDays, "days", 30, "Number of days back to search")
}

func runReportsList(cmd *cobra.Command, args []string) error {
	reports, err := globalReportStore.ListReports(reportsLimit, reportsDays)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(reports) == 0 {
		_, _ = fmt.Fprintln(out, "No reports found.")
		return nil
	}

	for _, r := range reports {
		_, _ = fmt.Fprintf(out, "%s %s (%d rows, %s, %d clusters) %s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Source,
			len(r.Labels),
			r.Method,
			len(r.Clusters),
			r.FilePath,
		)
	}
	return nil
}

func runReportsRead(cmd *cobra.Command, args []string) error {
	report, err := globalReportStore.ReadReport(args[0])
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Date: %s\n", report.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(out, "Source: %s\n", report.Source)
	_, _ = fmt.Fprintf(out, "Method: %s, %s top %d\n\n", report.Method, report.Strategy, report.TopK)
	for i := range report.Clusters {
		_, _ = fmt.Fprintln(out, report.ClusterLine(i))
	}
	return nil
}
