package commands

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/reportdeck/internal/api/client"
)

func NewReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "report",
		Short:   "Scheduled report management commands",
		Aliases: []string{"reports", "r"},
	}

	cmd.AddCommand(newReportListCommand())
	cmd.AddCommand(newReportExecuteCommand())
	cmd.AddCommand(newReportDeleteCommand())
	cmd.AddCommand(newReportHistoryCommand())

	return cmd
}

func newReportListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List scheduled reports",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			reports, err := c.ListReports()
			if err != nil {
				return fmt.Errorf("failed to list reports: %v", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSTATUS\tSCHEDULE\tRUNS\tERRORS\tNEXT RUN")
			for _, rep := range reports {
				nextRun := "-"
				if rep.NextRunAt != nil {
					nextRun = rep.NextRunAt.Format(time.RFC3339)
				}
				schedule := rep.ScheduleDescription
				if schedule == "" {
					schedule = "one-shot"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%s\n",
					rep.ID, rep.Name, rep.Status, schedule,
					rep.ExecutionCount, rep.ErrorCount, nextRun)
			}
			return w.Flush()
		},
	}
}

func newReportExecuteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "execute [report_id]",
		Short:   "Run a scheduled report immediately",
		Aliases: []string{"run"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid report id: %s", args[0])
			}

			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			result, err := c.ExecuteReport(uint(id))
			if err != nil {
				return fmt.Errorf("failed to execute report: %v", err)
			}

			if result.Success {
				fmt.Printf("Report executed successfully in %s\n", result.FinishedAt.Sub(result.StartedAt))
				if result.ArtifactURL != "" {
					fmt.Printf("Artifact: %s\n", result.ArtifactURL)
				}
			} else {
				fmt.Printf("Report execution failed: %s\n", result.Error)
			}
			return nil
		},
	}
}

func newReportDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete [report_id]",
		Short:   "Delete a scheduled report",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid report id: %s", args[0])
			}

			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			if err := c.DeleteReport(uint(id)); err != nil {
				return fmt.Errorf("failed to delete report: %v", err)
			}
			fmt.Println("Report deleted")
			return nil
		},
	}
}

func newReportHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [report_id]",
		Short: "Show recent executions of a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid report id: %s", args[0])
			}

			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			execs, err := c.ListReportExecutions(uint(id), limit)
			if err != nil {
				return fmt.Errorf("failed to list executions: %v", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "STARTED\tDURATION\tRESULT\tARTIFACT\tERROR")
			for _, e := range execs {
				result := "ok"
				if !e.Success {
					result = "failed"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					e.StartedAt.Format(time.RFC3339),
					e.FinishedAt.Sub(e.StartedAt),
					result, e.ArtifactURL, e.Error)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of executions to show")
	return cmd
}
