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

func NewEndpointCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "endpoint",
		Short:   "Monitored endpoint commands",
		Aliases: []string{"endpoints", "ep"},
	}

	cmd.AddCommand(newEndpointListCommand())
	cmd.AddCommand(newEndpointTestCommand())

	return cmd
}

func newEndpointListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List monitored endpoints",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			endpoints, err := c.ListEndpoints()
			if err != nil {
				return fmt.Errorf("failed to list endpoints: %v", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tURL\tACTIVE\tLAST STATUS\tFAILURES\tLAST SUCCESS")
			for _, ep := range endpoints {
				lastSuccess := "-"
				if ep.LastSuccessAt != nil {
					lastSuccess = ep.LastSuccessAt.Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%d\t%d\t%s\n",
					ep.ID, ep.Name, ep.URL, ep.IsActive,
					ep.LastStatus, ep.ConsecutiveFailures, lastSuccess)
			}
			return w.Flush()
		},
	}
}

func newEndpointTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test [endpoint_id]",
		Short: "Run a health check immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid endpoint id: %s", args[0])
			}

			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			check, err := c.TestEndpoint(uint(id))
			if err != nil {
				return fmt.Errorf("failed to test endpoint: %v", err)
			}

			if check.Success {
				fmt.Printf("OK: status %d in %dms\n", check.StatusCode, check.ResponseTime)
			} else {
				fmt.Printf("FAILED: %s (%dms)\n", check.Error, check.ResponseTime)
			}
			return nil
		},
	}
}
