package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/printwatch/printwatch/api/types/v1alpha1"
	"github.com/printwatch/printwatch/internal/pwatchctl/client"
	"github.com/printwatch/printwatch/internal/pwatchctl/util"
)

// newEventsCmd creates a command for browsing job history
func newEventsCmd() *cobra.Command {
	var (
		types  []string
		since  string
		limit  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "events [NAME]",
		Short: "Show job events",
		Long: `Show recorded job events, newest first. Without arguments events from
every printer are shown; with a printer name only its events are shown.

Events can be filtered by type (JOB_STARTED, JOB_FINISHED, JOB_FAILED,
HMS_RAISED) and by age.`,
		Example: `  # Recent events across the fleet
  pwatchctl events

  # Failures on one printer in the last day
  pwatchctl events workshop-x1 --type=JOB_FAILED --since=24h`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient()
			if err != nil {
				return err
			}

			opts := client.EventOptions{
				Types: types,
				Limit: limit,
			}
			if since != "" {
				d, err := time.ParseDuration(since)
				if err != nil {
					return fmt.Errorf("invalid --since duration %q: %w", since, err)
				}
				opts.Since = time.Now().Add(-d)
			}

			var events []v1alpha1.JobEvent
			if len(args) == 1 {
				p, err := c.GetPrinter(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				events, err = c.ListPrinterEvents(cmd.Context(), p.ID.String(), opts)
				if err != nil {
					return err
				}
			} else {
				events, err = c.ListEvents(cmd.Context(), opts)
				if err != nil {
					return err
				}
			}

			switch output {
			case "json":
				return util.PrintJSON(cmd.OutOrStdout(), events)
			default:
				tw := util.NewTabWriter(cmd.OutOrStdout())
				defer tw.Flush()

				fmt.Fprintf(tw, "WHEN\tPRINTER\tTYPE\tJOB\tHMS CODE\n")
				for _, e := range events {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
						util.FormatDuration(time.Since(e.OccurredAt)),
						e.PrinterID,
						e.Type,
						e.JobName,
						e.HMSCode)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringArrayVar(&types, "type", nil, "Filter by event type (repeatable)")
	cmd.Flags().StringVar(&since, "since", "", "Only events newer than this duration (e.g. 24h)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of events")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")

	return cmd
}

// newMetricsCmd creates a command for viewing aggregated job metrics
func newMetricsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "metrics NAME",
		Short: "Show job metrics for a printer",
		Long: `Show aggregated job counts for one printer: jobs started, finished
and failed, plus the number of HMS errors raised.`,
		Example: `  # Job history summary
  pwatchctl metrics workshop-x1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient()
			if err != nil {
				return err
			}

			p, err := c.GetPrinter(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			metrics, err := c.GetMetrics(cmd.Context(), p.ID.String())
			if err != nil {
				return err
			}

			if output == "json" {
				return util.PrintJSON(cmd.OutOrStdout(), metrics)
			}

			fmt.Printf("Printer: %s\n", p.Name)
			fmt.Printf("Jobs started:  %d\n", metrics.JobsStarted)
			fmt.Printf("Jobs finished: %d\n", metrics.JobsFinished)
			fmt.Printf("Jobs failed:   %d\n", metrics.JobsFailed)
			fmt.Printf("HMS raised:    %d\n", metrics.HMSRaised)
			if !metrics.LastEventAt.IsZero() {
				fmt.Printf("Last event:    %s\n", util.FormatDuration(time.Since(metrics.LastEventAt)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json)")

	return cmd
}
