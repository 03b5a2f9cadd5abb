package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/printwatch/printwatch/api/types/v1alpha1"
	"github.com/printwatch/printwatch/internal/pwatchctl/util"
)

// newStatusCmd creates a command for viewing live printer status
func newStatusCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "status [NAME]",
		Short: "Show live printer status",
		Long: `Show the live telemetry of one printer, or of every registered
printer when run without arguments.

Telemetry is only available while the device link is up. Printers that
have never been connected show no telemetry columns.`,
		Example: `  # Status of the whole fleet
  pwatchctl status

  # Status of one printer as JSON
  pwatchctl status workshop-x1 -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			var statuses []v1alpha1.PrinterStatusResponse
			if len(args) == 1 {
				p, err := client.GetPrinter(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				status, err := client.GetStatus(cmd.Context(), p.ID.String())
				if err != nil {
					return err
				}
				statuses = append(statuses, *status)
			} else {
				statuses, err = client.ListStatus(cmd.Context())
				if err != nil {
					return err
				}
			}

			switch output {
			case "json":
				return util.PrintJSON(cmd.OutOrStdout(), statuses)
			default:
				tw := util.NewTabWriter(cmd.OutOrStdout())
				defer tw.Flush()

				fmt.Fprintf(tw, "NAME\tSTATE\tLINK\tJOB\tPROGRESS\tREMAINING\tLAYER\tTEMPERATURES\tHMS\n")
				for _, s := range statuses {
					printStatusRow(tw, s)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")

	return cmd
}

func printStatusRow(tw io.Writer, s v1alpha1.PrinterStatusResponse) {
	link := "down"
	job := ""
	progress := ""
	remaining := ""
	layer := ""
	temps := ""
	hmsCount := "0"

	if t := s.Telemetry; t != nil {
		if t.Connected {
			link = "up"
		}
		job = t.CurrentJob
		if t.CurrentJob != "" {
			progress = fmt.Sprintf("%.0f%%", t.Progress)
			remaining = formatRemaining(t.RemainingTime)
			if t.TotalLayers > 0 {
				layer = fmt.Sprintf("%d/%d", t.Layer, t.TotalLayers)
			}
		}
		temps = util.FormatTemperatures(t.Temperatures)
		hmsCount = fmt.Sprintf("%d", len(t.HMSErrors))
	}

	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		s.Name, s.State, link, job, progress, remaining, layer, temps, hmsCount)
}

// formatRemaining renders a minute count the way the printer's own
// display does
func formatRemaining(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	d := time.Duration(minutes) * time.Minute
	if d < time.Hour {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), minutes%60)
}
