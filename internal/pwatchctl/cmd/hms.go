package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/printwatch/printwatch/internal/pwatchctl/util"
	"github.com/printwatch/printwatch/internal/pwatchd/hms"
)

// newHMSCmd creates the HMS error inspection command
func newHMSCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hms",
		Short: "Inspect HMS errors",
		Long: `The hms command provides subcommands for working with Health
Management System error codes.

Codes can be decoded offline with 'explain', or fetched live from a
connected printer with 'list'.`,
	}

	cmd.AddCommand(
		newHMSExplainCmd(),
		newHMSListCmd(),
	)

	return cmd
}

// newHMSExplainCmd creates a command for decoding a single HMS code
func newHMSExplainCmd() *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "explain CODE",
		Short: "Decode an HMS error code",
		Long: `Decode an HMS error code offline and print its severity, module,
description and wiki link.

The code is given in the same notation the printer screen and the wiki
use: four groups of four hex digits separated by underscores.`,
		Example: `  # Decode a code from the printer screen
  pwatchctl hms explain 0300_0D00_0001_0004

  # Get the wiki link for an H2D
  pwatchctl hms explain 0300_0D00_0001_0004 --model=H2D`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := hms.ParseCode(args[0])
			if err != nil {
				return fmt.Errorf("invalid HMS code: %w", err)
			}

			severity := code.Severity()
			class := severity.Class()

			fmt.Printf("Code:        %s\n", code)
			fmt.Printf("Severity:    %s (%d)\n", class.Label, severity)
			fmt.Printf("Module:      0x%02X\n", code.Module())
			fmt.Printf("Blocking:    %v\n", severity.Blocking())
			fmt.Printf("Description: %s\n", hms.Describe(code))
			fmt.Printf("Wiki:        %s\n", hms.WikiURL(model, code))
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Device model, selects the wiki section (e.g. H2D)")

	return cmd
}

// newHMSListCmd creates a command for fetching a printer's active errors
func newHMSListCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list NAME",
		Short: "List active HMS errors on a printer",
		Long: `List the HMS errors currently active on a connected printer, decoded
with their severity, description and wiki link.`,
		Example: `  # Active errors on one printer
  pwatchctl hms list workshop-x1`,
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

			errors, err := c.GetHMS(cmd.Context(), p.ID.String())
			if err != nil {
				return err
			}

			if output == "json" {
				return util.PrintJSON(cmd.OutOrStdout(), errors)
			}

			if len(errors) == 0 {
				fmt.Printf("No active HMS errors on %q\n", p.Name)
				return nil
			}

			tw := util.NewTabWriter(cmd.OutOrStdout())
			defer tw.Flush()

			fmt.Fprintf(tw, "CODE\tSEVERITY\tDESCRIPTION\tWIKI\n")
			for _, e := range errors {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					e.Code, e.SeverityLabel, e.Description, e.WikiURL)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")

	return cmd
}
