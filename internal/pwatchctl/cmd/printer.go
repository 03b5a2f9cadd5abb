package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/printwatch/printwatch/api/types/v1alpha1"
	"github.com/printwatch/printwatch/internal/pwatchctl/util"
)

// newPrinterCmd creates the printer management command
func newPrinterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "printer",
		Short: "Manage printers",
		Long: `The printer command provides subcommands for managing printers in the
system.

This includes registering printers with their LAN access credentials,
listing registered printers, connecting and disconnecting device links,
and removing printers.`,
	}

	cmd.AddCommand(
		newPrinterAddCmd(),
		newPrinterListCmd(),
		newPrinterUpdateCmd(),
		newPrinterConnectCmd(),
		newPrinterDisconnectCmd(),
		newPrinterDisableCmd(),
		newPrinterDeleteCmd(),
	)

	return cmd
}

// newPrinterAddCmd creates a command for registering printers
func newPrinterAddCmd() *cobra.Command {
	var (
		ip         string
		accessCode string
		serial     string
		model      string
	)

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Register a printer",
		Long: `Register a new printer with its LAN coordinates.

The access code is shown in the printer's network settings screen, and
the serial number is printed on the device label. The printer stays
registered but unlinked until 'pwatchctl printer connect' is run.`,
		Example: `  # Register an X1 Carbon on the workshop network
  pwatchctl printer add workshop-x1 \
    --ip=192.168.1.50 --access-code=12345678 --serial=01S00C123400001 \
    --model="X1 Carbon"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			client, err := getClient()
			if err != nil {
				return err
			}

			req := &v1alpha1.PrinterRegistrationRequest{
				Name: name,
				Endpoint: v1alpha1.PrinterEndpoint{
					IPAddress:    ip,
					AccessCode:   accessCode,
					SerialNumber: serial,
				},
				Model: model,
			}

			p, err := client.RegisterPrinter(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("error registering printer: %w", err)
			}

			fmt.Printf("Printer %q registered with id %s\n", p.Name, p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&ip, "ip", "", "Printer LAN IP address (required)")
	cmd.Flags().StringVar(&accessCode, "access-code", "", "LAN access code (required)")
	cmd.Flags().StringVar(&serial, "serial", "", "Device serial number (required)")
	cmd.Flags().StringVar(&model, "model", "", "Device model name")

	_ = cmd.MarkFlagRequired("ip")
	_ = cmd.MarkFlagRequired("access-code")
	_ = cmd.MarkFlagRequired("serial")

	return cmd
}

// newPrinterListCmd creates a command for listing and filtering printers
func newPrinterListCmd() *cobra.Command {
	var (
		model  string
		states []string
		output string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List printers",
		Long: `List printers in the system, optionally filtered by model or state.

The output can be formatted as a table (default) or as JSON for scripting.`,
		Example: `  # List all printers
  pwatchctl printer list

  # List online X1 Carbon printers as JSON
  pwatchctl printer list --model="X1 Carbon" --state=ONLINE -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			filter := v1alpha1.PrinterFilter{Model: model}
			for _, s := range states {
				filter.States = append(filter.States, v1alpha1.PrinterState(s))
			}

			printers, err := client.ListPrinters(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("error listing printers: %w", err)
			}

			switch output {
			case "json":
				return util.PrintJSON(cmd.OutOrStdout(), printers)
			default:
				tw := util.NewTabWriter(cmd.OutOrStdout())
				defer tw.Flush()

				fmt.Fprintf(tw, "NAME\tMODEL\tIP\tSTATE\tLAST SEEN\tPROPERTIES\n")
				for _, p := range printers {
					lastSeen := "Never"
					if !p.Status.LastSeen.IsZero() {
						lastSeen = util.FormatDuration(time.Since(p.Status.LastSeen))
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
						p.Name,
						p.Spec.Model,
						p.Spec.Endpoint.IPAddress,
						p.Status.State,
						lastSeen,
						util.FormatProperties(p.Spec.Properties))
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Filter by device model")
	cmd.Flags().StringArrayVar(&states, "state", nil, "Filter by state (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")

	return cmd
}

// newPrinterUpdateCmd creates a command for updating printer configuration
func newPrinterUpdateCmd() *cobra.Command {
	var (
		ip         string
		accessCode string
		labels     []string
	)

	cmd := &cobra.Command{
		Use:   "update NAME",
		Short: "Update printer configuration",
		Long: `Update a printer's LAN coordinates or properties.

Endpoint changes are useful after a DHCP lease change or an access code
reset on the device. The serial number cannot be changed; delete and
re-register the printer instead.`,
		Example: `  # Point a printer at its new address
  pwatchctl printer update workshop-x1 --ip=192.168.1.99

  # Tag a printer with metadata
  pwatchctl printer update workshop-x1 --label=room=workshop --label=filament=PLA`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			p, err := client.GetPrinter(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			req := &v1alpha1.PrinterUpdateRequest{}
			if ip != "" || accessCode != "" {
				endpoint := p.Spec.Endpoint
				if ip != "" {
					endpoint.IPAddress = ip
				}
				if accessCode != "" {
					endpoint.AccessCode = accessCode
				}
				req.Endpoint = &endpoint
			}
			if len(labels) > 0 {
				props, err := util.ParseLabels(labels)
				if err != nil {
					return err
				}
				req.Properties = props
			}

			if _, err := client.UpdatePrinter(cmd.Context(), p.ID.String(), req); err != nil {
				return fmt.Errorf("error updating printer: %w", err)
			}

			fmt.Printf("Printer %q updated\n", p.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&ip, "ip", "", "New LAN IP address")
	cmd.Flags().StringVar(&accessCode, "access-code", "", "New LAN access code")
	cmd.Flags().StringArrayVar(&labels, "label", nil, "Set properties in key=value format")

	return cmd
}

// newPrinterConnectCmd creates a command for establishing device links
func newPrinterConnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect NAME",
		Short: "Connect to a printer",
		Long: `Establish the device link to a registered printer. Once connected the
server receives live telemetry and records job events for the printer.`,
		Example: `  # Bring a printer online
  pwatchctl printer connect workshop-x1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			p, err := client.GetPrinter(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if err := client.ConnectPrinter(cmd.Context(), p.ID.String()); err != nil {
				return fmt.Errorf("error connecting printer: %w", err)
			}

			fmt.Printf("Printer %q connected\n", p.Name)
			return nil
		},
	}
}

// newPrinterDisconnectCmd creates a command for tearing down device links
func newPrinterDisconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect NAME",
		Short: "Disconnect from a printer",
		Long: `Tear down the device link to a printer. The printer stays registered
and can be reconnected later.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			p, err := client.GetPrinter(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if err := client.DisconnectPrinter(cmd.Context(), p.ID.String()); err != nil {
				return fmt.Errorf("error disconnecting printer: %w", err)
			}

			fmt.Printf("Printer %q disconnected\n", p.Name)
			return nil
		},
	}
}

// newPrinterDisableCmd creates a command for taking printers out of service
func newPrinterDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable NAME",
		Short: "Disable a printer",
		Long: `Take a printer out of service. A disabled printer keeps its
registration and history but cannot be connected until re-enabled by an
endpoint update.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			p, err := client.GetPrinter(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if err := client.DisablePrinter(cmd.Context(), p.ID.String()); err != nil {
				return fmt.Errorf("error disabling printer: %w", err)
			}

			fmt.Printf("Printer %q disabled\n", p.Name)
			return nil
		},
	}
}

// newPrinterDeleteCmd creates a command for removing printers
func newPrinterDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a printer",
		Long: `Remove a printer from the system. Any active device link is closed
first. Recorded job events for the printer are kept until pruned.`,
		Example: `  # Delete a printer
  pwatchctl printer delete workshop-x1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			p, err := client.GetPrinter(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if err := client.DeletePrinter(cmd.Context(), p.ID.String()); err != nil {
				return fmt.Errorf("error deleting printer: %w", err)
			}

			fmt.Printf("Printer %q deleted\n", p.Name)
			return nil
		},
	}
}
