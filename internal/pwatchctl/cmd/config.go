package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/printwatch/printwatch/internal/pwatchctl/config"
)

// newConfigCmd creates the config command that manages CLI contexts.
// Each context represents a different server, allowing quick switching
// between environments.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long: `The config command provides subcommands for managing pwatchctl's
configuration, including contexts for different server endpoints.

Each context represents a different printwatch server, allowing you to
switch between a local daemon and a shared one without retyping URLs.`,
	}

	cmd.AddCommand(
		newConfigGetContextCmd(),
		newConfigSetContextCmd(),
		newConfigDeleteContextCmd(),
		newConfigUseContextCmd(),
		newConfigViewCmd(),
	)

	return cmd
}

// newConfigGetContextCmd creates a command for viewing context information
func newConfigGetContextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-context [name]",
		Short: "Display one or many contexts",
		Long: `Display information about one or many configuration contexts.

When run without arguments, it displays a table of all available contexts.
When given a context name, it shows details for that context.`,
		Example: `  # List all contexts
  pwatchctl config get-context

  # Show details for a specific context
  pwatchctl config get-context workshop`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 {
				fmt.Printf("CURRENT   NAME           SERVER\n")
				for name, ctx := range cfg.Contexts {
					current := " "
					if name == cfg.CurrentContext {
						current = "*"
					}
					fmt.Printf("%-8s  %-13s  %s\n", current, name, ctx.Server)
				}
				return
			}

			name := args[0]
			ctx, ok := cfg.Contexts[name]
			if !ok {
				fmt.Printf("Error: context %q not found\n", name)
				return
			}

			fmt.Printf("Name: %s\n", name)
			fmt.Printf("Server: %s\n", ctx.Server)
			fmt.Printf("Insecure Skip Verify: %v\n", ctx.InsecureSkipVerify)
		},
	}
}

// newConfigSetContextCmd creates a command for creating or updating contexts
func newConfigSetContextCmd() *cobra.Command {
	var (
		serverURL       string
		insecureSkipTLS bool
	)

	cmd := &cobra.Command{
		Use:   "set-context NAME",
		Short: "Create or update a context",
		Long: `Create a new context or update an existing one with the specified
settings. The first context created automatically becomes current.`,
		Example: `  # Create a context for a local daemon
  pwatchctl config set-context local --server=http://localhost:8080

  # Create a context with TLS verification disabled
  pwatchctl config set-context workshop --server=https://pwatch.lan:8443 --insecure-skip-tls`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if serverURL == "" {
				return fmt.Errorf("server URL is required")
			}

			cfg.AddContext(name, &config.Context{
				Name:               name,
				Server:             serverURL,
				InsecureSkipVerify: insecureSkipTLS,
			})

			if cfg.CurrentContext == "" {
				cfg.CurrentContext = name
			}

			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}

			fmt.Printf("Context %q updated\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "Server URL (required)")
	cmd.Flags().BoolVar(&insecureSkipTLS, "insecure-skip-tls", false, "Skip TLS certificate verification")

	_ = cmd.MarkFlagRequired("server")

	return cmd
}

// newConfigDeleteContextCmd creates a command for removing contexts
func newConfigDeleteContextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-context NAME",
		Short: "Delete a context",
		Example: `  # Delete the 'workshop' context
  pwatchctl config delete-context workshop`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if err := cfg.RemoveContext(name); err != nil {
				return fmt.Errorf("error removing context: %w", err)
			}

			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}

			fmt.Printf("Context %q deleted\n", name)
			return nil
		},
	}
}

// newConfigUseContextCmd creates a command for switching between contexts
func newConfigUseContextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use-context NAME",
		Short: "Switch to a different context",
		Example: `  # Switch to the workshop server
  pwatchctl config use-context workshop`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if err := cfg.SetCurrentContext(name); err != nil {
				return fmt.Errorf("error setting current context: %w", err)
			}

			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}

			fmt.Printf("Switched to context %q\n", name)
			return nil
		},
	}
}

// newConfigViewCmd creates a command for displaying the configuration
func newConfigViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Display merged configuration",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Current Context: %s\n\n", cfg.CurrentContext)
			fmt.Printf("Contexts:\n")
			for name, ctx := range cfg.Contexts {
				fmt.Printf("- %s:\n", name)
				fmt.Printf("    Server: %s\n", ctx.Server)
				fmt.Printf("    InsecureSkipVerify: %v\n", ctx.InsecureSkipVerify)
			}
		},
	}
}
