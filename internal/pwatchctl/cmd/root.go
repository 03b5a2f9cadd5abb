// Package cmd implements the printwatch CLI commands
package cmd

import (
	"crypto/tls"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/printwatch/printwatch/internal/pwatchctl/client"
	"github.com/printwatch/printwatch/internal/pwatchctl/config"
)

var (
	cfgFile string
	server  string
	debug   bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "pwatchctl",
	Short: "pwatchctl controls a printwatch server",
	Long: `pwatchctl is a command line tool for managing Bambu Lab printers
through a printwatch server.

It can register printers, watch their live status, inspect print job
history, and decode HMS error codes.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.pwatchctl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&server, "server", "", "API server URL (overrides current context)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")

	rootCmd.AddCommand(
		newPrinterCmd(),
		newStatusCmd(),
		newEventsCmd(),
		newMetricsCmd(),
		newHMSCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
}

// initConfig loads the CLI configuration before any command runs
func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
}

// getClient builds an API client from the flags, environment and the
// active context, in that order of precedence
func getClient() (*client.Client, error) {
	apiURL := server
	if apiURL == "" {
		apiURL = os.Getenv("PWATCHCTL_SERVER")
	}

	var options []client.ClientOption
	if apiURL == "" {
		context, err := cfg.GetCurrentContext()
		if err != nil {
			return nil, fmt.Errorf("no API server configured, set PWATCHCTL_SERVER, pass --server or configure a context: %w", err)
		}
		apiURL = context.Server
		if context.InsecureSkipVerify {
			options = append(options, client.WithTLSConfig(&tls.Config{
				InsecureSkipVerify: true, // #nosec G402
			}))
		}
	}

	c, err := client.NewClient(apiURL, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	return c, nil
}
