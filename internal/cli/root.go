// Package cli implements the eventsplit command line.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "eventsplit",
	Short: "Share the costs of an event and settle who owes whom",
	Long: `eventsplit records who paid what during an event, splits every expense
equally among the participants and keeps the resulting debts up to date.
Clients follow debt changes by long-polling or by a push stream.`,
	SilenceUsage: true,
}

var (
	configPath string
	serverURL  string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Server base URL for client commands")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
