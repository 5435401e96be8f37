package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ledgerd",
	Short: "ledgerd - custodial token ledger for a relay-based pub/sub substrate",
	Long: `ledgerd consumes signed transaction-request events from a Nostr-like
relay network, mutates a multi-account, multi-token balance ledger under
strict accounting invariants, and publishes outcome and balance events
back to the network.`,
	Version: "0.1.0-dev",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "configuration file path (optional; environment variables are sufficient)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress startup banner")
}
