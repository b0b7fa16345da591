package cmd

import (
	"os"

	"github.com/encodeous/rayon/state"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rayon",
	Short: "Rayon BGP-style route processor",
	Long: `Rayon is a simplified BGP-style route processor for a single autonomous system.
It learns prefixes from its neighbors over datagram control channels, forwards data
along the best matching route, and propagates reachability according to commercial
relationships.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&state.ConfigPath, "config", "c", state.ConfigPath, "router configuration file")
}
