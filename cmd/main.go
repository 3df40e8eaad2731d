package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "drq",
	Short: "Reset product stock to default quantities when the store closes",
	Long: `drq keeps catalog stock in line with a weekly open/closed store cycle.

Products carrying a default_reset_quantity attribute are reset to that value,
products carrying do_not_reset_quantity are left alone, and every other
product is reset to zero.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "configs/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(serveCmd, checkCmd, resetCmd, setCmd, importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
