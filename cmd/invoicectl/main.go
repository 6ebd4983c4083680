// Command invoicectl parses Argentine utility invoices from the command
// line with the same pipeline the HTTP service uses.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	logLevel  string
	rulesFile string
)

var rootCmd = &cobra.Command{
	Use:   "invoicectl",
	Short: "Extract payment data from Argentine utility invoices",
	Long: `invoicectl reads an invoice (PDF, image or plain text) and prints the
amount, due date, provider, customer name and payment barcode as JSON.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "YAML rules file (overrides RULES_FILE)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
