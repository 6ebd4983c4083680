package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Aashish23092/invoice-ocr-ar/service"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the providers the engine recognizes",
	Args:  cobra.NoArgs,
	RunE:  runProviders,
}

func init() {
	rootCmd.AddCommand(providersCmd)
}

func runProviders(cmd *cobra.Command, _ []string) error {
	engine, err := service.NewEngineFromConfig(loadConfig())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE")
	for _, p := range engine.Rules().Providers {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Name, p.Type)
	}
	return w.Flush()
}
