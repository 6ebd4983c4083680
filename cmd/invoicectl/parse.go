package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aashish23092/invoice-ocr-ar/config"
	"github.com/Aashish23092/invoice-ocr-ar/logging"
	"github.com/Aashish23092/invoice-ocr-ar/service"
)

// parseTimeoutSlack is the OCR budget added on top of the oracle timeout
const parseTimeoutSlack = 2 * time.Minute

var (
	parsePassword string
	parseOracle   bool
	parseDebug    bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse an invoice file and print the result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parsePassword, "password", "p", "", "PDF user password")
	parseCmd.Flags().BoolVar(&parseOracle, "oracle", false, "ask the configured LLM oracle and merge its answer")
	parseCmd.Flags().BoolVar(&parseDebug, "debug", false, "keep the heuristic debug trace in the output")
	rootCmd.AddCommand(parseCmd)
}

func loadConfig() *config.Config {
	cfg := config.LoadConfig()
	if rulesFile != "" {
		cfg.RulesFile = rulesFile
	}
	logging.Init(logging.Config{Level: logLevel, Format: "console", Output: os.Stderr})
	return cfg
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	svc, tesseractClient, err := service.BuildInvoiceService(cfg)
	if err != nil {
		return err
	}
	defer tesseractClient.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.OracleTimeout+parseTimeoutSlack)
	defer cancel()

	resp, err := svc.ParseDocument(ctx, filepath.Base(path), data, parsePassword, parseOracle)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if !parseDebug {
		resp.Extracted.Debug = []string{}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(resp)
}
