package service

import (
	"fmt"

	"github.com/Aashish23092/invoice-ocr-ar/client"
	"github.com/Aashish23092/invoice-ocr-ar/config"
	"github.com/Aashish23092/invoice-ocr-ar/utils/invoice"
)

// NewEngineFromConfig builds the heuristic engine, applying RULES_FILE when set
func NewEngineFromConfig(cfg *config.Config) (*invoice.Engine, error) {
	if cfg.RulesFile == "" {
		return invoice.NewEngine(), nil
	}
	rules, err := invoice.LoadRulesFile(cfg.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	return invoice.NewEngine(invoice.WithRules(rules)), nil
}

// NewOracleFromConfig chains Groq then Gemini, skipping backends without an
// API key. It returns nil when neither key is set.
func NewOracleFromConfig(cfg *config.Config) Oracle {
	var clients []LLMClient
	if cfg.GroqAPIKey != "" {
		clients = append(clients, client.NewGroqClient(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel))
	}
	if cfg.GeminiAPIKey != "" {
		clients = append(clients, client.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel))
	}
	if len(clients) == 0 {
		return nil
	}
	return NewOracleChain(clients...)
}

// BuildInvoiceService wires the production pipeline. The caller owns the
// returned Tesseract client and should Close it on shutdown.
func BuildInvoiceService(cfg *config.Config) (*InvoiceService, *client.TesseractClient, error) {
	engine, err := NewEngineFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath, cfg.OCRLanguages)

	svc := NewInvoiceService(
		engine,
		tesseractClient,
		NewPDFProcessor(),
		NewBarcodeScanner(),
		NewOracleFromConfig(cfg),
		InvoiceServiceConfig{
			OracleTimeout: cfg.OracleTimeout,
			OCRWorkers:    cfg.OCRWorkers,
		},
	)
	return svc, tesseractClient, nil
}
