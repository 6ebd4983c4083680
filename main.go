package main

import (
	"github.com/gin-gonic/gin"

	"github.com/Aashish23092/invoice-ocr-ar/config"
	"github.com/Aashish23092/invoice-ocr-ar/handler"
	"github.com/Aashish23092/invoice-ocr-ar/logging"
	"github.com/Aashish23092/invoice-ocr-ar/service"
)

func main() {
	// Initialize configuration
	cfg := config.LoadConfig()

	log := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Info().Str("tessdata", cfg.TesseractDataPath).Strs("languages", cfg.OCRLanguages).Msg("OCR configured")

	// Initialize service layer
	invoiceService, tesseractClient, err := service.BuildInvoiceService(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize invoice service")
	}
	defer tesseractClient.Close()

	if !cfg.OracleEnabled() {
		log.Warn().Msg("no GROQ_API_KEY or GEMINI_API_KEY set, running heuristic-only")
	}

	// Initialize handler layer
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, cfg.MaxFileSize)

	// Setup Gin router
	router := gin.Default()

	// Configure max multipart memory (32 MB)
	router.MaxMultipartMemory = 32 << 20

	router.GET("/health", invoiceHandler.Health)

	// API routes
	api := router.Group("/api/v1")
	invoiceHandler.RegisterRoutes(api)

	// Start server
	log.Info().Str("port", cfg.ServerPort).Msg("starting invoice OCR service")
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
