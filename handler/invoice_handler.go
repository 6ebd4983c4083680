package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Aashish23092/invoice-ocr-ar/dto"
	"github.com/Aashish23092/invoice-ocr-ar/logging"
)

// InvoiceParser is the part of service.InvoiceService the handler needs
type InvoiceParser interface {
	ParseFile(ctx context.Context, req *dto.ParseFileRequest) (*dto.InvoiceParseResponse, error)
	ParseText(ctx context.Context, text string, useOracle bool) (*dto.InvoiceParseResponse, error)
	Providers() []dto.ProviderInfo
	OracleAvailable() bool
}

type InvoiceHandler struct {
	invoiceService InvoiceParser
	maxFileSize    int64
	log            zerolog.Logger
}

func NewInvoiceHandler(invoiceService InvoiceParser, maxFileSize int64) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		maxFileSize:    maxFileSize,
		log:            logging.Component("invoice-handler"),
	}
}

// RegisterRoutes mounts the invoice endpoints on an /api/v1 group
func (h *InvoiceHandler) RegisterRoutes(api *gin.RouterGroup) {
	invoices := api.Group("/invoices")
	{
		invoices.POST("/parse", h.ParseInvoice)
		invoices.POST("/parse-text", h.ParseText)
	}
	api.GET("/providers", h.ListProviders)
}

// Health handles GET /health
func (h *InvoiceHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "Invoice OCR AR",
		"oracle":  h.invoiceService.OracleAvailable(),
	})
}

// ParseInvoice handles POST /invoices/parse (multipart "file", optional
// "password" and "useOracle" fields)
func (h *InvoiceHandler) ParseInvoice(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "File is required", nil)
		return
	}

	request := &dto.ParseFileRequest{
		File:      file,
		Password:  c.PostForm("password"),
		UseOracle: parseBool(c.PostForm("useOracle"), true),
	}

	if err := request.Validate(h.maxFileSize); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, dto.ErrFileTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		h.sendError(c, status, err.Error(), err)
		return
	}

	h.log.Info().Str("file", file.Filename).Int64("size", file.Size).Msg("received invoice upload")

	response, err := h.invoiceService.ParseFile(c.Request.Context(), request)
	if err != nil {
		h.sendServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ParseText handles POST /invoices/parse-text
func (h *InvoiceHandler) ParseText(c *gin.Context) {
	var request dto.ParseTextRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	useOracle := true
	if request.UseOracle != nil {
		useOracle = *request.UseOracle
	}

	response, err := h.invoiceService.ParseText(c.Request.Context(), request.Text, useOracle)
	if err != nil {
		h.sendServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListProviders handles GET /providers
func (h *InvoiceHandler) ListProviders(c *gin.Context) {
	providers := h.invoiceService.Providers()
	c.JSON(http.StatusOK, gin.H{
		"count":     len(providers),
		"providers": providers,
	})
}

func (h *InvoiceHandler) sendServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, dto.ErrEmptyDocument):
		h.sendError(c, http.StatusUnprocessableEntity, "Could not read any text from the document", err)
	case errors.Is(err, dto.ErrUnsupportedFileType):
		h.sendError(c, http.StatusBadRequest, err.Error(), err)
	default:
		h.sendError(c, http.StatusInternalServerError, "Failed to parse invoice", err)
	}
}

// sendError sends a structured error response
func (h *InvoiceHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		h.log.Error().Err(err).Int("status", statusCode).Msg(message)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   errorCode(statusCode),
		Message: errorMsg,
		Code:    statusCode,
	})
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "INVALID_REQUEST"
	case http.StatusRequestEntityTooLarge:
		return "FILE_TOO_LARGE"
	case http.StatusUnprocessableEntity:
		return "UNREADABLE_DOCUMENT"
	default:
		return "PARSE_FAILED"
	}
}

func parseBool(s string, fallback bool) bool {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return v
}
