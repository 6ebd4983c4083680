package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/invoice-ocr-ar/dto"
	"github.com/Aashish23092/invoice-ocr-ar/service"
	"github.com/Aashish23092/invoice-ocr-ar/utils/invoice"
)

const edenorText = `EDENOR
Fecha de emisión: 10/01/2025
Titular: JUAN PEREZ
Vencimiento: 25/01/2025
TOTAL A PAGAR: $ 15.420,50`

func newRouter(h *InvoiceHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", h.Health)
	h.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func newRealHandler(maxFileSize int64) *InvoiceHandler {
	engine := invoice.NewEngine(invoice.WithClock(func() time.Time {
		return time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	}))
	svc := service.NewInvoiceService(engine, nil, service.NewPDFProcessor(), service.NewBarcodeScanner(), nil,
		service.InvoiceServiceConfig{})
	return NewInvoiceHandler(svc, maxFileSize)
}

func multipartBody(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func do(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	rec := do(newRouter(newRealHandler(0)), httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "healthy", "service": "Invoice OCR AR", "oracle": false}`, rec.Body.String())
}

func TestParseText(t *testing.T) {
	body := `{"text": ` + jsonQuote(edenorText) + `, "useOracle": false}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/parse-text", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := do(newRouter(newRealHandler(0)), req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.InvoiceParseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "local-hybrid", resp.Source)
	require.NotNil(t, resp.AmountFormatted)
	assert.Equal(t, "$15.420,50", *resp.AmountFormatted)
	require.NotNil(t, resp.DueDateFormatted)
	assert.Equal(t, "25/01/2025", *resp.DueDateFormatted)
	require.NotNil(t, resp.Extracted.CustomerName)
	assert.Equal(t, "JUAN PEREZ", *resp.Extracted.CustomerName)
}

func TestParseText_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"invalid json", `{"text": `, http.StatusBadRequest, "INVALID_REQUEST"},
		{"blank text", `{"text": "   "}`, http.StatusUnprocessableEntity, "UNREADABLE_DOCUMENT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/parse-text", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			rec := do(newRouter(newRealHandler(0)), req)
			require.Equal(t, tt.status, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.code, resp.Error)
			assert.Equal(t, tt.status, resp.Code)
		})
	}
}

func TestParseInvoice_TextUpload(t *testing.T) {
	body, contentType := multipartBody(t, "factura.txt", edenorText, map[string]string{"useOracle": "false"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/parse", body)
	req.Header.Set("Content-Type", contentType)

	rec := do(newRouter(newRealHandler(1<<20)), req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.InvoiceParseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Extracted.Amount)
	assert.InDelta(t, 15420.50, *resp.Extracted.Amount, 0.001)
	require.NotNil(t, resp.Extracted.Provider)
	assert.Equal(t, "edenor", resp.Extracted.Provider.ID)
}

func TestParseInvoice_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		maxSize  int64
		status   int
		code     string
	}{
		{"missing file", "", "", 1 << 20, http.StatusBadRequest, "INVALID_REQUEST"},
		{"unsupported type", "factura.docx", "hola", 1 << 20, http.StatusBadRequest, "INVALID_REQUEST"},
		{"too large", "factura.txt", strings.Repeat("x", 64), 16, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{"empty document", "factura.txt", "  \n ", 1 << 20, http.StatusUnprocessableEntity, "UNREADABLE_DOCUMENT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartBody(t, tt.filename, tt.content, nil)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/parse", body)
			req.Header.Set("Content-Type", contentType)

			rec := do(newRouter(newRealHandler(tt.maxSize)), req)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decodeError(t, rec).Error)
		})
	}
}

type fakeParser struct {
	err       error
	useOracle bool
	password  string
}

func (f *fakeParser) ParseFile(_ context.Context, req *dto.ParseFileRequest) (*dto.InvoiceParseResponse, error) {
	f.useOracle = req.UseOracle
	f.password = req.Password
	if f.err != nil {
		return nil, f.err
	}
	return &dto.InvoiceParseResponse{Success: true, Extracted: dto.NewExtractionResult()}, nil
}

func (f *fakeParser) ParseText(_ context.Context, _ string, useOracle bool) (*dto.InvoiceParseResponse, error) {
	f.useOracle = useOracle
	if f.err != nil {
		return nil, f.err
	}
	return &dto.InvoiceParseResponse{Success: true, Extracted: dto.NewExtractionResult()}, nil
}

func (f *fakeParser) Providers() []dto.ProviderInfo { return nil }

func (f *fakeParser) OracleAvailable() bool { return true }

func TestParseInvoice_FormOptions(t *testing.T) {
	parser := &fakeParser{}
	body, contentType := multipartBody(t, "scan.pdf", "%PDF-1.4", map[string]string{
		"useOracle": "false",
		"password":  "1234",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/parse", body)
	req.Header.Set("Content-Type", contentType)

	rec := do(newRouter(NewInvoiceHandler(parser, 0)), req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, parser.useOracle)
	assert.Equal(t, "1234", parser.password)
}

func TestParseText_DefaultsToOracle(t *testing.T) {
	parser := &fakeParser{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/parse-text", strings.NewReader(`{"text": "hola"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := do(newRouter(NewInvoiceHandler(parser, 0)), req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, parser.useOracle)
}

func TestParseInvoice_ServiceFailure(t *testing.T) {
	parser := &fakeParser{err: errors.New("image OCR failed: tesseract missing")}
	body, contentType := multipartBody(t, "scan.png", "png", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/parse", body)
	req.Header.Set("Content-Type", contentType)

	rec := do(newRouter(NewInvoiceHandler(parser, 0)), req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "PARSE_FAILED", resp.Error)
	assert.Contains(t, resp.Message, "tesseract missing")
}

func TestListProviders(t *testing.T) {
	rec := do(newRouter(newRealHandler(0)), httptest.NewRequest(http.MethodGet, "/api/v1/providers", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count     int                `json:"count"`
		Providers []dto.ProviderInfo `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, len(invoice.DefaultProviders()), resp.Count)
	assert.Equal(t, "edenor", resp.Providers[0].ID)
}

func jsonQuote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
