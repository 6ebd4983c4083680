package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"

	"github.com/Aashish23092/invoice-ocr-ar/dto"
	"github.com/Aashish23092/invoice-ocr-ar/logging"
	"github.com/Aashish23092/invoice-ocr-ar/utils/invoice"
)

// Envelope sources
const (
	SourceOracle      = "oracle"
	SourceLocalHybrid = "local-hybrid"
)

// minTextLayer is the number of non-space characters below which a PDF is
// treated as scanned and its page images are OCR'd
const minTextLayer = 20

// OCRClient turns an encoded image into text plus a 0-100 confidence
type OCRClient interface {
	ExtractTextAndQualityFromBytes(data []byte) (string, float64, error)
}

type InvoiceServiceConfig struct {
	OracleTimeout time.Duration
	OCRWorkers    int
}

type InvoiceService struct {
	engine       *invoice.Engine
	ocrClient    OCRClient
	pdfProcessor PDFProcessor
	scanner      BarcodeScanner
	oracle       Oracle
	cfg          InvoiceServiceConfig
	log          zerolog.Logger
}

// NewInvoiceService wires the extraction pipeline. oracle may be nil, in
// which case every parse is heuristic only.
func NewInvoiceService(
	engine *invoice.Engine,
	ocrClient OCRClient,
	pdfProcessor PDFProcessor,
	scanner BarcodeScanner,
	oracle Oracle,
	cfg InvoiceServiceConfig,
) *InvoiceService {
	if cfg.OracleTimeout <= 0 {
		cfg.OracleTimeout = 20 * time.Second
	}
	if cfg.OCRWorkers <= 0 {
		cfg.OCRWorkers = 4
	}
	return &InvoiceService{
		engine:       engine,
		ocrClient:    ocrClient,
		pdfProcessor: pdfProcessor,
		scanner:      scanner,
		oracle:       oracle,
		cfg:          cfg,
		log:          logging.Component("invoice-service"),
	}
}

// document is the text of an uploaded invoice and how much to trust it
type document struct {
	text          string
	ocrConfidence float64
}

// Providers lists the provider table the engine detects against
func (s *InvoiceService) Providers() []dto.ProviderInfo {
	records := s.engine.Rules().Providers
	out := make([]dto.ProviderInfo, 0, len(records))
	for _, p := range records {
		out = append(out, p.Info())
	}
	return out
}

// OracleAvailable reports whether an oracle is wired in
func (s *InvoiceService) OracleAvailable() bool {
	return s.oracle != nil
}

// ParseFile reads an uploaded invoice and parses it
func (s *InvoiceService) ParseFile(ctx context.Context, req *dto.ParseFileRequest) (*dto.InvoiceParseResponse, error) {
	f, err := req.File.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return s.ParseDocument(ctx, req.File.Filename, data, req.Password, req.UseOracle)
}

// ParseDocument extracts text from a PDF, image or plain-text invoice and
// parses it. The filename extension selects the pipeline.
func (s *InvoiceService) ParseDocument(ctx context.Context, filename string, data []byte, password string, useOracle bool) (*dto.InvoiceParseResponse, error) {
	start := time.Now()

	doc, err := s.readDocument(ctx, filename, data, password)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.text) == "" {
		return nil, dto.ErrEmptyDocument
	}

	return s.parse(ctx, start, doc, useOracle), nil
}

// ParseText parses invoice text that was already extracted
func (s *InvoiceService) ParseText(ctx context.Context, text string, useOracle bool) (*dto.InvoiceParseResponse, error) {
	start := time.Now()
	if strings.TrimSpace(text) == "" {
		return nil, dto.ErrEmptyDocument
	}
	return s.parse(ctx, start, document{text: text, ocrConfidence: 100}, useOracle), nil
}

func (s *InvoiceService) parse(ctx context.Context, start time.Time, doc document, useOracle bool) *dto.InvoiceParseResponse {
	requestID := uuid.NewString()
	log := s.log.With().Str("request_id", requestID).Logger()

	result := s.engine.Parse(doc.text)
	log.Debug().Strs("trace", result.Debug).Msg("heuristic pass finished")

	source := SourceLocalHybrid
	if useOracle && s.oracle != nil {
		if merged, ok := s.consultOracle(ctx, log, doc.text, result); ok {
			result = merged
			source = SourceOracle
		}
	}

	log.Info().
		Str("source", source).
		Bool("amount", result.Amount != nil).
		Bool("due_date", result.DueDate != nil).
		Bool("barcode", result.Barcode != nil).
		Dur("elapsed", time.Since(start)).
		Msg("invoice parsed")

	return &dto.InvoiceParseResponse{
		Success:          true,
		ProcessingTime:   fmt.Sprintf("%.2fs", time.Since(start).Seconds()),
		Source:           source,
		RequestID:        requestID,
		OCRConfidence:    math.Round(doc.ocrConfidence*100) / 100,
		AmountFormatted:  formattedAmount(result.Amount),
		DueDateFormatted: formattedDueDate(result.DueDate),
		Extracted:        result,
	}
}

// consultOracle asks the oracle under the configured timeout. Any failure
// leaves the heuristic result in place.
func (s *InvoiceService) consultOracle(ctx context.Context, log zerolog.Logger, text string, local dto.ExtractionResult) (dto.ExtractionResult, bool) {
	octx, cancel := context.WithTimeout(ctx, s.cfg.OracleTimeout)
	defer cancel()

	fields, backend, err := s.oracle.Extract(octx, text)
	if err != nil {
		if errors.Is(err, dto.ErrOracleDisabled) {
			log.Debug().Msg("oracle disabled, heuristic result kept")
		} else {
			log.Warn().Err(err).Msg("oracle failed, heuristic result kept")
		}
		return local, false
	}
	if fields.IsEmpty() {
		log.Warn().Str("backend", backend).Msg("oracle answered no fields, heuristic result kept")
		return local, false
	}

	log.Info().Str("backend", backend).Msg("oracle answer merged")
	return invoice.MergeOracle(local, fields, s.engine.Rules().Providers), true
}

func (s *InvoiceService) readDocument(ctx context.Context, filename string, data []byte, password string) (document, error) {
	switch dto.DetectFileKind(filename) {
	case dto.FileKindText:
		return document{text: decodeText(data), ocrConfidence: 100}, nil
	case dto.FileKindImage:
		return s.readImage(data)
	case dto.FileKindPDF:
		return s.readPDF(ctx, filename, data, password)
	}
	return document{}, dto.ErrUnsupportedFileType
}

// decodeText accepts UTF-8 and falls back to Windows-1252, the usual
// encoding of text exported by older billing systems
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

func (s *InvoiceService) readImage(data []byte) (document, error) {
	text, conf, err := s.ocrClient.ExtractTextAndQualityFromBytes(data)
	if err != nil {
		return document{}, fmt.Errorf("image OCR failed: %w", err)
	}

	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		text = appendBarcodes(text, s.scanner.Scan(img))
	}

	return document{text: text, ocrConfidence: conf}, nil
}

func (s *InvoiceService) readPDF(ctx context.Context, filename string, data []byte, password string) (document, error) {
	text, err := s.pdfProcessor.ExtractText(data, password)
	if err != nil {
		s.log.Warn().Err(err).Str("file", filename).Msg("PDF text extraction failed")
	}
	if nonSpaceLen(text) >= minTextLayer {
		return document{text: text, ocrConfidence: 100}, nil
	}

	s.log.Info().Str("file", filename).Msg("PDF has no usable text layer, running OCR on page images")

	images, err := s.pdfProcessor.ExtractImages(data, password)
	if err != nil {
		return document{}, fmt.Errorf("failed to extract images from PDF: %w", err)
	}
	if len(images) == 0 {
		return document{}, dto.ErrEmptyDocument
	}

	return s.ocrPages(ctx, images)
}

// ocrPages OCRs page images concurrently, at most OCRWorkers at a time,
// and joins the text in page order
func (s *InvoiceService) ocrPages(ctx context.Context, images []PageImage) (document, error) {
	type pageResult struct {
		text  string
		conf  float64
		codes []string
		ok    bool
	}
	results := make([]pageResult, len(images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.OCRWorkers)

	for i, page := range images {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, conf, err := s.ocrClient.ExtractTextAndQualityFromBytes(page.Data)
			if err != nil {
				s.log.Warn().Err(err).Str("page", page.Name).Msg("OCR failed for a page")
				return nil
			}
			results[i] = pageResult{text: text, conf: conf, codes: s.scanner.Scan(page.Image), ok: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return document{}, fmt.Errorf("page OCR interrupted: %w", err)
	}

	var sb strings.Builder
	var codes []string
	var totalConf float64
	var pages int
	for _, r := range results {
		if !r.ok {
			continue
		}
		sb.WriteString(r.text)
		sb.WriteString("\n")
		totalConf += r.conf
		codes = append(codes, r.codes...)
		pages++
	}
	if pages == 0 {
		return document{}, errors.New("scanned PDF OCR failed on every page")
	}

	return document{
		text:          appendBarcodes(sb.String(), codes),
		ocrConfidence: totalConf / float64(pages),
	}, nil
}

func nonSpaceLen(s string) int {
	n := 0
	for _, r := range s {
		if r != ' ' && r != '\n' && r != '\t' && r != '\r' {
			n++
		}
	}
	return n
}
