package service

import (
	"image"
	"slices"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
)

// barcodeLabel prefixes decoded barcodes appended to the OCR text, so the
// text engine scores them with a strong positive context
const barcodeLabel = "Código de barras:"

// BarcodeScanner decodes 1D payment barcodes from invoice images
type BarcodeScanner interface {
	Scan(img image.Image) []string
}

type zxingScanner struct {
	hints map[gozxing.DecodeHintType]interface{}
}

func NewBarcodeScanner() BarcodeScanner {
	return &zxingScanner{
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

// Scan returns the distinct all-digit payloads found by the ITF and
// Code128 readers. Argentine payment barcodes use one of the two.
func (s *zxingScanner) Scan(img image.Image) []string {
	if img == nil {
		return nil
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil
	}

	readers := []gozxing.Reader{
		oned.NewITFReader(),
		oned.NewCode128Reader(),
	}

	var codes []string
	for _, reader := range readers {
		result, err := reader.Decode(bmp, s.hints)
		if err != nil {
			continue
		}
		text := strings.TrimSpace(result.GetText())
		if !isDigits(text) || len(text) < 10 {
			continue
		}
		if !slices.Contains(codes, text) {
			codes = append(codes, text)
		}
	}
	return codes
}

// appendBarcodes adds one labeled line per decoded barcode not already
// present in the text
func appendBarcodes(text string, codes []string) string {
	var sb strings.Builder
	sb.WriteString(text)
	for _, code := range codes {
		if strings.Contains(sb.String(), code) {
			continue
		}
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString(barcodeLabel)
		sb.WriteString(" ")
		sb.WriteString(code)
		sb.WriteString("\n")
	}
	return sb.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
