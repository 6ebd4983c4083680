package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	_ "golang.org/x/image/tiff"
)

// PageImage is one image embedded in a PDF, usually a scanned page
type PageImage struct {
	Name  string
	Data  []byte      // encoded bytes as stored in the PDF (png, jpg, tif)
	Image image.Image // nil when the format cannot be decoded
}

type PDFProcessor interface {
	ExtractText(pdfData []byte, password string) (string, error)
	ExtractImages(pdfData []byte, password string) ([]PageImage, error)
}

type pdfProcessor struct{}

func NewPDFProcessor() PDFProcessor {
	return &pdfProcessor{}
}

// ExtractText reads the text layer row by row, one line per row
func (p *pdfProcessor) ExtractText(pdfData []byte, password string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while reading PDF text: %v", r)
			text = ""
		}
	}()

	var r *pdf.Reader
	if password != "" {
		r, err = pdf.NewReaderEncrypted(bytes.NewReader(pdfData), int64(len(pdfData)), func() string { return password })
	} else {
		r, err = pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	}
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		p := r.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}

		rows, err := p.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			for _, word := range row.Content {
				textBuilder.WriteString(word.S)
			}
			textBuilder.WriteString("\n")
		}
	}
	return textBuilder.String(), nil
}

// ExtractImages pulls every embedded image out of the PDF with pdfcpu,
// ordered by the names pdfcpu gives them (page, then object)
func (p *pdfProcessor) ExtractImages(pdfData []byte, password string) (images []PageImage, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while extracting PDF images: %v", r)
			images = nil
		}
	}()

	tempDir, err := os.MkdirTemp("", "invoice_pdf_images")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	pdfPath := filepath.Join(tempDir, "invoice.pdf")
	if err := os.WriteFile(pdfPath, pdfData, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write pdf data: %w", err)
	}

	outDir := filepath.Join(tempDir, "images")
	if err := os.Mkdir(outDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create image dir: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	if password != "" {
		conf.UserPW = password
	}

	// nil selects every page
	if err := api.ExtractImagesFile(pdfPath, outDir, nil, conf); err != nil {
		return nil, fmt.Errorf("failed to extract images: %w", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(outDir, entry.Name()))
		if err != nil {
			continue
		}

		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			img = nil
		}
		images = append(images, PageImage{Name: entry.Name(), Data: data, Image: img})
	}

	return images, nil
}
