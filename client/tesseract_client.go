package client

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"

	"github.com/Aashish23092/invoice-ocr-ar/logging"
)

// TesseractClient runs Tesseract over invoice images. A new gosseract
// client is created per call, so one TesseractClient is safe for
// concurrent use.
type TesseractClient struct {
	dataPath  string
	languages []string
	log       zerolog.Logger
}

func NewTesseractClient(dataPath string, languages []string) *TesseractClient {
	if len(languages) == 0 {
		languages = []string{"spa", "eng"}
	}
	return &TesseractClient{
		dataPath:  dataPath,
		languages: languages,
		log:       logging.Component("tesseract"),
	}
}

// ExtractTextAndQuality OCRs an image file and returns the text with the
// mean word confidence (0-100)
func (tc *TesseractClient) ExtractTextAndQuality(filePath string) (string, float64, error) {
	return tc.run(func(c *gosseract.Client) error { return c.SetImage(filePath) })
}

// ExtractTextAndQualityFromBytes is ExtractTextAndQuality for in-memory
// PNG/JPEG/TIFF data
func (tc *TesseractClient) ExtractTextAndQualityFromBytes(data []byte) (string, float64, error) {
	return tc.run(func(c *gosseract.Client) error { return c.SetImageFromBytes(data) })
}

func (tc *TesseractClient) run(setImage func(*gosseract.Client) error) (string, float64, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if tc.dataPath != "" {
		client.SetTessdataPrefix(tc.dataPath)
	}
	if err := client.SetLanguage(tc.languages...); err != nil {
		return "", 0, fmt.Errorf("failed to set language: %w", err)
	}

	if err := setImage(client); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("failed to extract text: %w", err)
	}

	// Get bounding boxes to calculate confidence
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		tc.log.Warn().Err(err).Msg("bounding boxes unavailable, reporting zero confidence")
		return text, 0, nil
	}

	var totalConf float64
	var count int
	for _, box := range boxes {
		if strings.TrimSpace(box.Word) == "" {
			continue
		}
		totalConf += box.Confidence
		count++
	}

	avgConf := 0.0
	if count > 0 {
		avgConf = totalConf / float64(count)
	}

	tc.log.Debug().Int("words", count).Float64("confidence", avgConf).Msg("ocr finished")
	return text, avgConf, nil
}

// Close performs cleanup
func (tc *TesseractClient) Close() {
	tc.log.Info().Msg("tesseract client closed")
}
