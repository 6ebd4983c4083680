package dto

import "errors"

// Custom errors
var (
	ErrEmptyDocument       = errors.New("no text could be extracted from the document")
	ErrUnsupportedFileType = errors.New("invalid file type. Supported: PDF, PNG, JPG, TXT")
	ErrFileTooLarge        = errors.New("file exceeds the maximum allowed size")
	ErrOracleDisabled      = errors.New("no extraction oracle configured")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// InvoiceParseResponse is the envelope returned by the parse endpoints
type InvoiceParseResponse struct {
	Success          bool             `json:"success"`
	ProcessingTime   string           `json:"processingTime"`
	Source           string           `json:"source"`
	RequestID        string           `json:"requestId"`
	OCRConfidence    float64          `json:"ocrConfidence"`
	AmountFormatted  *string          `json:"amountFormatted"`
	DueDateFormatted *string          `json:"dueDateFormatted"`
	Extracted        ExtractionResult `json:"extracted"`
}
