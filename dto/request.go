package dto

import (
	"errors"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// ParseTextRequest is the JSON body of POST /invoices/parse-text
type ParseTextRequest struct {
	Text      string `json:"text"`
	UseOracle *bool  `json:"useOracle,omitempty"`
}

// ParseFileRequest carries an uploaded invoice
type ParseFileRequest struct {
	File      *multipart.FileHeader
	Password  string
	UseOracle bool
}

// Validate performs basic validation on the request
func (r *ParseFileRequest) Validate(maxSize int64) error {
	if r.File == nil {
		return errors.New("file is required")
	}
	if maxSize > 0 && r.File.Size > maxSize {
		return ErrFileTooLarge
	}
	if DetectFileKind(r.File.Filename) == FileKindUnknown {
		return ErrUnsupportedFileType
	}
	return nil
}

// FileKind classifies an upload by extension
type FileKind string

const (
	FileKindPDF     FileKind = "pdf"
	FileKindImage   FileKind = "image"
	FileKindText    FileKind = "text"
	FileKindUnknown FileKind = ""
)

// DetectFileKind maps a filename to the pipeline that can read it
func DetectFileKind(filename string) FileKind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FileKindPDF
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp", ".gif":
		return FileKindImage
	case ".txt":
		return FileKindText
	}
	return FileKindUnknown
}
