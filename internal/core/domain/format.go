package domain

import (
	"path/filepath"
	"strings"
)

type DocumentFormat string

const (
	FormatPDF  DocumentFormat = "pdf"
	FormatText DocumentFormat = "text"
)

// DetectFormat treats the upload as PDF when either the filename extension or the
// content-type hint says so; everything else is plain text.
func DetectFormat(filename, contentType string) DocumentFormat {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return FormatPDF
	}
	if strings.Contains(strings.ToLower(contentType), "pdf") {
		return FormatPDF
	}
	return FormatText
}
