// Package extractor routes uploads to the PDF or plain-text extractor.
package extractor

import (
	"context"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/extractor/plaintext"
)

type Extractor struct {
	pdf  *pdf.Extractor
	text *plaintext.Extractor
}

func New(pdfOpts ...pdf.Option) *Extractor {
	return &Extractor{
		pdf:  pdf.NewExtractor(pdfOpts...),
		text: plaintext.NewExtractor(),
	}
}

func (e *Extractor) Extract(ctx context.Context, filename, contentType string, data []byte) string {
	if domain.DetectFormat(filename, contentType) == domain.FormatPDF {
		return e.pdf.Extract(ctx, filename, contentType, data)
	}
	return e.text.Extract(ctx, filename, contentType, data)
}
