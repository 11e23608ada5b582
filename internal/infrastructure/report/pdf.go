package report

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
)

const (
	fontFamily = "Helvetica"
	lineHeight = 6.0
)

// Renderer lays out a processed document's compliance report as a one-page PDF.
type Renderer struct {
	now      func() time.Time
	compress bool
}

type Option func(*Renderer)

// WithCompression toggles stream compression; on by default.
func WithCompression(enabled bool) Option {
	return func(r *Renderer) {
		r.compress = enabled
	}
}

func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{now: time.Now, compress: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) RenderPDF(doc *domain.Document) ([]byte, error) {
	if doc == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "render report", errors.New("document is nil"))
	}
	if doc.Report == nil {
		return nil, domain.WrapError(
			domain.ErrReportNotReady,
			"render report",
			fmt.Errorf("document %s is %s", doc.ID, doc.Status),
		)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetTitle("Compliance report: "+doc.Filename, true)
	pdf.SetCreator("compliance-checker", true)
	// Core fonts are cp1252; filenames may carry other characters.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 16)
	pdf.CellFormat(0, 10, "Compliance report", "", 1, "L", false, 0, "")

	pdf.SetFont(fontFamily, "", 11)
	pdf.CellFormat(0, lineHeight, tr("Document: "+doc.Filename), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, lineHeight, "Document ID: "+doc.ID, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, lineHeight, "Generated: "+r.now().UTC().Format(time.RFC3339), "", 1, "L", false, 0, "")
	if doc.StorageURL != "" {
		pdf.WriteLinkString(lineHeight, "Stored copy", doc.StorageURL)
		pdf.Ln(lineHeight)
	}
	pdf.Ln(4)

	pdf.SetFont(fontFamily, "B", 14)
	pdf.CellFormat(0, 8, fmt.Sprintf("Score: %.2f%%", doc.Report.Score), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	matched := make(map[string]bool, len(doc.Report.MatchedRules))
	for _, rule := range doc.Report.MatchedRules {
		matched[rule] = true
	}

	for _, group := range domain.RuleGroups() {
		pdf.SetFont(fontFamily, "B", 12)
		pdf.CellFormat(0, 8, string(group.Framework), "B", 1, "L", false, 0, "")
		pdf.SetFont(fontFamily, "", 11)
		for _, rule := range group.Rules {
			status := "MISSING"
			if matched[rule] {
				status = "FOUND"
			}
			pdf.CellFormat(120, lineHeight, tr(rule), "", 0, "L", false, 0, "")
			pdf.CellFormat(0, lineHeight, status, "", 1, "L", false, 0, "")
		}
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render report pdf: %w", err)
	}
	return buf.Bytes(), nil
}
