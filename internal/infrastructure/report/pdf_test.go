package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/extractor/pdf"
)

func readyDocument() *domain.Document {
	return &domain.Document{
		ID:       "doc-1",
		Filename: "policy.pdf",
		Status:   domain.StatusReady,
		Report: &domain.ComplianceReport{
			Score:          40,
			MatchedRules:   []string{"consent", "privacy policy", "PHI", "encryption"},
			UnmatchedRules: []string{"data retention", "right to access", "right to delete", "protected health information", "breach notification", "access control"},
		},
	}
}

func TestRenderPDFProducesReadableReport(t *testing.T) {
	r := NewRenderer(WithCompression(false))
	r.now = func() time.Time { return time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC) }

	out, err := r.RenderPDF(readyDocument())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	pages, err := pdf.Pages(out)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.NoError(t, pages[0].Err)
	assert.Contains(t, pages[0].Text, "GDPR")
	assert.Contains(t, pages[0].Text, "HIPAA")
	assert.Contains(t, pages[0].Text, "consent")
}

func TestRenderPDFCompressedByDefault(t *testing.T) {
	out, err := NewRenderer().RenderPDF(readyDocument())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, string(out), "/FlateDecode")
}

func TestRenderPDFRequiresReport(t *testing.T) {
	doc := readyDocument()
	doc.Report = nil
	doc.Status = domain.StatusProcessing

	_, err := NewRenderer().RenderPDF(doc)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.ErrReportNotReady))

	_, err = NewRenderer().RenderPDF(nil)
	assert.True(t, domain.IsKind(err, domain.ErrInvalidInput))
}
