package ports

import (
	"context"
	"io"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
)

// ComplianceChecker is the inbound contract for the synchronous extract-and-score pipeline.
type ComplianceChecker interface {
	Check(ctx context.Context, filename, contentType string, data []byte) (*domain.CheckResult, error)
}

// DocumentIngestor is the inbound contract for asynchronous document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentReader is the inbound read model for document state and its report.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous document processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// TextScorer scores already-extracted text against the rule set.
type TextScorer interface {
	ScoreText(ctx context.Context, text string) (domain.ComplianceReport, error)
}
