package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveReport(ctx context.Context, id string, report domain.ComplianceReport, storageURL string) error
}

// ObjectStorage stores source documents for the worker.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// BlobStore publishes an uploaded file and returns where it can be fetched.
// An empty URL with a nil error means no store is configured.
type BlobStore interface {
	PutBlob(ctx context.Context, name string, data []byte) (string, error)
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor turns raw upload bytes into plain text. It never fails: unreadable
// input yields an empty string.
type TextExtractor interface {
	Extract(ctx context.Context, filename, contentType string, data []byte) string
}

// ReportRenderer renders a processed document's report for download.
type ReportRenderer interface {
	RenderPDF(doc *domain.Document) ([]byte, error)
}

// CheckObserver receives pipeline outcomes, typically for metrics.
type CheckObserver interface {
	ObserveCheck(format domain.DocumentFormat, report domain.ComplianceReport, duration time.Duration)
	ObserveBlobUpload(status string)
}
