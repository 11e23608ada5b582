package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
	"github.com/kirillkom/compliance-checker/internal/core/ports"
)

const (
	BlobUploadStored  = "stored"
	BlobUploadAbsent  = "absent"
	BlobUploadFailed  = "failed"
	BlobUploadSkipped = "skipped"
)

type CheckDocumentUseCase struct {
	extractor ports.TextExtractor
	blobs     ports.BlobStore
	observer  ports.CheckObserver
	rules     []string
}

type CheckOption func(*CheckDocumentUseCase)

// WithRules replaces the built-in GDPR/HIPAA rule set.
func WithRules(rules []string) CheckOption {
	return func(uc *CheckDocumentUseCase) {
		uc.rules = append([]string(nil), rules...)
	}
}

func WithObserver(observer ports.CheckObserver) CheckOption {
	return func(uc *CheckDocumentUseCase) {
		uc.observer = observer
	}
}

func NewCheckDocumentUseCase(
	extractor ports.TextExtractor,
	blobs ports.BlobStore,
	opts ...CheckOption,
) *CheckDocumentUseCase {
	uc := &CheckDocumentUseCase{
		extractor: extractor,
		blobs:     blobs,
		rules:     domain.DefaultRuleSet(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Check extracts and scores one upload while storing the original bytes alongside.
// The upload outcome never changes the report.
func (uc *CheckDocumentUseCase) Check(
	ctx context.Context,
	filename, contentType string,
	data []byte,
) (*domain.CheckResult, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "check document", errors.New("filename is required"))
	}
	return uc.run(ctx, filename, contentType, storageKeyFor(uuid.NewString(), filename), data)
}

func (uc *CheckDocumentUseCase) run(
	ctx context.Context,
	filename, contentType, blobName string,
	data []byte,
) (*domain.CheckResult, error) {
	format := domain.DetectFormat(filename, contentType)

	var (
		g          errgroup.Group
		storageURL string
		report     domain.ComplianceReport
	)
	g.Go(func() error {
		storageURL = uc.storeOriginal(ctx, blobName, data)
		return nil
	})
	g.Go(func() error {
		var err error
		report, err = uc.evaluate(ctx, filename, contentType, format, data)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Info("compliance_checked",
		"filename", filename,
		"format", string(format),
		"score", report.Score,
		"matched", len(report.MatchedRules),
		"rules", len(uc.rules),
		"stored", storageURL != "",
	)

	return &domain.CheckResult{
		Filename:         filename,
		Format:           format,
		ComplianceReport: report,
		StorageURL:       storageURL,
	}, nil
}

func (uc *CheckDocumentUseCase) evaluate(
	ctx context.Context,
	filename, contentType string,
	format domain.DocumentFormat,
	data []byte,
) (domain.ComplianceReport, error) {
	start := time.Now()
	text := uc.extractor.Extract(ctx, filename, contentType, data)

	report, err := Score(text, uc.rules)
	if err != nil {
		return domain.ComplianceReport{}, fmt.Errorf("score extracted text: %w", err)
	}
	if uc.observer != nil {
		uc.observer.ObserveCheck(format, report, time.Since(start))
	}
	return report, nil
}

func (uc *CheckDocumentUseCase) storeOriginal(ctx context.Context, name string, data []byte) string {
	if uc.blobs == nil {
		uc.observeUpload(BlobUploadSkipped)
		return ""
	}

	url, err := uc.blobs.PutBlob(ctx, name, data)
	if err != nil {
		slog.Warn("blob_upload_failed", "name", name, "error", err)
		uc.observeUpload(BlobUploadFailed)
		return ""
	}
	if url == "" {
		uc.observeUpload(BlobUploadAbsent)
		return ""
	}
	uc.observeUpload(BlobUploadStored)
	return url
}

func (uc *CheckDocumentUseCase) observeUpload(status string) {
	if uc.observer != nil {
		uc.observer.ObserveBlobUpload(status)
	}
}

// ScoreText scores text that needs no extraction, such as tool input.
func (uc *CheckDocumentUseCase) ScoreText(_ context.Context, text string) (domain.ComplianceReport, error) {
	start := time.Now()
	report, err := Score(text, uc.rules)
	if err != nil {
		return domain.ComplianceReport{}, err
	}
	if uc.observer != nil {
		uc.observer.ObserveCheck(domain.FormatText, report, time.Since(start))
	}
	return report, nil
}
