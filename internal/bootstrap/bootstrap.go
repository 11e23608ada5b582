package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/compliance-checker/internal/config"
	"github.com/kirillkom/compliance-checker/internal/core/ports"
	"github.com/kirillkom/compliance-checker/internal/core/usecase"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/extractor"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/queue/nats"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/report"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/resilience"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/storage/b2"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/compliance-checker/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Checker  *usecase.CheckDocumentUseCase
	Renderer ports.ReportRenderer

	// Set only when the asynchronous pipeline is enabled.
	Queue     ports.MessageQueue
	Repo      ports.DocumentRepository
	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor

	closeFns []func()
}

type Options struct {
	// Pipeline connects postgres and NATS for upload/worker processing.
	Pipeline bool
	// Checks receives pipeline, PDF and upstream metrics; optional.
	Checks *metrics.CheckMetrics
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	app := &App{
		Config:   cfg,
		Renderer: report.NewRenderer(),
	}

	executor := newExecutor(cfg, opts.Checks)

	blobs, sourceStorage, err := newStorage(cfg, executor)
	if err != nil {
		return nil, err
	}

	var pdfOpts []pdf.Option
	var checkOpts []usecase.CheckOption
	if opts.Checks != nil {
		checks := opts.Checks
		pdfOpts = append(pdfOpts, pdf.WithDegradedPageHook(func(pdf.PageResult) {
			checks.RecordDegradedPage()
		}))
		checkOpts = append(checkOpts, usecase.WithObserver(checks))
	}
	app.Checker = usecase.NewCheckDocumentUseCase(extractor.New(pdfOpts...), blobs, checkOpts...)

	if !opts.Pipeline {
		return app, nil
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	app.onClose(func() { _ = db.Close() })

	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}
	app.onClose(queue.Close)

	app.Queue = queue
	app.Repo = repo
	app.IngestUC = usecase.NewIngestDocumentUseCase(repo, sourceStorage, queue)
	app.ProcessUC = usecase.NewProcessDocumentUseCase(repo, sourceStorage, app.Checker)
	return app, nil
}

// newStorage returns the blob store for published copies and the local store
// that keeps sources for the worker.
func newStorage(cfg config.Config, executor *resilience.Executor) (ports.BlobStore, *localfs.Storage, error) {
	local, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("init object storage: %w", err)
	}

	switch cfg.StorageBackend {
	case config.StorageBackendLocalFS:
		return local, local, nil
	default:
		b2cfg := b2.Config{
			KeyID:  cfg.B2KeyID,
			AppKey: cfg.B2AppKey,
			Bucket: cfg.B2Bucket,
			APIURL: cfg.B2APIURL,
		}
		if !b2cfg.Configured() {
			slog.Warn("blob_store_absent", "backend", cfg.StorageBackend, "reason", "B2 credentials or bucket not set")
		}
		return b2.NewWithOptions(b2cfg, b2.Options{ResilienceExecutor: executor}), local, nil
	}
}

func newExecutor(cfg config.Config, checks *metrics.CheckMetrics) *resilience.Executor {
	policy := resilience.DefaultConfig()
	policy.RetryMaxAttempts = cfg.ResilienceRetryMaxAttempts
	policy.BreakerEnabled = cfg.ResilienceBreakerEnabled

	if checks == nil {
		return resilience.NewExecutor(policy)
	}
	return resilience.NewExecutor(policy, resilience.WithObserver(checks))
}

func (a *App) onClose(fn func()) {
	a.closeFns = append(a.closeFns, fn)
}

func (a *App) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
	a.closeFns = nil
}
