// Package b2 publishes uploads to a Backblaze B2 bucket through the native B2 API.
//
// Authorization happens on first use and is shared by all callers. Missing
// credentials are not an error: PutBlob then reports no URL.
package b2

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/compliance-checker/internal/infrastructure/resilience"
)

const defaultAPIURL = "https://api.backblazeb2.com"

type Config struct {
	KeyID  string
	AppKey string
	Bucket string
	APIURL string
}

func (c Config) Configured() bool {
	return c.KeyID != "" && c.AppKey != "" && c.Bucket != ""
}

type Options struct {
	HTTPClient         *http.Client
	ResilienceExecutor *resilience.Executor
}

type Storage struct {
	cfg        Config
	httpClient *http.Client
	executor   *resilience.Executor

	mu      sync.Mutex
	session *session
}

type session struct {
	accountID   string
	apiURL      string
	downloadURL string
	authToken   string
	bucketID    string
}

func New(cfg Config) *Storage {
	return NewWithOptions(cfg, Options{})
}

func NewWithOptions(cfg Config, options Options) *Storage {
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Storage{
		cfg:        cfg,
		httpClient: httpClient,
		executor:   options.ResilienceExecutor,
	}
}

// PutBlob uploads data as name and returns its download URL. Without credentials it
// returns ("", nil).
func (s *Storage) PutBlob(ctx context.Context, name string, data []byte) (string, error) {
	if !s.cfg.Configured() {
		return "", nil
	}

	sess, err := s.ensureSession(ctx)
	if err != nil {
		return "", err
	}

	err = s.execute(ctx, "b2.upload_file", func(callCtx context.Context) error {
		target, err := s.getUploadURL(callCtx, sess)
		if err != nil {
			return err
		}
		return s.uploadFile(callCtx, target, name, data)
	})
	if err != nil {
		if isAuthExpired(err) {
			s.invalidate(sess)
		}
		return "", wrapTemporaryIfNeeded("b2 upload", err)
	}
	return s.fileURL(sess, name), nil
}

// ensureSession authorizes once; concurrent callers wait for the first attempt.
// A failed attempt is not cached.
func (s *Storage) ensureSession(ctx context.Context) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		return s.session, nil
	}

	var sess *session
	err := s.execute(ctx, "b2.authorize", func(callCtx context.Context) error {
		var err error
		sess, err = s.authorize(callCtx)
		return err
	})
	if err != nil {
		return nil, wrapTemporaryIfNeeded("b2 authorize", err)
	}
	s.session = sess
	return sess, nil
}

func (s *Storage) invalidate(stale *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == stale {
		s.session = nil
	}
}

func (s *Storage) execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	if s.executor == nil {
		return fn(ctx)
	}
	return s.executor.Execute(ctx, operation, fn, classifyB2Error)
}

func (s *Storage) fileURL(sess *session, name string) string {
	return fmt.Sprintf("%s/file/%s/%s", sess.downloadURL, url.PathEscape(s.cfg.Bucket), escapeFileName(name))
}

// escapeFileName percent-encodes a B2 file name while keeping "/" separators.
func escapeFileName(name string) string {
	return strings.ReplaceAll(url.PathEscape(name), "%2F", "/")
}

func isAuthExpired(err error) bool {
	var statusErr *HTTPStatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized
}
