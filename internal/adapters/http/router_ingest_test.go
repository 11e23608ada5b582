package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/kirillkom/compliance-checker/internal/config"
	"github.com/kirillkom/compliance-checker/internal/core/domain"
)

type ingestSuccessFake struct{}

func (f ingestSuccessFake) Upload(_ context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", io.EOF)
	}

	now := time.Now().UTC()
	return &domain.Document{
		ID:          "doc-1",
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: "doc-1_file.txt",
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

type docsReportFake struct {
	doc *domain.Document
}

func (f docsReportFake) GetByID(context.Context, string) (*domain.Document, error) {
	return f.doc, nil
}

type rendererFake struct {
	err error
}

func (f rendererFake) RenderPDF(doc *domain.Document) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	if doc.Report == nil {
		return nil, domain.WrapError(domain.ErrReportNotReady, "render report", errors.New(string(doc.Status)))
	}
	return []byte("%PDF-1.3 fake"), nil
}

func newMultipartRequest(t *testing.T, target, filename, contentType string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart() error = %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func newRouterForIngestTests() http.Handler {
	return NewRouter(
		config.Config{},
		&checkerFake{},
		ingestSuccessFake{},
		docsErrFake{},
	).Handler()
}

func TestHealthzEndpoint(t *testing.T) {
	handler := newRouterForIngestTests()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestUploadDocumentSuccess(t *testing.T) {
	handler := newRouterForIngestTests()

	req := newMultipartRequest(t, "/v1/documents", "file.txt", "text/plain", []byte("hello"))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", res.Code)
	}
	if res.Header().Get("Location") != "/v1/documents/doc-1" {
		t.Fatalf("unexpected Location %q", res.Header().Get("Location"))
	}

	var docResp map[string]any
	if err := json.NewDecoder(res.Body).Decode(&docResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if docResp["id"] != "doc-1" || docResp["status"] != string(domain.StatusUploaded) {
		t.Fatalf("unexpected response: %+v", docResp)
	}
}

func TestUploadDocumentEmptyBodyReturns400(t *testing.T) {
	handler := newRouterForIngestTests()

	req := newMultipartRequest(t, "/v1/documents", "file.txt", "text/plain", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestUploadDocumentMissingMultipartField(t *testing.T) {
	handler := newRouterForIngestTests()

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", bytes.NewBufferString("plain-text"))
	req.Header.Set("Content-Type", "text/plain")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestGetDocumentReportReturnsPDF(t *testing.T) {
	doc := &domain.Document{
		ID:     "doc-1",
		Status: domain.StatusReady,
		Report: &domain.ComplianceReport{Score: 40},
	}
	handler := NewRouter(config.Config{}, &checkerFake{}, nil, docsReportFake{doc: doc}, WithReportRenderer(rendererFake{})).Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1/report.pdf", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if res.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("unexpected content type %q", res.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(res.Body.Bytes(), []byte("%PDF-")) {
		t.Fatalf("expected pdf body, got %q", res.Body.String())
	}
}

func TestGetDocumentReportReturns409WhilePending(t *testing.T) {
	doc := &domain.Document{ID: "doc-1", Status: domain.StatusProcessing}
	handler := NewRouter(config.Config{}, &checkerFake{}, nil, docsReportFake{doc: doc}, WithReportRenderer(rendererFake{})).Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1/report.pdf", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", res.Code)
	}
}
