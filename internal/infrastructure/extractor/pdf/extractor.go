// Package pdf extracts text from PDF uploads page by page. A page that cannot be
// decoded contributes an empty string instead of failing the document.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
)

// PageResult is the outcome of extracting a single page. Err is set when the page was
// skipped; Text is then empty.
type PageResult struct {
	Number int
	Text   string
	Err    error
}

func (r PageResult) Degraded() bool {
	return r.Err != nil
}

type Extractor struct {
	onDegraded func(PageResult)
}

type Option func(*Extractor)

// WithDegradedPageHook is called once for every page that failed to extract.
func WithDegradedPageHook(fn func(PageResult)) Option {
	return func(e *Extractor) {
		e.onDegraded = fn
	}
}

func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract never fails: an unreadable document yields "".
func (e *Extractor) Extract(_ context.Context, filename, _ string, data []byte) string {
	pages, err := Pages(data)
	if err != nil {
		slog.Warn("pdf_unreadable", "filename", filename, "bytes", len(data), "error", err)
		return ""
	}
	return e.joinPages(filename, pages)
}

func (e *Extractor) joinPages(filename string, pages []PageResult) string {
	texts := make([]string, len(pages))
	for i, page := range pages {
		if page.Degraded() {
			slog.Warn("pdf_page_degraded", "filename", filename, "page", page.Number, "error", page.Err)
			if e.onDegraded != nil {
				e.onDegraded(page)
			}
		}
		texts[i] = strings.ToValidUTF8(page.Text, "")
	}
	return strings.Join(texts, "\n")
}

// Pages parses data and extracts each page in document order.
func Pages(data []byte) ([]PageResult, error) {
	reader, err := openReader(data)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	count, err := pageCount(reader)
	if err != nil {
		return nil, fmt.Errorf("count pdf pages: %w", err)
	}

	results := make([]PageResult, 0, count)
	for i := 1; i <= count; i++ {
		results = append(results, extractPage(reader, i))
	}
	return results, nil
}

func openReader(data []byte) (reader *lpdf.Reader, err error) {
	if len(data) == 0 {
		return nil, errors.New("empty document")
	}
	defer func() {
		if r := recover(); r != nil {
			reader, err = nil, fmt.Errorf("parser panic: %v", r)
		}
	}()
	return lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

func pageCount(reader *lpdf.Reader) (count int, err error) {
	defer func() {
		if r := recover(); r != nil {
			count, err = 0, fmt.Errorf("parser panic: %v", r)
		}
	}()
	return reader.NumPage(), nil
}

func extractPage(reader *lpdf.Reader, number int) (result PageResult) {
	result.Number = number
	defer func() {
		if r := recover(); r != nil {
			result.Text = ""
			result.Err = fmt.Errorf("parser panic: %v", r)
		}
	}()

	page := reader.Page(number)
	if page.V.IsNull() {
		result.Err = errors.New("page object missing")
		return result
	}

	// Resource names such as /F1 are page-local, so fonts are not shared across pages.
	fonts := make(map[string]*lpdf.Font)
	for _, name := range page.Fonts() {
		font := page.Font(name)
		fonts[name] = &font
	}

	text, err := page.GetPlainText(fonts)
	if err != nil {
		result.Err = err
		return result
	}
	result.Text = text
	return result
}
