package httpadapter

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
)

const (
	uploadField        = "file"
	multipartMemoryCap = 8 << 20

	msgNoFileUploaded = "No file uploaded"
	msgNoFileSelected = "No file selected"
)

var (
	errNoFileUploaded = errors.New(msgNoFileUploaded)
	errNoFileSelected = errors.New(msgNoFileSelected)
)

type upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// readUpload pulls the "file" part out of a multipart request, capped at maxBytes.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (*upload, error) {
	if r.ContentLength > maxBytes {
		return nil, &http.MaxBytesError{Limit: maxBytes}
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemoryCap); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrInvalidInput, "read upload", errNoFileUploaded)
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		// Browsers send an empty, filename-less part when nothing was picked.
		if _, ok := r.MultipartForm.Value[uploadField]; ok {
			return nil, domain.WrapError(domain.ErrInvalidInput, "read upload", errNoFileSelected)
		}
		return nil, domain.WrapError(domain.ErrInvalidInput, "read upload", errNoFileUploaded)
	}
	defer file.Close()

	if strings.TrimSpace(header.Filename) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "read upload", errNoFileSelected)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload body: %w", err)
	}
	return &upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// uploadErrorMessage returns the user-facing message for readUpload failures.
func uploadErrorMessage(err error) string {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return fmt.Sprintf("File exceeds the %d byte upload limit", tooLarge.Limit)
	case errors.Is(err, errNoFileSelected):
		return msgNoFileSelected
	case domain.IsKind(err, domain.ErrInvalidInput):
		return msgNoFileUploaded
	default:
		return "Could not read the uploaded file"
	}
}
