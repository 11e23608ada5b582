package plaintext

import (
	"context"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, _, _ string, data []byte) string {
	return Decode(data)
}

// Decode reads data as UTF-8 and drops every byte sequence that does not decode.
// A leading UTF-8 byte-order mark is stripped; other bytes are never reinterpreted.
func Decode(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	valid := strings.ToValidUTF8(string(data), "")
	out, _, err := transform.String(unicode.UTF8BOM.NewDecoder(), valid)
	if err != nil {
		return valid
	}
	return out
}
