package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kmorrow/stocklog/internal/domain"
)

// Format identifies an import/export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Detect guesses the format of raw import data: a successful JSON parse
// wins, then any comma means CSV, otherwise the format is unsupported.
func Detect(data []byte) (Format, error) {
	if json.Valid(bytes.TrimSpace(data)) && len(bytes.TrimSpace(data)) > 0 {
		return FormatJSON, nil
	}
	if bytes.ContainsRune(data, ',') {
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: input is neither JSON nor CSV", domain.ErrUnsupportedFormat)
}

// DetectPath resolves a format from a file extension, falling back to
// content sniffing when the extension is absent or unknown.
func DetectPath(path string, data []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	}
	return Detect(data)
}
