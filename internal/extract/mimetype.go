package extract

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// SupportedMimeTypes lists the content types the extraction model accepts.
var SupportedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// extensionMimeTypes resolves the MIME type from the file extension before
// falling back to content sniffing.
var extensionMimeTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"pdf":  "application/pdf",
}

// MimeTypeForFile determines the MIME type of a file on disk, extension
// first, sniffing the first 512 bytes for unknown extensions. Returns
// InvalidFileError if the file does not exist.
func MimeTypeForFile(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", &InvalidFileError{Reason: fmt.Sprintf("file not found: %s", path)}
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if mt, ok := extensionMimeTypes[ext]; ok {
		return mt, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", &InvalidFileError{Reason: fmt.Sprintf("cannot open file: %s", path)}
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading file header: %w", err)
	}
	return http.DetectContentType(buf[:n]), nil
}

// ValidateMimeType fails with InvalidFileError for content types the
// extraction model cannot process.
func ValidateMimeType(mimeType string) error {
	if !SupportedMimeTypes[mimeType] {
		return &InvalidFileError{Reason: fmt.Sprintf("unsupported file type: %s", mimeType)}
	}
	return nil
}
