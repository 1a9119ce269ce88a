// Package blob stores diploma PDFs in an S3-compatible object store and
// enforces the upload policy (content type and size) at the adapter boundary.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxFileSize is the upload size ceiling (10 MiB).
const MaxFileSize = 10 << 20

const pdfContentType = "application/pdf"

var (
	// ErrUnsupportedType is returned for anything that is not a PDF.
	ErrUnsupportedType = errors.New("only PDF files are allowed")
	// ErrTooLarge is returned for files over MaxFileSize.
	ErrTooLarge = errors.New("file size must be less than 10MB")
)

// Store is the object-storage contract the diploma service depends on.
//
// Upload must report failures synchronously, before any database write
// happens at the caller. Delete is best-effort: it returns false instead of
// an error so a missing or unreachable blob never aborts a row deletion.
type Store interface {
	Validate(contentType string, size int64) error
	Upload(ctx context.Context, r io.Reader, size int64, contentType, name string) (string, error)
	Delete(ctx context.Context, url string) bool
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// storageKey builds a collision-resistant object key from the upload time
// and the sanitized original filename. Names that sanitize away entirely
// fall back to a random one.
func storageKey(name string, now time.Time) string {
	safe := unsafeKeyChars.ReplaceAllString(name, "_")
	if strings.Trim(safe, "._-") == "" {
		safe = uuid.New().String() + ".pdf"
	}
	return fmt.Sprintf("diplomas/%d-%s", now.UnixMilli(), safe)
}

// validate applies the upload policy shared by every Store implementation.
func validate(contentType string, size int64) error {
	if contentType != pdfContentType {
		return ErrUnsupportedType
	}
	if size > MaxFileSize {
		return ErrTooLarge
	}
	return nil
}
