// Package pdftext extracts plain text from text-based PDF files.
package pdftext

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnreadable means the bytes could not be parsed as a text PDF.
	ErrUnreadable = errors.New("pdf unreadable")
	// ErrLoadFailed means the extraction engine could not be initialized.
	ErrLoadFailed = errors.New("pdf engine load failed")
	// ErrWorkerNotConfigured means the engine was used before its worker was configured.
	ErrWorkerNotConfigured = errors.New("pdf worker not configured")
)

// Document is the page-level view an engine exposes for one opened file.
type Document interface {
	NumPages() int
	// PageFragments returns the ordered text fragments of page n, 1-indexed.
	PageFragments(n int) ([]string, error)
}

// Extractor turns raw PDF bytes into plain text.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// Join walks pages 1..N in order. Fragments of a page are joined with a single
// space and pages with a newline, so an N-page document yields N segments.
func Join(ctx context.Context, doc Document) (string, error) {
	n := doc.NumPages()
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fragments, err := doc.PageFragments(i)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrUnreadable, i, err)
		}
		pages = append(pages, strings.Join(fragments, " "))
	}
	return strings.Join(pages, "\n"), nil
}
