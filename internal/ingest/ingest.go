// Package ingest turns uploaded files or pasted text into resume text.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"resume-matcher/internal/pdftext"
	"resume-matcher/internal/shared/metrics"
	"resume-matcher/internal/shared/telemetry"
	"resume-matcher/internal/shared/util"
)

// Kind is the resolved handling for an uploaded file.
type Kind string

const (
	KindPDF         Kind = "pdf"
	KindText        Kind = "text"
	KindUnsupported Kind = "unsupported"
)

const (
	PDFUnreadableMessage   = "Could not read PDF. Please ensure it is a text-based PDF."
	UnsupportedTypeMessage = "Unsupported file type. Please upload a PDF or TXT file."
)

var (
	ErrPDFUnreadable   = errors.New("pdf could not be read")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// Document is the ingested resume body and where it came from.
type Document struct {
	Text     string `json:"text"`
	FileName string `json:"fileName"`
}

// EngineLoader yields the PDF extractor, loading it on first use.
type EngineLoader interface {
	Ensure(ctx context.Context) (pdftext.Extractor, error)
}

// Service ingests files.
type Service struct {
	Loader EngineLoader
}

func NewService(loader EngineLoader) *Service {
	return &Service{Loader: loader}
}

// ResolveKind maps a declared content type to a Kind. An empty or generic
// declared type is resolved by sniffing the content.
func ResolveKind(declared string, data []byte) Kind {
	mediaType := strings.ToLower(strings.TrimSpace(declared))
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = parsed
	}
	switch mediaType {
	case "application/pdf":
		return KindPDF
	case "text/plain":
		return KindText
	case "", "application/octet-stream":
		detected := mimetype.Detect(data)
		switch {
		case detected.Is("application/pdf"):
			return KindPDF
		case detected.Is("text/plain"):
			return KindText
		}
	}
	return KindUnsupported
}

// FromFile extracts the text of an uploaded file. The returned Document always
// carries the display file name, also when an error is returned.
func (s *Service) FromFile(ctx context.Context, name, declaredType string, data []byte) (Document, error) {
	doc := Document{FileName: util.DisplayFileName(name)}
	kind := ResolveKind(declaredType, data)
	metrics.IncIngestFile(string(kind))

	fields := map[string]any{"kind": kind, "bytes": len(data), "declared_type": declaredType}
	switch kind {
	case KindText:
		doc.Text = string(data)
	case KindPDF:
		text, err := s.extractPDF(ctx, data)
		if err != nil {
			fields["err"] = err
			telemetry.Warn("ingest.file", fields)
			return doc, err
		}
		doc.Text = text
	default:
		telemetry.Warn("ingest.file", fields)
		return doc, ErrUnsupportedType
	}
	fields["chars"] = len(doc.Text)
	telemetry.Info("ingest.file", fields)
	return doc, nil
}

func (s *Service) extractPDF(ctx context.Context, data []byte) (string, error) {
	if s.Loader == nil {
		return "", fmt.Errorf("%w: no pdf engine", ErrPDFUnreadable)
	}
	ext, err := s.Loader.Ensure(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPDFUnreadable, err)
	}
	text, err := ext.Extract(ctx, data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPDFUnreadable, err)
	}
	return text, nil
}

// FromText wraps pasted text verbatim. Pasted text has no file name.
func FromText(text string) Document {
	return Document{Text: text}
}

// Message returns the user-facing message for an ingestion error.
func Message(err error) string {
	if errors.Is(err, ErrUnsupportedType) {
		return UnsupportedTypeMessage
	}
	return PDFUnreadableMessage
}
