// Package docsniff identifies manuscript document formats from content, so a
// mislabeled upload can be rejected before it lands in the object store.
package docsniff

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"
)

type DocType string

const (
	TypePDF      DocType = "pdf"
	TypeEPUB     DocType = "epub"
	TypeDOCX     DocType = "docx"
	TypeMarkdown DocType = "markdown"
	TypeText     DocType = "text"
)

var ErrUnknownType = errors.New("unknown document type")

type Result struct {
	Type DocType
	MIME string
}

func DetectHead(head []byte) (Result, error) {
	if len(head) == 0 {
		return Result{}, ErrUnknownType
	}

	if isPDF(head) {
		return Result{Type: TypePDF, MIME: "application/pdf"}, nil
	}
	// EPUB and DOCX are both zip containers; the mimetype entry or the
	// [Content_Types] part in the head distinguishes them.
	if isZip(head) {
		if bytes.Contains(head, []byte("epub+zip")) {
			return Result{Type: TypeEPUB, MIME: "application/epub+zip"}, nil
		}
		return Result{Type: TypeDOCX, MIME: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"}, nil
	}
	if utf8.Valid(head) {
		if looksLikeMarkdown(head) {
			return Result{Type: TypeMarkdown, MIME: "text/markdown"}, nil
		}
		return Result{Type: TypeText, MIME: "text/plain"}, nil
	}

	return Result{}, ErrUnknownType
}

func isPDF(head []byte) bool {
	return bytes.HasPrefix(head, []byte("%PDF-"))
}

func isZip(head []byte) bool {
	return len(head) >= 4 && head[0] == 'P' && head[1] == 'K' && head[2] == 0x03 && head[3] == 0x04
}

func looksLikeMarkdown(head []byte) bool {
	trimmed := strings.TrimSpace(string(head))
	return strings.HasPrefix(trimmed, "#") || strings.Contains(trimmed, "\n## ")
}

func MimeTypeFromHTTP(header http.Header) string {
	contentType := header.Get("Content-Type")
	if contentType == "" {
		return ""
	}
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		return strings.TrimSpace(contentType[:idx])
	}
	return strings.TrimSpace(contentType)
}

// WordCount gives the rough word count used on progress dashboards. Only
// meaningful for text-based formats.
func WordCount(data []byte) int {
	return len(strings.Fields(string(data)))
}
