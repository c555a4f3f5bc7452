package docsniff

import (
	"net/http"
	"testing"
)

func TestDetectHead(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want DocType
		mime string
	}{
		{name: "pdf", head: []byte("%PDF-1.7 ..."), want: TypePDF, mime: "application/pdf"},
		{name: "epub", head: append([]byte{'P', 'K', 0x03, 0x04}, []byte("mimetypeapplication/epub+zip")...), want: TypeEPUB, mime: "application/epub+zip"},
		{name: "docx", head: append([]byte{'P', 'K', 0x03, 0x04}, []byte("[Content_Types].xml")...), want: TypeDOCX, mime: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{name: "markdown heading", head: []byte("# Chapter One\n\nIt was a dark night."), want: TypeMarkdown, mime: "text/markdown"},
		{name: "plain text", head: []byte("It was a dark night."), want: TypeText, mime: "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := DetectHead(tt.head)
			if err != nil {
				t.Fatal(err)
			}
			if result.Type != tt.want {
				t.Fatalf("type = %s, want %s", result.Type, tt.want)
			}
			if result.MIME != tt.mime {
				t.Fatalf("mime = %s, want %s", result.MIME, tt.mime)
			}
		})
	}
}

func TestDetectHeadUnknown(t *testing.T) {
	if _, err := DetectHead(nil); err == nil {
		t.Fatal("expected error for empty head")
	}
	if _, err := DetectHead([]byte{0xff, 0xfe, 0x00, 0x81}); err == nil {
		t.Fatal("expected error for binary garbage")
	}
}

func TestMimeTypeFromHTTP(t *testing.T) {
	header := http.Header{}
	header.Set("Content-Type", "text/plain; charset=utf-8")
	if got := MimeTypeFromHTTP(header); got != "text/plain" {
		t.Fatalf("got %q", got)
	}
	if got := MimeTypeFromHTTP(http.Header{}); got != "" {
		t.Fatalf("empty header gave %q", got)
	}
}

func TestWordCount(t *testing.T) {
	if got := WordCount([]byte("one two  three\nfour")); got != 4 {
		t.Fatalf("count = %d, want 4", got)
	}
	if got := WordCount(nil); got != 0 {
		t.Fatalf("count = %d, want 0", got)
	}
}
