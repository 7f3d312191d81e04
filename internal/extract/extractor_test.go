package extract

import (
	"context"
	"strings"
	"testing"
)

func TestExtractTxtPassesThrough(t *testing.T) {
	e := New(nil, "")
	data := []byte(strings.Repeat("Experienced backend engineer with Go and Kubernetes background. ", 3))
	text, err := e.Extract(context.Background(), data, "resume.txt")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if !strings.Contains(text, "Kubernetes") {
		t.Errorf("expected normalized text to retain content, got %q", text)
	}
}

func TestExtractRejectsInsufficientText(t *testing.T) {
	e := New(nil, "")
	_, err := e.Extract(context.Background(), []byte("hi"), "resume.txt")
	if err == nil {
		t.Fatal("expected ExtractionError for too-short text")
	}
}

func TestExtractUnknownExtensionDecodesUTF8(t *testing.T) {
	e := New(nil, "")
	data := []byte(strings.Repeat("plain candidate background text ", 5))
	text, err := e.Extract(context.Background(), data, "resume.xyz")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if !strings.Contains(text, "candidate") {
		t.Errorf("expected fallback decode to retain content, got %q", text)
	}
}

func TestRecognizedExtensions(t *testing.T) {
	for _, ext := range []string{".pdf", ".docx", ".doc", ".txt", ".jpg", ".html"} {
		if !Recognized(ext) {
			t.Errorf("expected %s to be recognized", ext)
		}
	}
	if Recognized(".exe") {
		t.Error("expected .exe to not be recognized")
	}
}

func TestIsImageLike(t *testing.T) {
	if !isImageLike("short") {
		t.Error("expected very short text to be image-like")
	}
	if isImageLike(strings.Repeat("word ", 20)) {
		t.Error("expected 20 words of text to not be image-like")
	}
}
