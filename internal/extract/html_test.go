package extract

import (
	"context"
	"strings"
	"testing"
)

func TestExtractHTMLExtractsBodyText(t *testing.T) {
	e := New(nil, "")
	html := `<html><head><title>Resume</title></head><body>
		<div class="contact-info">jane@example.com | 9876543210</div>
		<p>Senior Go engineer with eight years of distributed systems experience.</p>
	</body></html>`
	text, err := e.Extract(context.Background(), []byte(html), "resume.html")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if !strings.Contains(text, "Go engineer") {
		t.Errorf("expected body text to be extracted, got %q", text)
	}
	if !strings.Contains(text, "jane@example.com") {
		t.Errorf("expected contact keyword element text to be retained, got %q", text)
	}
}

func TestStripForwardedHeadersAnchorsOnMarker(t *testing.T) {
	html := "From: recruiter@example.com\nSubject: fwd\n\nPersonal Profile\nName: Jane Doe\nSkills: Go, Python"
	stripped := stripForwardedHeaders(html)
	if strings.Contains(stripped, "recruiter@example.com") {
		t.Error("expected forwarded header block to be stripped")
	}
	if !strings.Contains(stripped, "Jane Doe") {
		t.Error("expected content after the marker to survive")
	}
}
