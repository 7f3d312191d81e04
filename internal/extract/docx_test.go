package extract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

func buildMinimalDocx(t *testing.T, paragraphText string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("creating document.xml: %v", err)
	}
	xml := `<?xml version="1.0"?><w:document><w:body><w:p><w:r><w:t>` + paragraphText + `</w:t></w:r></w:p></w:body></w:document>`
	if _, err := f.Write([]byte(xml)); err != nil {
		t.Fatalf("writing document.xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip writer: %v", err)
	}
	return buf.Bytes()
}

func TestExtractDOCXRawXMLFallback(t *testing.T) {
	data := buildMinimalDocx(t, "Senior Go engineer with distributed systems experience")
	text, err := extractDOCXRawXML(data)
	if err != nil {
		t.Fatalf("extractDOCXRawXML returned error: %v", err)
	}
	if !strings.Contains(text, "distributed systems") {
		t.Errorf("expected raw XML scan to recover text node content, got %q", text)
	}
}

func TestIsDocumentPart(t *testing.T) {
	cases := map[string]bool{
		"word/document.xml": true,
		"word/header1.xml":  true,
		"word/footer2.xml":  true,
		"word/media/image1.png": false,
		"[Content_Types].xml":   false,
	}
	for name, want := range cases {
		if got := isDocumentPart(name); got != want {
			t.Errorf("isDocumentPart(%q) = %v, want %v", name, got, want)
		}
	}
}
