package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// extractDOCX pulls paragraphs, table cells, headers, and footers via the
// docx library's document-wide text extraction; if that comes back thin it
// falls back to a direct scan of the package's internal XML parts, since
// some documents have their text spread across runs the library's text
// walker misses.
func (e *Extractor) extractDOCX(ctx context.Context, data []byte) (string, error) {
	text, err := extractDOCXViaLibrary(data)
	if err == nil && !isImageLike(text) {
		return normalizeText(text), nil
	}

	rawText, rawErr := extractDOCXRawXML(data)
	if rawErr != nil && err != nil {
		return "", fmt.Errorf("docx extraction failed: library=%v raw=%v", err, rawErr)
	}
	return normalizeText(longestText(text, rawText)), nil
}

func extractDOCXViaLibrary(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	doc, err := docx.ReadDocxFromMemory(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening DOCX: %w", err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	// Table cells in the library's content come through as run-adjacent
	// text with no separator; the spec wants cells joined with "|" so they
	// stay distinguishable from surrounding paragraph text.
	content = strings.ReplaceAll(content, "</w:tc>", " | ")
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("no text content found in DOCX")
	}
	return content, nil
}

var docxTextNode = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// extractDOCXRawXML unzips the .docx package and concatenates every text
// node in the main document plus any header/footer parts, bypassing the
// library's document model entirely.
func extractDOCXRawXML(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening DOCX as zip: %w", err)
	}

	var text strings.Builder
	for _, f := range zr.File {
		if !isDocumentPart(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		for _, match := range docxTextNode.FindAllSubmatch(raw, -1) {
			text.Write(match[1])
			text.WriteString(" ")
		}
		text.WriteString("\n")
	}

	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("no text nodes found in DOCX package")
	}
	return text.String(), nil
}

func isDocumentPart(name string) bool {
	return name == "word/document.xml" ||
		strings.HasPrefix(name, "word/header") ||
		strings.HasPrefix(name, "word/footer")
}
