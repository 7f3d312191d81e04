package extract

import (
	"context"
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// forwardedHeaderMarkers anchor the point where a forwarded email's raw
// header block ends and the actual resume content begins.
var forwardedHeaderMarkers = []string{"Personal Profile", "Name:"}

// contactKeywordSelectors match elements whose class/id suggests contact
// information worth keeping even when surrounding markup is stripped.
var contactKeywordSelectors = []string{"contact", "email", "phone", "mobile", "address"}

var inlineBase64Image = regexp.MustCompile(`data:image/[a-zA-Z]+;base64,([A-Za-z0-9+/=]+)`)

// extractHTML strips forwarded-email header noise, DOM-extracts the
// meaningful structural elements, falls back to full tag-stripping if that
// yields too little, and additionally OCRs any inline base64 images found
// in the markup.
func (e *Extractor) extractHTML(ctx context.Context, data []byte) (string, error) {
	stripped := stripForwardedHeaders(string(data))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(stripped))
	if err != nil {
		return normalizeText(stripTags(stripped)), nil
	}

	domText := extractStructuredText(doc)
	text := domText
	if isImageLike(domText) {
		text = longestText(domText, stripTags(stripped))
	}

	if e.ocr != nil {
		if imageText := e.ocrInlineImages(ctx, stripped); imageText != "" {
			text = text + "\n" + imageText
		}
	}

	return normalizeText(text), nil
}

func stripForwardedHeaders(html string) string {
	for _, marker := range forwardedHeaderMarkers {
		if idx := strings.Index(html, marker); idx > 0 {
			return html[idx:]
		}
	}
	return html
}

func extractStructuredText(doc *goquery.Document) string {
	var text strings.Builder

	doc.Find("head title").Each(func(_ int, s *goquery.Selection) {
		text.WriteString(s.Text())
		text.WriteString("\n")
	})
	doc.Find("header, pre").Each(func(_ int, s *goquery.Selection) {
		text.WriteString(s.Text())
		text.WriteString("\n")
	})
	for _, keyword := range contactKeywordSelectors {
		doc.Find("[class*='" + keyword + "'], [id*='" + keyword + "']").Each(func(_ int, s *goquery.Selection) {
			text.WriteString(s.Text())
			text.WriteString("\n")
		})
	}
	text.WriteString(doc.Find("body").Text())
	return text.String()
}

func stripTags(html string) string {
	tag := regexp.MustCompile(`<[^>]*>`)
	return tag.ReplaceAllString(html, " ")
}

func (e *Extractor) ocrInlineImages(ctx context.Context, html string) string {
	matches := inlineBase64Image.FindAllStringSubmatch(html, -1)
	var combined strings.Builder
	for _, match := range matches {
		raw, err := base64.StdEncoding.DecodeString(match[1])
		if err != nil {
			continue
		}
		text, err := e.ocr.Recognize(ctx, raw)
		if err != nil || text == "" {
			continue
		}
		combined.WriteString(text)
		combined.WriteString("\n")
	}
	return combined.String()
}
