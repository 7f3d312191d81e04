package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"
	"unicode"
)

// extractDOC runs the legacy .doc cascade: when a converter URL is set, an
// external extractor service and then a headless office conversion to DOCX;
// then DOCX parsing on the raw bytes (some .doc files are mislabeled DOCX);
// and finally a best-effort printable-ASCII scan of the binary, which fails
// only when fewer than minimumCharacters remain. There is no command-line
// extractor tier.
func (e *Extractor) extractDOC(ctx context.Context, data []byte) (string, error) {
	if e.docConverterURL != "" {
		if text, err := e.externalDocExtract(ctx, data); err == nil && !isImageLike(text) {
			return normalizeText(text), nil
		}
		if text, err := e.convertDocToDocx(ctx, data); err == nil {
			if docxText, err := extractDOCXViaLibrary(text); err == nil && !isImageLike(docxText) {
				return normalizeText(docxText), nil
			}
		}
	}

	if text, err := extractDOCXViaLibrary(data); err == nil && !isImageLike(text) {
		return normalizeText(text), nil
	}

	text := normalizeText(printableASCIIScan(data))
	if len(text) < minimumCharacters {
		return "", fmt.Errorf("all .doc extraction tiers yielded insufficient text")
	}
	return text, nil
}

// externalDocExtract calls a dedicated extractor microservice, the
// cascade's first and most reliable tier.
func (e *Extractor) externalDocExtract(ctx context.Context, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.docConverterURL+"/extract", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/msword")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("external doc extractor unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("external doc extractor returned %d", resp.StatusCode)
	}
	body := make([]byte, 0, 1<<16)
	buf := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(buf)
		body = append(body, buf[:n]...)
		if readErr != nil {
			break
		}
	}
	return string(body), nil
}

// convertDocToDocx calls the same external service's headless office
// conversion endpoint, returning raw DOCX bytes for the library tier above
// to parse.
func (e *Extractor) convertDocToDocx(ctx context.Context, data []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.docConverterURL+"/convert-to-docx", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/msword")

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("doc conversion service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("doc conversion service returned %d", resp.StatusCode)
	}
	body := make([]byte, 0, 1<<16)
	buf := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(buf)
		body = append(body, buf[:n]...)
		if readErr != nil {
			break
		}
	}
	return body, nil
}

// printableASCIIScan is the last-resort tier: walk the binary and keep
// runs of printable characters, for .doc files too malformed for any
// structured parser.
func printableASCIIScan(data []byte) string {
	var out []rune
	for _, b := range data {
		r := rune(b)
		if unicode.IsPrint(r) && r < unicode.MaxASCII {
			out = append(out, r)
		} else {
			out = append(out, '\n')
		}
	}
	return string(out)
}
