package classify

import (
	"context"
	"fmt"
	"strings"

	"atsresume/internal/core"
	"atsresume/internal/llmclient"
)

const classifyPreviewChars = 1000

// Classifier runs the two sequential LLM calls that assign a mastercategory
// and, within it, a closed-set category label.
type Classifier struct {
	llm *llmclient.Client
}

// New constructs a Classifier backed by an LLM client.
func New(llm *llmclient.Client) *Classifier {
	return &Classifier{llm: llm}
}

// Classify runs both stages over resumeText. Failures at either stage leave
// the corresponding field unset (nil) rather than returning an error — per
// spec, classification failure never blocks the rest of ingestion.
func (c *Classifier) Classify(ctx context.Context, resumeText string) (mastercategory *core.Mastercategory, category *string) {
	preview := resumeText
	if len(preview) > classifyPreviewChars {
		preview = preview[:classifyPreviewChars]
	}

	mc, ok := c.classifyMastercategory(ctx, preview)
	if !ok {
		return nil, nil
	}
	mastercategory = &mc

	cat, ok := c.classifyCategory(ctx, preview, mc)
	if ok {
		category = &cat
	}
	return mastercategory, category
}

func (c *Classifier) classifyMastercategory(ctx context.Context, preview string) (core.Mastercategory, bool) {
	prompt := fmt.Sprintf(
		"Classify the following resume text as exactly one of: IT, NON_IT.\n"+
			"Output exactly ONE line, no explanation, no punctuation, no quotes.\n\n%s",
		preview,
	)
	text, err := c.llm.Generate(ctx, "", prompt, llmclient.DefaultOptions())
	if err != nil {
		return "", false
	}
	line := firstNonEmptyLine(text)
	switch strings.ToUpper(line) {
	case "IT":
		return core.MastercategoryIT, true
	case "NON_IT":
		return core.MastercategoryNonIT, true
	default:
		return "", false
	}
}

func (c *Classifier) classifyCategory(ctx context.Context, preview string, mastercategory core.Mastercategory) (string, bool) {
	labels := CategoriesFor(string(mastercategory))
	prompt := fmt.Sprintf(
		"Select exactly ONE category for this resume from the following list, "+
			"no explanation, one line only:\n- %s\n\nResume text:\n%s",
		strings.Join(labels, "\n- "), preview,
	)
	text, err := c.llm.Generate(ctx, "", prompt, llmclient.DefaultOptions())
	if err != nil {
		return "", false
	}
	line := firstNonEmptyLine(text)
	for _, label := range labels {
		if strings.EqualFold(line, label) {
			return label, true
		}
	}
	return "", false
}

// firstNonEmptyLine takes the first non-empty line of text, stripping
// surrounding whitespace, code fences, and quote characters.
func firstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.Trim(line, "`\"'")
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}
