package extract

import (
	"bytes"
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// chromeSelectors are page elements that carry no document content.
var chromeSelectors = []string{"script", "style", "nav", "footer", "header", "aside", "noscript"}

// extractHTML strips page chrome with goquery and converts the remainder to
// markdown.
func (e *Extractor) extractHTML(content []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	for _, sel := range chromeSelectors {
		doc.Find(sel).Remove()
	}

	cleaned, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("serialize html: %w", err)
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(cleaned)
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}
