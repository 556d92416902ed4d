package services

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextExtractor turns a raw document file into normalized plain text: a
// single-line, whitespace-collapsed string. The same normalized text feeds
// both the embedding and the structured extraction, so the two downstream
// artifacts always describe identical content.
type TextExtractor interface {
	Extract(filePath string) (string, error)
}

type textExtractor struct{}

func NewTextExtractor() TextExtractor {
	return &textExtractor{}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Extract implements TextExtractor. Dispatch is by file extension,
// case-insensitive. Parse failures surface as ErrExtractionFailed with the
// cause attached; no partial text is ever returned.
func (e *textExtractor) Extract(filePath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	var (
		raw string
		err error
	)

	switch ext {
	case ".pdf":
		raw, err = extractPDF(filePath)
	case ".docx", ".doc":
		raw, err = extractDOCX(filePath)
	case ".txt":
		raw, err = extractTXT(filePath)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	return NormalizeText(raw), nil
}

// NormalizeText collapses a document's raw text into a single line: carriage
// returns become spaces, every run of whitespace (newlines included) becomes
// one space, and the result is trimmed.
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// extractPDF concatenates the plain text of all pages in page order.
func extractPDF(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", pageIndex, err)
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	return textBuilder.String(), nil
}

func extractTXT(filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("read text file: %w", err)
	}

	return string(content), nil
}
