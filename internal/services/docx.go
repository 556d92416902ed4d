package services

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// docxDocumentPath is where OOXML packages keep the main document body.
const docxDocumentPath = "word/document.xml"

// wpTag matches one <w:p>...</w:p> paragraph block, attributes or not.
var wpTag = regexp.MustCompile(`(?s)<w:p(?:\s[^>]*)?>(.*?)</w:p>`)

// wtTag matches the text runs inside a paragraph, e.g. <w:t xml:space="preserve">.
var wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// extractDOCX reads word/document.xml out of the .docx zip and returns the
// non-empty paragraph texts joined by newlines, in document order. Empty
// paragraphs are skipped.
func extractDOCX(filePath string) (string, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return "", fmt.Errorf("open DOCX: not a zip: %w", err)
	}
	defer zr.Close()

	var docXML []byte
	for _, f := range zr.File {
		if f.Name != docxDocumentPath {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", f.Name, err)
		}

		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			_ = rc.Close()
			return "", fmt.Errorf("read %s: %w", f.Name, err)
		}
		_ = rc.Close()

		docXML = buf.Bytes()
		break
	}

	if docXML == nil {
		return "", fmt.Errorf("%s not found in archive", docxDocumentPath)
	}

	var paragraphs []string
	for _, p := range wpTag.FindAllSubmatch(docXML, -1) {
		var b strings.Builder
		for _, t := range wtTag.FindAllSubmatch(p[1], -1) {
			b.Write(t[1])
		}

		text := unescapeXML(strings.TrimSpace(b.String()))
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	}

	return strings.Join(paragraphs, "\n"), nil
}

var xmlEntities = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
)

func unescapeXML(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return xmlEntities.Replace(s)
}
