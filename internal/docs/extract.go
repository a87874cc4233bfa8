package docs

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"riabuilder/internal/logging"
)

// MaxExtractChars bounds the text returned to the assistant from a single
// document. Longer extractions are truncated and flagged.
const MaxExtractChars = 15000

// Extraction is the result of pulling text out of a stored document.
type Extraction struct {
	Text      string
	Truncated bool
}

// ExtractText pulls readable text out of a document payload based on its
// file type. Unknown binary formats produce an error rather than garbage.
func ExtractText(meta DocumentMeta, payload []byte) (Extraction, error) {
	logging.DocsDebug("Extracting text: file=%s type=%s size=%d", meta.Filename, meta.FileType, len(payload))

	var text string
	switch meta.FileType {
	case "txt", "md", "csv", "log", "json", "yaml", "yml":
		if !utf8.Valid(payload) {
			return Extraction{}, fmt.Errorf("%s is not valid UTF-8 text", meta.Filename)
		}
		text = string(payload)
	case "html", "htm":
		var err error
		text, err = extractHTML(payload)
		if err != nil {
			return Extraction{}, fmt.Errorf("failed to parse HTML in %s: %w", meta.Filename, err)
		}
	case "pdf", "doc", "docx", "xls", "xlsx":
		// Binary office formats are mirrored to Google Drive at upload
		// time; reading them goes through the Drive export path.
		if meta.DriveFileID != "" {
			return Extraction{}, fmt.Errorf("%s is a %s file; read it via its Drive copy (file id %s)",
				meta.Filename, meta.FileType, meta.DriveFileID)
		}
		return Extraction{}, fmt.Errorf("%s is a binary %s file with no Drive copy to extract from",
			meta.Filename, meta.FileType)
	default:
		if utf8.Valid(payload) && len(payload) > 0 {
			text = string(payload)
		} else {
			return Extraction{}, fmt.Errorf("unsupported file type %q for %s", meta.FileType, meta.Filename)
		}
	}

	text = strings.TrimSpace(text)
	if len(text) > MaxExtractChars {
		logging.Docs("Extraction truncated: file=%s chars=%d limit=%d", meta.Filename, len(text), MaxExtractChars)
		return Extraction{Text: truncateAtRune(text, MaxExtractChars), Truncated: true}, nil
	}
	return Extraction{Text: text}, nil
}

// truncateAtRune cuts text to at most limit bytes without splitting a
// multi-byte rune.
func truncateAtRune(text string, limit int) string {
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// extractHTML walks the parse tree collecting text nodes, skipping script
// and style bodies.
func extractHTML(payload []byte) (string, error) {
	root, err := html.Parse(bytes.NewReader(payload))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			trimmed := strings.TrimSpace(n.Data)
			if trimmed != "" {
				sb.WriteString(trimmed)
				sb.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return sb.String(), nil
}
