package ingestion

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	mimeText = "text/plain"
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// SupportedExtensions lists the document formats ExtractText understands
var SupportedExtensions = []string{".txt", ".pdf", ".docx"}

// IsSupported reports whether the file name has a supported extension
func IsSupported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// ExtractText returns the plain text of a .txt, .pdf or .docx file. Files
// without an extension are identified by content.
func ExtractText(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &NotFoundError{Path: path}
		}
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", &UnsupportedFormatError{Path: path}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" && !IsSupported(path) {
		return "", &UnsupportedFormatError{Path: path, Extension: ext}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return ExtractBytes(path, data)
}

// ExtractBytes extracts text from an in-memory document. name is used for
// its extension and in error messages.
func ExtractBytes(name string, data []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch formatOf(name, data) {
	case ".txt":
		text = Decode(data)
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDOCX(data)
	default:
		return "", &UnsupportedFormatError{Path: name, Extension: strings.ToLower(filepath.Ext(name))}
	}
	if err != nil {
		return "", err
	}
	return CleanText(text), nil
}

// formatOf resolves the document format from the extension, or by sniffing
// the content when there is none.
func formatOf(name string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext != "" {
		if IsSupported(name) {
			return ext
		}
		return ""
	}

	mt := mimetype.Detect(data)
	switch {
	case mt.Is(mimePDF):
		return ".pdf"
	case mt.Is(mimeDOCX):
		return ".docx"
	case mt.Is(mimeText):
		return ".txt"
	}
	return ""
}

func extractPDF(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			err = &ExtractionError{Message: "malformed pdf", Cause: fmt.Errorf("%v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Message: "failed to read pdf", Cause: err}
	}

	var chunks []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", &ExtractionError{Message: fmt.Sprintf("failed to read pdf page %d", i), Cause: err}
		}
		pageText = strings.TrimSpace(strings.ReplaceAll(pageText, "\u00a0", " "))
		if pageText != "" {
			chunks = append(chunks, pageText)
		}
	}
	return strings.Join(chunks, "\n"), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Message: "failed to read docx", Cause: err}
	}
	defer func() { _ = doc.Close() }()

	text, err := documentXMLText(doc.Editable().GetContent())
	if err != nil {
		return "", &ExtractionError{Message: "failed to parse docx body", Cause: err}
	}
	return text, nil
}

// documentXMLText flattens a WordprocessingML body: one line per paragraph,
// one line per table row with its non-empty cells joined by " | ".
func documentXMLText(content string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(content))

	var (
		lines     []string
		para      strings.Builder
		cellParts []string
		rowCells  []string
		depth     int // table nesting
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				depth++
			case "tab", "br", "cr":
				para.WriteString(" ")
			case "t":
				var s string
				if err := dec.DecodeElement(&s, &t); err != nil {
					return "", err
				}
				para.WriteString(s)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				text := strings.TrimSpace(para.String())
				para.Reset()
				if text == "" {
					continue
				}
				if depth > 0 {
					cellParts = append(cellParts, text)
				} else {
					lines = append(lines, text)
				}
			case "tc":
				if cell := strings.Join(cellParts, " "); cell != "" {
					rowCells = append(rowCells, cell)
				}
				cellParts = nil
			case "tr":
				if len(rowCells) > 0 {
					lines = append(lines, strings.Join(rowCells, " | "))
				}
				rowCells = nil
			case "tbl":
				depth--
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}
