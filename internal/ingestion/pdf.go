package ingestion

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrNotPDF is returned when an upload is not a PDF document.
	ErrNotPDF = errors.New("file is not a PDF document")
	// ErrNoText is returned when a PDF contains no extractable text (for example a scanned image).
	ErrNoText = errors.New("no text could be extracted from the PDF")
)

var pdfMagic = []byte("%PDF-")

// IsPDF reports whether data starts with the PDF header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), pdfMagic)
}

// ExtractPDFText returns the cleaned text of a PDF, one visual row per line.
func ExtractPDFText(data []byte) (text string, err error) {
	if !IsPDF(data) {
		return "", ErrNotPDF
	}

	// The PDF reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: malformed document: %v", ErrNotPDF, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotPDF, err)
	}

	raw := textByRow(r)
	if strings.TrimSpace(raw) == "" {
		raw, err = plainText(r)
		if err != nil {
			return "", fmt.Errorf("failed to read PDF text: %w", err)
		}
	}

	cleaned := CleanText(raw)
	if cleaned == "" {
		return "", ErrNoText
	}
	return cleaned, nil
}

// textByRow joins the words of each row so headings and entries stay on separate lines.
func textByRow(r *pdf.Reader) string {
	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			fragments := make([]string, 0, len(row.Content))
			glyphs := true
			for _, text := range row.Content {
				fragments = append(fragments, text.S)
				if len([]rune(text.S)) > 1 {
					glyphs = false
				}
			}
			// Some producers emit one glyph per operator; those rows join without spaces.
			sep := " "
			if glyphs {
				sep = ""
			}
			sb.WriteString(strings.Join(fragments, sep))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func plainText(r *pdf.Reader) (string, error) {
	rd, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rd); err != nil {
		return "", err
	}
	return buf.String(), nil
}
