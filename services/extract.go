package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

// MinContentLength is the floor on extracted text: anything shorter carries
// too little material for a meaningful synthesis.
const MinContentLength = 50

// MaxPDFPages bounds how much of a large PDF is scanned.
const MaxPDFPages = 50

var (
	// ErrExtractionFailed wraps any parser failure. Partial text is discarded.
	ErrExtractionFailed = errors.New("could not read the file, it may be corrupted or encrypted")

	// ErrInsufficientContent signals extracted text under MinContentLength.
	ErrInsufficientContent = errors.New("insufficient material for meaningful synthesis")
)

// ExtractText converts an uploaded document into plain text, dispatching on
// the file extension. Unknown extensions are read as UTF-8 text.
func ExtractText(fileHeader *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))

	var text string
	var err error
	switch ext {
	case ".pdf":
		text, err = extractPDF(fileHeader)
	case ".docx":
		text, err = extractDOCX(fileHeader)
	case ".xlsx", ".xls":
		text, err = extractWorkbook(fileHeader)
	case ".pptx":
		text, err = extractPPTX(fileHeader)
	default:
		text, err = extractPlainText(fileHeader)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return text, nil
}

// CheckContentLength enforces the caller-side postcondition on extracted
// text: non-blank after trimming and a raw length of at least
// MinContentLength characters. Surrounding whitespace counts toward the
// floor; only fully blank text is rejected outright.
func CheckContentLength(text string) error {
	if strings.TrimSpace(text) == "" || len([]rune(text)) < MinContentLength {
		return ErrInsufficientContent
	}
	return nil
}

func readAll(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// extractPDF scans up to MaxPDFPages pages. Tokens within a page are joined
// by spaces, pages are separated by newlines.
func extractPDF(fileHeader *multipart.FileHeader) (string, error) {
	data, err := readAll(fileHeader)
	if err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var textBuilder strings.Builder
	pages := reader.NumPage()
	if pages > MaxPDFPages {
		pages = MaxPDFPages
	}
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		first := true
		for _, row := range rows {
			for _, word := range row.Content {
				if !first {
					textBuilder.WriteString(" ")
				}
				textBuilder.WriteString(word.S)
				first = false
			}
		}
		textBuilder.WriteString("\n")
	}

	return textBuilder.String(), nil
}

// extractDOCX reads word/document.xml out of the docx zip and collects the
// raw paragraph text, discarding styling.
func extractDOCX(fileHeader *multipart.FileHeader) (string, error) {
	data, err := readAll(fileHeader)
	if err != nil {
		return "", err
	}

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("word/document.xml not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	text, err := collectTextRuns(rc)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// extractWorkbook renders every sheet as a tab-delimited dump, sheets
// concatenated with newlines in workbook order.
func extractWorkbook(fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	wb, err := excelize.OpenReader(file)
	if err != nil {
		return "", err
	}
	defer wb.Close()

	var sheets []string
	for _, name := range wb.GetSheetList() {
		rows, err := wb.GetRows(name)
		if err != nil {
			return "", err
		}
		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			lines = append(lines, strings.Join(row, "\t"))
		}
		sheets = append(sheets, strings.Join(lines, "\n"))
	}

	return strings.Join(sheets, "\n"), nil
}

// extractPPTX treats the file as a zip archive, parses every slide part and
// concatenates its text runs, slides separated by newlines.
func extractPPTX(fileHeader *multipart.FileHeader) (string, error) {
	data, err := readAll(fileHeader)
	if err != nil {
		return "", err
	}

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var textBuilder strings.Builder
	for _, f := range r.File {
		if !strings.HasPrefix(f.Name, "ppt/slides/slide") || !strings.HasSuffix(f.Name, ".xml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		text, err := collectTextRuns(rc)
		rc.Close()
		if err != nil {
			return "", err
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	return textBuilder.String(), nil
}

func extractPlainText(fileHeader *multipart.FileHeader) (string, error) {
	data, err := readAll(fileHeader)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// collectTextRuns walks an OOXML stream and concatenates the contents of
// every <w:t>/<a:t> text-run element in document order, separated by spaces.
func collectTextRuns(r io.Reader) (string, error) {
	var buf strings.Builder
	decoder := xml.NewDecoder(r)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "t" {
				var text string
				if err := decoder.DecodeElement(&text, &se); err == nil {
					buf.WriteString(text + " ")
				}
			}
		}
	}
	return buf.String(), nil
}
