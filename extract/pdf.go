package extract

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Source pulls raw text out of an uploaded report document. A document
// yielding no text is representable as an empty string and must not crash
// extraction; callers then get an all-null field map from Fields.
type Source interface {
	ExtractText(data []byte) (string, error)
}

// PDFSource reads report text from PDF bytes.
type PDFSource struct{}

func NewPDFSource() PDFSource { return PDFSource{} }

func (PDFSource) ExtractText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var pages []string
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		p := r.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			continue
		}
		var sb strings.Builder
		for _, row := range rows {
			for _, word := range row.Content {
				sb.WriteString(word.S)
			}
			sb.WriteString("\n")
		}
		if sb.Len() > 0 {
			pages = append(pages, sb.String())
		}
	}
	return strings.Join(pages, "\n"), nil
}
