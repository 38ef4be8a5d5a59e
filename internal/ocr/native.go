package ocr

import (
	"bytes"
	"context"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"
)

// Native extracts text in-process with ledongthuc/pdf. It reads the text
// layer only; scanned documents need pdftotext or Mistral.
type Native struct{}

// NewNative creates a Native extractor.
func NewNative() *Native { return &Native{} }

// ExtractText returns the text of every page joined by newlines. The reader
// panics on some malformed streams; that is reported as an error.
func (n *Native) ExtractText(ctx context.Context, content []byte) (text string, err error) {
	if len(content) == 0 {
		return "", eris.New("ocr: empty PDF content")
	}
	defer func() {
		if r := recover(); r != nil {
			text, err = "", eris.Errorf("ocr: malformed PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", eris.Wrap(err, "ocr: open PDF")
	}

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", eris.Wrap(err, "ocr: native extract")
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pt, err := page.GetPlainText(nil)
		if err != nil {
			return "", eris.Wrapf(err, "ocr: read page %d", i)
		}
		pages = append(pages, pt)
	}
	return strings.Join(pages, "\n"), nil
}
