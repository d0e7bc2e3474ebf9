package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Engine extracts text with github.com/ledongthuc/pdf.
type Engine struct {
	maxPages int
}

// NewEngine returns an engine that rejects documents longer than maxPages (0 = unlimited).
func NewEngine(maxPages int) *Engine {
	return &Engine{maxPages: maxPages}
}

// Extract opens data and joins its pages. Parser panics on malformed input are
// reported as ErrUnreadable.
func (e *Engine) Extract(ctx context.Context, data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrUnreadable, rec)
		}
	}()

	doc, err := e.Open(data)
	if err != nil {
		return "", err
	}
	return Join(ctx, doc)
}

// Open parses data into a Document.
func (e *Engine) Open(data []byte) (Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrUnreadable)
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	doc := &readerDocument{r: r}
	if e.maxPages > 0 && doc.NumPages() > e.maxPages {
		return nil, fmt.Errorf("%w: %d pages exceeds limit of %d", ErrUnreadable, doc.NumPages(), e.maxPages)
	}
	return doc, nil
}

type readerDocument struct {
	r *pdf.Reader
}

func (d *readerDocument) NumPages() int {
	return d.r.NumPage()
}

// PageFragments returns the page's text in content stream order, one fragment
// per show operator (Tj, ', ", TJ). The strings of a TJ array form a single
// fragment since its numeric entries only kern. Empty fragments are skipped.
func (d *readerDocument) PageFragments(n int) ([]string, error) {
	page := d.r.Page(n)
	if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
		return nil, nil
	}

	fonts := make(map[string]pdf.TextEncoding)
	for _, name := range page.Fonts() {
		fonts[name] = page.Font(name).Encoder()
	}
	var enc pdf.TextEncoding

	var fragments []string
	show := func(raw ...pdf.Value) {
		var b strings.Builder
		for _, v := range raw {
			if v.Kind() != pdf.String {
				continue
			}
			if enc == nil {
				b.WriteString(v.RawString())
				continue
			}
			b.WriteString(enc.Decode(v.RawString()))
		}
		if b.Len() > 0 {
			fragments = append(fragments, b.String())
		}
	}

	var err error
	pdf.Interpret(page.V.Key("Contents"), func(stk *pdf.Stack, op string) {
		args := make([]pdf.Value, stk.Len())
		for i := len(args) - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}
		if err != nil {
			return
		}
		switch op {
		case "Tf":
			if len(args) != 2 {
				err = fmt.Errorf("page %d: bad Tf operator", n)
				return
			}
			enc = fonts[args[0].Name()]
		case "Tj", "'":
			if len(args) != 1 {
				err = fmt.Errorf("page %d: bad %s operator", n, op)
				return
			}
			show(args[0])
		case `"`:
			if len(args) != 3 {
				err = fmt.Errorf("page %d: bad \" operator", n)
				return
			}
			show(args[2])
		case "TJ":
			if len(args) != 1 || args[0].Kind() != pdf.Array {
				err = fmt.Errorf("page %d: bad TJ operator", n)
				return
			}
			parts := make([]pdf.Value, args[0].Len())
			for i := range parts {
				parts[i] = args[0].Index(i)
			}
			show(parts...)
		}
	})
	if err != nil {
		return nil, err
	}
	return fragments, nil
}
