// Package markdown converts Markdown to HTML. Two engines are available:
// blackfriday (the default) and goldmark.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/russross/blackfriday/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Engine names.
const (
	Blackfriday = "blackfriday"
	Goldmark    = "goldmark"
)

// Renderer turns Markdown into HTML.
type Renderer interface {
	Render(in []byte) (string, error)
}

// New returns the renderer for engine. The empty name selects blackfriday.
func New(engine string) (Renderer, error) {
	switch engine {
	case "", Blackfriday:
		return newBlackfriday(), nil
	case Goldmark:
		return newGoldmark(), nil
	default:
		return nil, fmt.Errorf("unknown markdown engine %q", engine)
	}
}

const htmlFlags = blackfriday.CommonHTMLFlags |
	blackfriday.FootnoteReturnLinks |
	blackfriday.SmartypantsFractions |
	blackfriday.SmartypantsLatexDashes

const extensions = blackfriday.CommonExtensions |
	blackfriday.Footnotes |
	blackfriday.AutoHeadingIDs

type blackfridayRenderer struct {
	params     blackfriday.HTMLRendererParameters
	extensions blackfriday.Extensions
}

func newBlackfriday() *blackfridayRenderer {
	return &blackfridayRenderer{
		params:     blackfriday.HTMLRendererParameters{Flags: htmlFlags},
		extensions: extensions,
	}
}

// Render builds a fresh HTML renderer per call; the blackfriday renderer
// keeps footnote and heading state between documents.
func (b *blackfridayRenderer) Render(in []byte) (string, error) {
	r := blackfriday.NewHTMLRenderer(b.params)
	out := blackfriday.Run(in, blackfriday.WithRenderer(r), blackfriday.WithExtensions(b.extensions))
	return string(out), nil
}

type goldmarkRenderer struct {
	md goldmark.Markdown
}

func newGoldmark() *goldmarkRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.Typographer,
			extension.DefinitionList,
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &goldmarkRenderer{md: md}
}

func (g *goldmarkRenderer) Render(in []byte) (string, error) {
	var buf bytes.Buffer
	if err := g.md.Convert(in, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
