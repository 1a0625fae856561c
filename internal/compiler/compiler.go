// Package compiler renders posts into HTML pages and records them in the tag
// index.
package compiler

import (
	"github.com/blagsite/blag/internal/blagerr"
	"github.com/blagsite/blag/internal/markdown"
	"github.com/blagsite/blag/internal/post"
	"github.com/blagsite/blag/internal/render"
	"github.com/blagsite/blag/internal/tags"
)

// TemplateName is the name post templates are parsed under.
const TemplateName = "post"

// Compiler renders posts through a single template.
type Compiler struct {
	tpl   *render.Template
	index *tags.Index
}

// New parses the post template. Rendered posts with a deployed URL are added
// to index.
func New(source string, md markdown.Renderer, index *tags.Index) (*Compiler, error) {
	tpl, err := render.New(TemplateName, source, md)
	if err != nil {
		return nil, err
	}
	if index == nil {
		index = tags.NewIndex()
	}
	return &Compiler{tpl: tpl, index: index}, nil
}

// Index returns the tag index the compiler feeds.
func (c *Compiler) Index() *tags.Index { return c.index }

// Render returns the page of p. deployedURL is the URL of the page relative
// to the site root; an empty URL renders the post without listing it on tag
// pages. The index is only updated when rendering succeeds.
func (c *Compiler) Render(p post.Post, deployedURL string) (string, error) {
	html, err := c.tpl.Execute(p.Values())
	if err != nil {
		return "", blagerr.Wrap(err, blagerr.KindRender, "render post").
			WithContext("title", p.Front.Title).
			Build()
	}
	if deployedURL != "" {
		c.index.Add(tags.CompiledPost{Post: p, Path: deployedURL})
	}
	return html, nil
}
