// Package post parses blog posts: a TOML front matter block, the
// "::===::" delimiter line and a Markdown body.
package post

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/blagsite/blag/internal/blagerr"
	"github.com/pelletier/go-toml/v2"
)

// Delimiter separates the front matter from the body. It must occur exactly
// once in a post.
const Delimiter = "::===::\n"

// FrontMatter is the metadata block of a post. Optional fields are nil when
// absent.
type FrontMatter struct {
	Title       string     `toml:"title"`
	Tags        []string   `toml:"tags"`
	Subtitle    *string    `toml:"subtitle"`
	Description *string    `toml:"description"`
	Date        *time.Time `toml:"date"`
}

// Post is a parsed post. Values are only produced by Parse and Read.
type Post struct {
	Front FrontMatter
	Body  string
}

// Parse splits text into front matter and body and decodes the front matter.
func Parse(text string) (Post, error) {
	parts := strings.Split(text, Delimiter)
	if len(parts) != 2 {
		return Post{}, blagerr.New(blagerr.KindMalformedPost, "could not split into exactly two parts").
			WithContext("delimiters", len(parts)-1).
			Build()
	}

	var fm FrontMatter
	if err := toml.Unmarshal([]byte(parts[0]), &fm); err != nil {
		return Post{}, blagerr.Wrap(err, blagerr.KindInvalidFrontMatter, "decode front matter").Build()
	}
	if fm.Title == "" {
		return Post{}, blagerr.New(blagerr.KindInvalidFrontMatter, "missing title").Build()
	}
	if fm.Tags == nil {
		fm.Tags = []string{}
	}

	return Post{Front: fm, Body: parts[1]}, nil
}

// Read reads a whole post from r and parses it.
func Read(r io.Reader) (Post, error) {
	text, err := io.ReadAll(r)
	if err != nil {
		return Post{}, blagerr.Wrap(err, blagerr.KindIO, "read post").Build()
	}
	return Parse(string(text))
}

// Values is the template context of the front matter. Absent optional fields
// are left out.
func (fm FrontMatter) Values() map[string]any {
	tags := fm.Tags
	if tags == nil {
		tags = []string{}
	}
	v := map[string]any{
		"title": fm.Title,
		"tags":  tags,
	}
	if fm.Subtitle != nil {
		v["subtitle"] = *fm.Subtitle
	}
	if fm.Description != nil {
		v["description"] = *fm.Description
	}
	if fm.Date != nil {
		v["date"] = fm.Date.Format(time.RFC3339)
	}
	return v
}

// Values is the template context of the post: the front matter under "front"
// and the raw Markdown under "md_content".
func (p Post) Values() map[string]any {
	return map[string]any{
		"front":      p.Front.Values(),
		"md_content": p.Body,
	}
}

func (p Post) String() string {
	b := new(bytes.Buffer)
	b.WriteString("title: ")
	b.WriteString(p.Front.Title)
	if p.Front.Date != nil {
		b.WriteString("\ndate: ")
		b.WriteString(p.Front.Date.String())
	}
	b.WriteString("\ntags: ")
	fmt.Fprintln(b, p.Front.Tags)

	body := p.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	b.WriteString("body: ")
	b.WriteString(body)

	return b.String()
}
