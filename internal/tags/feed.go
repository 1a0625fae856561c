package tags

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/blagsite/blag/internal/blagerr"
	"github.com/blagsite/blag/internal/markdown"
	atom "github.com/thomas11/atomgenerator"
)

// FeedWriter emits an Atom feed per tag next to the tag pages. Posts without
// a date are left out of feeds.
type FeedWriter struct {
	BaseURL   string
	SiteTitle string
	Author    string
	AuthorURI string
	// Dir and URLPrefix match the Generator the feeds accompany.
	Dir       string
	URLPrefix string
	Markdown  markdown.Renderer
	Writer    PageWriter
}

// Write renders the feed of every tag with at least one dated post and
// returns how many feeds were written.
func (f *FeedWriter) Write(ix *Index) (int, error) {
	written := 0
	for _, tag := range ix.Tags() {
		ok, err := f.writeTag(tag, ix.Posts(tag))
		if err != nil {
			return written, err
		}
		if ok {
			written++
		}
	}
	return written, nil
}

func (f *FeedWriter) writeTag(tag string, posts []CompiledPost) (bool, error) {
	base := f.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	pageURL := base + strings.TrimPrefix(pagePath(f.URLPrefix, tag), "/")

	feed := atom.Feed{
		Title: f.SiteTitle + ` Tag "` + tag + `"`,
		Link:  pageURL,
	}
	feed.AddAuthor(atom.Author{
		Name: f.Author,
		Uri:  f.AuthorURI,
	})

	var latest time.Time
	entries := 0
	for _, cp := range posts {
		date := cp.Post.Front.Date
		if date == nil {
			continue
		}
		e, err := f.entry(base, cp)
		if err != nil {
			return false, err
		}
		feed.AddEntry(e)
		entries++
		if date.After(latest) {
			latest = *date
		}
	}
	if entries == 0 {
		return false, nil
	}
	feed.PubDate = latest

	if errs := feed.Validate(); len(errs) > 0 {
		for _, e := range errs {
			slog.Error("Invalid Atom feed", "tag", tag, "error", e)
		}
		return false, blagerr.Wrap(errs[0], blagerr.KindRender, "validate feed").WithContext("tag", tag).Build()
	}
	xml, err := feed.GenXml()
	if err != nil {
		return false, blagerr.Wrap(err, blagerr.KindRender, "generate feed").WithContext("tag", tag).Build()
	}

	dest := filepath.Join(f.Dir, FileID(tag)+".xml")
	if err := f.Writer.WriteString(dest, string(xml)); err != nil {
		return false, blagerr.Wrap(err, blagerr.KindIO, "write feed").WithContext("path", dest).Build()
	}
	return true, nil
}

func (f *FeedWriter) entry(base string, cp CompiledPost) (*atom.Entry, error) {
	fm := cp.Post.Front
	e := &atom.Entry{
		Title:   fm.Title,
		Link:    base + strings.TrimPrefix(cp.Path, "/"),
		PubDate: *fm.Date,
	}
	if fm.Description != nil {
		e.Description = *fm.Description
	}
	for _, tag := range fm.Tags {
		e.AddCategory(atom.Category{Term: tag})
	}

	body, err := f.Markdown.Render([]byte(cp.Post.Body))
	if err != nil {
		return nil, blagerr.Wrap(err, blagerr.KindRender, "render feed entry").WithContext("path", cp.Path).Build()
	}
	e.Content = body
	return e, nil
}
