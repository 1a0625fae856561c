package tags

import (
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/blagsite/blag/internal/blagerr"
	"github.com/blagsite/blag/internal/post"
	"github.com/blagsite/blag/internal/relocate"
	"github.com/blagsite/blag/internal/render"
)

// AllTag is the tag name of the hub page and the base name of its file.
const AllTag = "all"

// PageWriter writes a rendered page to dest, creating parent directories.
type PageWriter interface {
	WriteString(dest, content string) error
}

// Generator emits one page per tag and the hub page listing all tags.
type Generator struct {
	// Dir is the directory pages are written to.
	Dir string
	// URLPrefix is Dir relative to the output root, slash separated. It
	// prefixes the paths of the hub page entries.
	URLPrefix string
	// Tag renders tag pages. Without it nothing is emitted.
	Tag *render.Template
	// Hub renders the hub page; Tag is used when nil.
	Hub    *render.Template
	Writer PageWriter
}

// Emit renders and writes the pages for ix and returns how many were
// written.
func (g *Generator) Emit(ix *Index) (int, error) {
	if g.Tag == nil {
		return 0, nil
	}

	written := 0
	for _, tag := range ix.Tags() {
		if FileID(tag) == AllTag {
			slog.Warn("Tag page is overwritten by the hub page", "tag", tag)
		}
		dest := filepath.Join(g.Dir, FileID(tag)+relocate.OutputExt)
		if err := g.write(g.Tag, tag, ix.Posts(tag), dest); err != nil {
			return written, err
		}
		written++
	}

	hub := g.Hub
	if hub == nil {
		hub = g.Tag
	}
	all := make([]CompiledPost, 0, ix.Len())
	for _, tag := range ix.ByFrequency() {
		all = append(all, CompiledPost{
			Post: post.Post{Front: post.FrontMatter{Title: tag, Tags: []string{}}},
			Path: g.PagePath(tag),
		})
	}
	dest := filepath.Join(g.Dir, AllTag+relocate.OutputExt)
	if err := g.write(hub, AllTag, all, dest); err != nil {
		return written, err
	}
	return written + 1, nil
}

// PagePath returns the URL of the page of tag relative to the output root.
func (g *Generator) PagePath(tag string) string {
	return pagePath(g.URLPrefix, tag)
}

func pagePath(prefix, tag string) string {
	return path.Join(prefix, FileID(tag)+relocate.OutputExt)
}

func (g *Generator) write(t *render.Template, tag string, posts []CompiledPost, dest string) error {
	html, err := t.Execute(Context(tag, posts))
	if err != nil {
		return blagerr.Wrap(err, blagerr.KindRender, "render tag page").WithContext("tag", tag).Build()
	}
	if err := g.Writer.WriteString(dest, html); err != nil {
		return blagerr.Wrap(err, blagerr.KindIO, "write tag page").WithContext("path", dest).Build()
	}
	slog.Debug("Wrote tag page", "tag", tag, "posts", len(posts), "dest", dest)
	return nil
}

// Context is the template context of a tag page.
func Context(tag string, posts []CompiledPost) map[string]any {
	values := make([]map[string]any, len(posts))
	for i, p := range posts {
		values[i] = p.Values()
	}
	return map[string]any{
		"tag":   tag,
		"posts": values,
	}
}

var separators = strings.NewReplacer("/", "_", "\\", "_")

// FileID is the base name of the page of tag. Path separators are replaced
// so every tag page stays inside the tag directory.
func FileID(tag string) string {
	id := separators.Replace(tag)
	if id == "" || id == "." || id == ".." {
		id = "_" + id
	}
	return id
}
