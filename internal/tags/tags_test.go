package tags

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/blagsite/blag/internal/blagerr"
	"github.com/blagsite/blag/internal/markdown"
	"github.com/blagsite/blag/internal/post"
	"github.com/blagsite/blag/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriter map[string]string

func (m memWriter) WriteString(dest, content string) error {
	m[dest] = content
	return nil
}

type failWriter struct{}

func (failWriter) WriteString(string, string) error { return errors.New("disk full") }

func md(t *testing.T) markdown.Renderer {
	t.Helper()
	r, err := markdown.New("")
	require.NoError(t, err)
	return r
}

func tpl(t *testing.T, source string) *render.Template {
	t.Helper()
	tp, err := render.New("tag", source, md(t))
	require.NoError(t, err)
	return tp
}

func compiled(title, path string, date *time.Time, tags ...string) CompiledPost {
	if tags == nil {
		tags = []string{}
	}
	return CompiledPost{
		Post: post.Post{Front: post.FrontMatter{Title: title, Tags: tags, Date: date}, Body: "body of " + title},
		Path: path,
	}
}

func day(d int) *time.Time {
	t := time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestIndex_AccumulatesInOrder(t *testing.T) {
	ix := NewIndex()
	ix.Add(compiled("a", "a.html", nil, "go"))
	ix.Add(compiled("b", "b.html", nil, "go"))
	ix.Add(compiled("c", "c.html", nil, "go", "rust"))
	ix.Add(compiled("untagged", "u.html", nil))

	assert.Equal(t, []string{"go", "rust"}, ix.Tags())
	assert.Equal(t, 2, ix.Len())
	require.Len(t, ix.Posts("go"), 3)
	assert.Equal(t, "c.html", ix.Posts("go")[2].Path)
	require.Len(t, ix.Posts("rust"), 1)
	assert.Empty(t, ix.Posts("python"))
	assert.Equal(t, "go: a, b, c\nrust: c\n", ix.String())
}

func TestIndex_DuplicateTagListsPostOnce(t *testing.T) {
	ix := NewIndex()
	ix.Add(compiled("a", "a.html", nil, "go", "go"))

	assert.Len(t, ix.Posts("go"), 1)
}

func TestIndex_ByFrequency(t *testing.T) {
	ix := NewIndex()
	ix.Add(compiled("a", "a.html", day(1), "old", "popular"))
	ix.Add(compiled("b", "b.html", day(2), "popular"))
	ix.Add(compiled("c", "c.html", day(5), "new"))
	ix.Add(compiled("d", "d.html", day(5), "also-new"))

	assert.Equal(t, []string{"popular", "also-new", "new", "old"}, ix.ByFrequency())
}

func TestGenerator_NoTemplateEmitsNothing(t *testing.T) {
	ix := NewIndex()
	ix.Add(compiled("a", "a.html", nil, "go"))
	w := memWriter{}

	n, err := (&Generator{Dir: "/out/tags", Writer: w}).Emit(ix)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, w)
}

func TestGenerator_EmitsTagAndHubPages(t *testing.T) {
	ix := NewIndex()
	ix.Add(compiled("A", "posts/a.html", nil, "go"))
	ix.Add(compiled("B", "posts/b.html", nil, "go", "rust"))
	w := memWriter{}
	dir := filepath.Join("out", "tags")

	g := &Generator{
		Dir:       dir,
		URLPrefix: "tags",
		Tag:       tpl(t, `{{.tag}}:{{range .posts}}[{{.path}} {{.post.front.title}}]{{end}}`),
		Writer:    w,
	}
	n, err := g.Emit(ix)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.Equal(t, "go:[posts/a.html A][posts/b.html B]", w[filepath.Join(dir, "go.html")])
	assert.Equal(t, "rust:[posts/b.html B]", w[filepath.Join(dir, "rust.html")])
	assert.Equal(t, "all:[tags/go.html go][tags/rust.html rust]", w[filepath.Join(dir, "all.html")])
}

func TestGenerator_HubTemplate(t *testing.T) {
	ix := NewIndex()
	ix.Add(compiled("A", "a.html", nil, "go"))
	w := memWriter{}

	g := &Generator{
		Dir:    "tags",
		Tag:    tpl(t, "tag page"),
		Hub:    tpl(t, `{{range .posts}}{{.post.front.title}}={{.post.md_content}}{{len .post.front.tags}};{{end}}`),
		Writer: w,
	}
	_, err := g.Emit(ix)
	require.NoError(t, err)
	assert.Equal(t, "tag page", w[filepath.Join("tags", "go.html")])
	assert.Equal(t, "go=0;", w[filepath.Join("tags", "all.html")])
}

func TestGenerator_EmptyIndexStillWritesHub(t *testing.T) {
	w := memWriter{}
	n, err := (&Generator{Dir: "tags", Tag: tpl(t, "{{len .posts}}"), Writer: w}).Emit(NewIndex())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "0", w[filepath.Join("tags", "all.html")])
}

func TestGenerator_Errors(t *testing.T) {
	ix := NewIndex()
	ix.Add(compiled("A", "a.html", nil, "go"))

	_, err := (&Generator{Dir: "tags", Tag: tpl(t, "{{commasep .tag}}"), Writer: memWriter{}}).Emit(ix)
	assert.True(t, blagerr.HasKind(err, blagerr.KindFormatter))

	_, err = (&Generator{Dir: "tags", Tag: tpl(t, "x"), Writer: failWriter{}}).Emit(ix)
	assert.Equal(t, blagerr.KindIO, blagerr.KindOf(err))
}

func TestFileID(t *testing.T) {
	assert.Equal(t, "go", FileID("go"))
	assert.Equal(t, "c_c++", FileID("c/c++"))
	assert.Equal(t, "a_b", FileID(`a\b`))
	assert.Equal(t, "_..", FileID(".."))
	assert.Equal(t, "_", FileID(""))
	assert.Equal(t, "web dev", FileID("web dev"))
}

func TestFeedWriter_WritesDatedPosts(t *testing.T) {
	desc := "about go"
	p := compiled("Dated", "posts/dated.html", day(3), "go")
	p.Post.Front.Description = &desc
	p.Post.Body = "*hi*"

	ix := NewIndex()
	ix.Add(p)
	ix.Add(compiled("Undated", "posts/undated.html", nil, "go"))
	ix.Add(compiled("OnlyUndated", "posts/u2.html", nil, "rust"))
	w := memWriter{}

	f := &FeedWriter{
		BaseURL:   "http://example.com",
		SiteTitle: "Example",
		Author:    "Joe User",
		AuthorURI: "http://example.com/",
		Dir:       "tags",
		URLPrefix: "tags",
		Markdown:  md(t),
		Writer:    w,
	}
	n, err := f.Write(ix)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	xml := w[filepath.Join("tags", "go.xml")]
	require.NotEmpty(t, xml)
	assert.Contains(t, xml, "Dated")
	assert.Contains(t, xml, "http://example.com/posts/dated.html")
	assert.False(t, strings.Contains(xml, "Undated"))
	_, ok := w[filepath.Join("tags", "rust.xml")]
	assert.False(t, ok)
}
