package render

import (
	"errors"
	"html/template"
	"testing"

	"github.com/blagsite/blag/internal/blagerr"
	"github.com/blagsite/blag/internal/markdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func md(t *testing.T) markdown.Renderer {
	t.Helper()
	r, err := markdown.New(markdown.Blackfriday)
	require.NoError(t, err)
	return r
}

type failingRenderer struct{}

func (failingRenderer) Render([]byte) (string, error) { return "", errors.New("engine down") }

func TestMarkdown_ValueShapes(t *testing.T) {
	r := md(t)

	out, err := Markdown(r, "*hi*")
	require.NoError(t, err)
	assert.Equal(t, template.HTML("<p><em>hi</em></p>\n"), out)

	for in, want := range map[any]template.HTML{
		42:    "42",
		1.5:   "1.5",
		true:  "true",
		false: "false",
	} {
		out, err := Markdown(r, in)
		require.NoError(t, err)
		assert.Equal(t, want, out)
	}

	out, err = Markdown(r, nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	var missing *string
	out, err = Markdown(r, missing)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestMarkdown_RejectsComposites(t *testing.T) {
	r := md(t)
	for _, v := range []any{[]string{"a"}, map[string]any{"a": 1}, struct{}{}} {
		_, err := Markdown(r, v)
		require.Error(t, err)
		assert.True(t, blagerr.HasKind(err, blagerr.KindFormatter), "%T", v)
	}
}

func TestMarkdown_EngineFailureIsFormatterError(t *testing.T) {
	_, err := Markdown(failingRenderer{}, "x")
	assert.True(t, blagerr.HasKind(err, blagerr.KindFormatter))
}

func TestCommaSep(t *testing.T) {
	out, err := CommaSep([]string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, "a, b, c", out)

	out, err = CommaSep([]any{"x", 1, true, nil})
	require.NoError(t, err)
	assert.Equal(t, "x, 1, true, ", out)

	out, err = CommaSep([]string{})
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = CommaSep([2]int{3, 4})
	require.NoError(t, err)
	assert.Equal(t, "3, 4", out)
}

func TestCommaSep_RejectsNonSequences(t *testing.T) {
	for _, v := range []any{"a,b", 3, nil, map[string]string{}} {
		_, err := CommaSep(v)
		require.Error(t, err)
		assert.True(t, blagerr.HasKind(err, blagerr.KindFormatter), "%T", v)
	}

	_, err := CommaSep([]any{[]string{"nested"}})
	assert.True(t, blagerr.HasKind(err, blagerr.KindFormatter))
}

func TestNew_MalformedTemplate(t *testing.T) {
	_, err := New("post", "{{.front.title", md(t))
	require.Error(t, err)
	assert.Equal(t, blagerr.KindRender, blagerr.KindOf(err))
}

func TestExecute_FormatterErrorSurfacesAsRenderError(t *testing.T) {
	tpl, err := New("post", "{{commasep .front.title}}", md(t))
	require.NoError(t, err)

	_, err = tpl.Execute(map[string]any{"front": map[string]any{"title": "A"}})
	require.Error(t, err)
	assert.Equal(t, blagerr.KindRender, blagerr.KindOf(err))
	assert.True(t, blagerr.HasKind(err, blagerr.KindFormatter))
}

func TestExecute_MarkdownOutputIsNotTemplateSyntax(t *testing.T) {
	tpl, err := New("post", "{{.md_content | markdown}}", md(t))
	require.NoError(t, err)

	out, err := tpl.Execute(map[string]any{
		"md_content": "{{.secret}} and ::===:: stay text <script>x</script>",
		"secret":     "LEAK",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "{{.secret}}")
	assert.Contains(t, out, "::===::")
	assert.NotContains(t, out, "LEAK")
}

func TestExecute_EscapesPlainValues(t *testing.T) {
	tpl, err := New("post", "<h1>{{.title}}</h1><p>{{commasep .tags}}</p>", md(t))
	require.NoError(t, err)

	out, err := tpl.Execute(map[string]any{"title": "<b>A</b>", "tags": []string{"a&b", "c"}})
	require.NoError(t, err)
	assert.Equal(t, "<h1>&lt;b&gt;A&lt;/b&gt;</h1><p>a&amp;b, c</p>", out)
}
