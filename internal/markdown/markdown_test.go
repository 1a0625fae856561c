package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Paragraph(t *testing.T) {
	for _, engine := range []string{"", Blackfriday, Goldmark} {
		r, err := New(engine)
		require.NoError(t, err)

		out, err := r.Render([]byte("Hello"))
		require.NoError(t, err)
		assert.Equal(t, "<p>Hello</p>\n", out, engine)
	}
}

func TestRender_Extensions(t *testing.T) {
	in := []byte("| a | b |\n|---|---|\n| 1 | 2 |\n\n~~gone~~\n")
	for _, engine := range []string{Blackfriday, Goldmark} {
		r, err := New(engine)
		require.NoError(t, err)

		out, err := r.Render(in)
		require.NoError(t, err)
		assert.Contains(t, out, "<table>", engine)
		assert.Contains(t, out, "<del>gone</del>", engine)
	}
}

func TestRender_FencedCode(t *testing.T) {
	r, err := New(Blackfriday)
	require.NoError(t, err)

	out, err := r.Render([]byte("```go\nfmt.Println(\"<x>\")\n```\n"))
	require.NoError(t, err)
	assert.Contains(t, out, `<code class="language-go">`)
	assert.Contains(t, out, "&lt;x&gt;")
}

func TestNew_UnknownEngine(t *testing.T) {
	_, err := New("pandoc")
	assert.Error(t, err)
}
