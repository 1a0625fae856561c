// Package blogfile classifies source files into posts and passthrough files.
package blogfile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/blagsite/blag/internal/blagerr"
	"github.com/blagsite/blag/internal/post"
)

// PostExtensions are the extensions, without the dot, of files parsed as
// posts. Matching is case-sensitive.
var PostExtensions = []string{"md", "markdown"}

// BlogFile is a classified source file. It is either a *Post or an *Other.
type BlogFile interface {
	// FilePath is where the unit currently points: the source path after
	// classification, the destination after WithPath.
	FilePath() string
	// WithPath returns the same unit pointing at p.
	WithPath(p string) BlogFile

	blogFile()
}

// Post is a source file parsed as a post.
type Post struct {
	Path string
	Post post.Post
}

// Other is any other file. Its bytes are copied from Source unchanged.
type Other struct {
	Path   string
	Source string
}

func (p *Post) FilePath() string { return p.Path }

func (p *Post) WithPath(path string) BlogFile { return &Post{Path: path, Post: p.Post} }

func (*Post) blogFile() {}

func (o *Other) FilePath() string { return o.Path }

func (o *Other) WithPath(path string) BlogFile { return &Other{Path: path, Source: o.Source} }

func (*Other) blogFile() {}

// Extension returns the extension of the last element of path without the
// leading dot. A leading dot of a dotfile does not start an extension, so
// ".md" has none.
func Extension(path string) string {
	base := filepath.Base(path)
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return ""
	}
	return base[i+1:]
}

// IsPostExt reports whether ext is one of PostExtensions.
func IsPostExt(ext string) bool {
	for _, e := range PostExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Classify reads path if it has a post extension and returns a *Post, or
// returns an *Other without looking at the content.
func Classify(path string) (BlogFile, error) {
	if !IsPostExt(Extension(path)) {
		return &Other{Path: path, Source: path}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, blagerr.Wrap(err, blagerr.KindIO, "open post").WithContext("path", path).Build()
	}
	defer f.Close()

	p, err := post.Read(f)
	if err != nil {
		return nil, blagerr.Wrap(err, blagerr.KindOf(err), "classify post").WithContext("path", path).Build()
	}
	return &Post{Path: path, Post: p}, nil
}
