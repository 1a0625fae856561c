// Package tags accumulates compiled posts by tag and emits the tag pages,
// the "all tags" hub page and per-tag Atom feeds.
package tags

import (
	"bytes"
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/blagsite/blag/internal/post"
)

// CompiledPost is a rendered post and the URL it is deployed at, relative to
// the output root.
type CompiledPost struct {
	Post post.Post
	Path string
}

// Values is the template context of a compiled post.
func (c CompiledPost) Values() map[string]any {
	return map[string]any{
		"path": c.Path,
		"post": c.Post.Values(),
	}
}

// Index maps tag names to the posts carrying them, in the order the posts
// were added. Tags are kept in first-seen order.
type Index struct {
	order []string
	posts map[string][]CompiledPost
}

func NewIndex() *Index {
	return &Index{posts: make(map[string][]CompiledPost)}
}

// Add records cp under each of its tags. A tag repeated in the front matter
// lists the post once.
func (ix *Index) Add(cp CompiledPost) {
	seen := make(map[string]bool, len(cp.Post.Front.Tags))
	for _, tag := range cp.Post.Front.Tags {
		if seen[tag] {
			continue
		}
		seen[tag] = true
		if _, ok := ix.posts[tag]; !ok {
			ix.order = append(ix.order, tag)
		}
		ix.posts[tag] = append(ix.posts[tag], cp)
	}
}

// Tags returns the tags in first-seen order.
func (ix *Index) Tags() []string { return slices.Clone(ix.order) }

// Posts returns the posts tagged tag.
func (ix *Index) Posts(tag string) []CompiledPost { return slices.Clone(ix.posts[tag]) }

// Len returns the number of distinct tags.
func (ix *Index) Len() int { return len(ix.order) }

// ByFrequency returns the tags ordered by number of posts, most first, then
// by the newest post, then by name.
func (ix *Index) ByFrequency() []string {
	out := ix.Tags()
	slices.SortStableFunc(out, func(a, b string) int {
		if c := cmp.Compare(len(ix.posts[b]), len(ix.posts[a])); c != 0 {
			return c
		}
		if c := latestDate(ix.posts[b]).Compare(latestDate(ix.posts[a])); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return out
}

func (ix *Index) String() string {
	b := new(bytes.Buffer)
	for _, tag := range ix.order {
		b.WriteString(tag)
		b.WriteString(": ")
		for i, cp := range ix.posts[tag] {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(cp.Post.Front.Title)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func latestDate(ps []CompiledPost) time.Time {
	var t time.Time
	for _, p := range ps {
		if d := p.Post.Front.Date; d != nil && d.After(t) {
			t = *d
		}
	}
	return t
}
