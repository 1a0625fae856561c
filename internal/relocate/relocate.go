// Package relocate maps source files to their place in the output tree.
package relocate

import (
	"path/filepath"
	"strings"
)

// OutputExt is the extension of rendered posts.
const OutputExt = ".html"

// Options configures a Relocator.
type Options struct {
	SourceRoot string
	OutputRoot string
	// Ignore lists files never included. Relative entries are taken relative
	// to SourceRoot.
	Ignore        []string
	IncludeHidden bool
}

// Relocator decides which source files are included and where they go.
type Relocator struct {
	src, out      string
	srcAbs        string
	ignored       map[string]struct{}
	includeHidden bool
}

// New resolves the roots and the ignore list. Ignore entries that cannot be
// resolved are skipped.
func New(opts Options) *Relocator {
	r := &Relocator{
		src:           resolve(opts.SourceRoot),
		srcAbs:        absolute(opts.SourceRoot),
		out:           resolve(opts.OutputRoot),
		ignored:       make(map[string]struct{}, len(opts.Ignore)),
		includeHidden: opts.IncludeHidden,
	}
	for _, entry := range opts.Ignore {
		if entry == "" {
			continue
		}
		if !filepath.IsAbs(entry) {
			entry = filepath.Join(r.src, entry)
		}
		resolved, err := filepath.EvalSymlinks(entry)
		if err != nil {
			continue
		}
		r.ignored[resolved] = struct{}{}
	}
	return r
}

// SourceRoot returns the resolved source root.
func (r *Relocator) SourceRoot() string { return r.src }

// OutputRoot returns the resolved output root.
func (r *Relocator) OutputRoot() string { return r.out }

// Relocate returns the destination of the source file at path, or false if
// the file is excluded. The destination follows where path sits in the
// source tree; a symlink keeps its own name. Output containment and the
// ignore list are checked against the resolved file as well.
func (r *Relocator) Relocate(path string) (string, bool) {
	lex := absolute(path)
	abs := resolve(path)
	if Within(r.out, abs) || Within(r.out, lex) {
		return "", false
	}

	rel, ok := r.relative(lex)
	if !ok {
		return "", false
	}
	parts := make([]string, 0, 4)
	for _, c := range strings.Split(rel, string(filepath.Separator)) {
		if c == "" || c == "." || c == ".." {
			continue
		}
		if !r.includeHidden && strings.HasPrefix(c, ".") {
			return "", false
		}
		parts = append(parts, c)
	}
	if len(parts) == 0 {
		return "", false
	}

	if r.isIgnored(abs) || r.isIgnored(lex) {
		return "", false
	}

	return filepath.Join(append([]string{r.out}, parts...)...), true
}

// relative returns lex relative to the resolved source root, or to the root
// as given when lex lies below that one instead.
func (r *Relocator) relative(lex string) (string, bool) {
	var first string
	for i, root := range []string{r.src, r.srcAbs} {
		rel, err := filepath.Rel(root, lex)
		if err != nil {
			continue
		}
		if !escapes(rel) {
			return rel, true
		}
		if i == 0 {
			first = rel
		}
	}
	return first, first != ""
}

func (r *Relocator) isIgnored(p string) bool {
	_, ok := r.ignored[p]
	return ok
}

func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// PostDest replaces the extension of dest with OutputExt.
func PostDest(dest string) string {
	dir, base := filepath.Split(dest)
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return dir + base + OutputExt
}

// Within reports whether path is root or lies below it.
func Within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return !escapes(rel)
}

func absolute(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}

func resolve(p string) string {
	abs := absolute(p)
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
