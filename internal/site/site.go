// Package site drives a build: it walks the source tree, renders posts, copies
// everything else and emits the tag pages.
package site

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/blagsite/blag/internal/blagerr"
	"github.com/blagsite/blag/internal/blogfile"
	"github.com/blagsite/blag/internal/compiler"
	"github.com/blagsite/blag/internal/config"
	"github.com/blagsite/blag/internal/fsutil"
	"github.com/blagsite/blag/internal/markdown"
	"github.com/blagsite/blag/internal/metrics"
	"github.com/blagsite/blag/internal/relocate"
	"github.com/blagsite/blag/internal/render"
	"github.com/blagsite/blag/internal/tags"
)

// Site builds one configured site. Builds run one at a time.
type Site struct {
	conf    *config.Config
	metrics *metrics.Build
	writer  fsutil.Writer
}

// Result summarizes a build.
type Result struct {
	Posts    int
	Copied   int
	Excluded int
	TagPages int
	Feeds    int
	Tags     int
}

// New returns a Site for a normalized, validated configuration. m may be
// nil.
func New(conf *config.Config, m *metrics.Build) *Site {
	if m == nil {
		m = metrics.New(nil)
	}
	return &Site{conf: conf, metrics: m}
}

// Build runs a full build. Any error aborts it; files written before the
// error are left in place.
func (s *Site) Build() (*Result, error) {
	start := time.Now()
	res, err := s.build()
	end := time.Now()
	s.metrics.ObserveBuild(end.Sub(start), end, err)

	if s.conf.MetricsFile != "" {
		if werr := s.metrics.WriteTextfile(s.conf.MetricsFile); werr != nil {
			slog.Warn("Failed to write metrics file", "path", s.conf.MetricsFile, "error", werr)
		}
	}
	if err != nil {
		return nil, err
	}

	slog.Info("Site built",
		"posts", res.Posts,
		"copied", res.Copied,
		"excluded", res.Excluded,
		"tags", res.Tags,
		"tag_pages", res.TagPages,
		"feeds", res.Feeds,
		"duration", end.Sub(start).Round(time.Millisecond))
	return res, nil
}

// build holds everything set up before the first file is touched.
type build struct {
	md       markdown.Renderer
	compiler *compiler.Compiler
	tagTpl   *render.Template
	hubTpl   *render.Template
	reloc    *relocate.Relocator
}

func (s *Site) setup() (*build, error) {
	conf := s.conf
	md, err := markdown.New(conf.Markdown)
	if err != nil {
		return nil, blagerr.Wrap(err, blagerr.KindConfig, "markdown engine").Build()
	}

	source, err := readTemplate(conf.Template)
	if err != nil {
		return nil, err
	}
	comp, err := compiler.New(source, md, tags.NewIndex())
	if err != nil {
		return nil, blagerr.Wrap(err, blagerr.KindRender, "post template").WithContext("path", conf.Template).Build()
	}

	b := &build{md: md, compiler: comp}
	if conf.TagTemplate != "" {
		if b.tagTpl, err = loadTemplate("tag", conf.TagTemplate, md); err != nil {
			return nil, err
		}
	}
	if conf.HubTemplate != "" {
		if b.hubTpl, err = loadTemplate("hub", conf.HubTemplate, md); err != nil {
			return nil, err
		}
	}

	if err := fsutil.EnsureDir(conf.OutDir); err != nil {
		return nil, blagerr.Wrap(err, blagerr.KindConfig, "output directory").WithContext("path", conf.OutDir).Build()
	}

	ignore := make([]string, 0, len(conf.Ignore)+3)
	ignore = append(ignore, conf.Ignore...)
	for _, t := range []string{conf.Template, conf.TagTemplate, conf.HubTemplate} {
		if t == "" {
			continue
		}
		if abs, err := filepath.Abs(t); err == nil {
			ignore = append(ignore, abs)
		}
	}
	b.reloc = relocate.New(relocate.Options{
		SourceRoot:    conf.InDir,
		OutputRoot:    conf.OutDir,
		Ignore:        ignore,
		IncludeHidden: conf.IncludeHidden,
	})
	return b, nil
}

func (s *Site) build() (*Result, error) {
	b, err := s.setup()
	if err != nil {
		return nil, err
	}
	out := b.reloc.OutputRoot()
	slog.Info("Writing site", "in", b.reloc.SourceRoot(), "out", out)

	files, err := fsutil.Files(b.reloc.SourceRoot())
	if err != nil {
		return nil, blagerr.Wrap(err, blagerr.KindIO, "walk source directory").WithContext("path", s.conf.InDir).Build()
	}

	res := &Result{}
	claimed := make(map[string]string, len(files))
	for _, f := range files {
		dest, ok := b.reloc.Relocate(f)
		if !ok {
			slog.Debug("Excluded", "path", f)
			res.Excluded++
			s.metrics.IncFile(metrics.FileExcluded)
			continue
		}

		bf, err := blogfile.Classify(f)
		if err != nil {
			return nil, err
		}

		switch unit := bf.WithPath(dest).(type) {
		case *blogfile.Post:
			dest := relocate.PostDest(unit.Path)
			if err := claim(claimed, dest, f); err != nil {
				return nil, err
			}
			if err := s.writePost(b, out, unit, dest); err != nil {
				return nil, err
			}
			res.Posts++
			s.metrics.IncFile(metrics.FilePost)
		case *blogfile.Other:
			if err := claim(claimed, unit.Path, f); err != nil {
				return nil, err
			}
			if err := s.writer.CopyFile(unit.Path, unit.Source); err != nil {
				return nil, blagerr.Wrap(err, blagerr.KindIO, "copy file").
					WithContext("path", unit.Source).
					WithContext("dest", unit.Path).
					Build()
			}
			slog.Debug("Copied", "path", unit.Source, "dest", unit.Path)
			res.Copied++
			s.metrics.IncFile(metrics.FileCopied)
		}
	}

	if err := s.writeTags(b, out, res); err != nil {
		return nil, err
	}
	return res, nil
}

// claim records that source writes dest. Two sources writing the same
// destination is an error.
func claim(claimed map[string]string, dest, source string) error {
	if prev, ok := claimed[dest]; ok {
		return blagerr.New(blagerr.KindConflict, "two source files map to the same output").
			WithContext("path", source).
			WithContext("other", prev).
			WithContext("dest", dest).
			Build()
	}
	claimed[dest] = source
	return nil
}

func (s *Site) writePost(b *build, out string, unit *blogfile.Post, dest string) error {
	rel, err := filepath.Rel(out, dest)
	if err != nil {
		return blagerr.Wrap(err, blagerr.KindIO, "deployed url").WithContext("path", dest).Build()
	}

	html, err := b.compiler.Render(unit.Post, filepath.ToSlash(rel))
	if err != nil {
		return blagerr.Wrap(err, blagerr.KindRender, "compile post").WithContext("path", unit.Path).Build()
	}
	if err := s.writer.WriteString(dest, html); err != nil {
		return blagerr.Wrap(err, blagerr.KindIO, "write post").WithContext("path", dest).Build()
	}
	slog.Debug("Compiled", "dest", dest, "post", unit.Post)
	return nil
}

func (s *Site) writeTags(b *build, out string, res *Result) error {
	index := b.compiler.Index()
	res.Tags = index.Len()
	slog.Debug("Tag index", "index", index)
	if b.tagTpl == nil {
		return nil
	}

	dir := filepath.Join(out, s.conf.TagDir)
	prefix := filepath.ToSlash(filepath.Clean(s.conf.TagDir))
	gen := &tags.Generator{
		Dir:       dir,
		URLPrefix: prefix,
		Tag:       b.tagTpl,
		Hub:       b.hubTpl,
		Writer:    s.writer,
	}
	n, err := gen.Emit(index)
	res.TagPages = n
	s.metrics.AddTagPages(n)
	if err != nil {
		return err
	}

	if !s.conf.Feed.Enabled() {
		return nil
	}
	feeds := &tags.FeedWriter{
		BaseURL:   s.conf.Feed.BaseURL,
		SiteTitle: s.conf.Feed.SiteTitle,
		Author:    s.conf.Feed.Author,
		AuthorURI: s.conf.Feed.AuthorURI,
		Dir:       dir,
		URLPrefix: prefix,
		Markdown:  b.md,
		Writer:    s.writer,
	}
	n, err = feeds.Write(index)
	res.Feeds = n
	s.metrics.AddFeeds(n)
	return err
}

func readTemplate(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", blagerr.Wrap(err, blagerr.KindIO, "read template").WithContext("path", path).Build()
	}
	return string(b), nil
}

func loadTemplate(name, path string, md markdown.Renderer) (*render.Template, error) {
	source, err := readTemplate(path)
	if err != nil {
		return nil, err
	}
	t, err := render.New(name, source, md)
	if err != nil {
		return nil, blagerr.Wrap(err, blagerr.KindRender, "tag template").WithContext("path", path).Build()
	}
	return t, nil
}
