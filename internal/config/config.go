// Package config loads blag's build configuration from a YAML file and
// fills in defaults.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/blagsite/blag/internal/blagerr"
	"github.com/blagsite/blag/internal/markdown"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultInDir        = "."
	DefaultTemplateName = "template.html"
	DefaultTagDir       = "tags"
	DefaultAddr         = "localhost:9999"
)

// Config describes one build.
type Config struct {
	InDir  string `yaml:"in_dir"`
	OutDir string `yaml:"out_dir"`

	// Template renders posts. Defaults to template.html in InDir.
	Template string `yaml:"template"`
	// TagTemplate enables tag pages; HubTemplate falls back to it.
	TagTemplate string `yaml:"tag_template"`
	HubTemplate string `yaml:"hub_template"`
	// TagDir is where tag pages go, relative to OutDir.
	TagDir string `yaml:"tag_dir"`

	Ignore        []string `yaml:"ignore"`
	IncludeHidden bool     `yaml:"include_hidden"`
	Markdown      string   `yaml:"markdown"`

	Feed Feed `yaml:"feed"`

	MetricsFile string `yaml:"metrics_file"`
}

// Feed configures the per-tag Atom feeds. Feeds are written when BaseURL is
// set and tag pages are enabled.
type Feed struct {
	BaseURL   string `yaml:"base_url"`
	SiteTitle string `yaml:"site_title"`
	Author    string `yaml:"author"`
	AuthorURI string `yaml:"author_uri"`
}

// Enabled reports whether feeds should be written.
func (f Feed) Enabled() bool { return f.BaseURL != "" }

// Load reads the YAML file at fileName. Relative paths in the file are taken
// relative to the directory containing it.
func Load(fileName string) (*Config, error) {
	raw, err := os.ReadFile(fileName)
	if err != nil {
		return nil, blagerr.Wrap(err, blagerr.KindConfig, "read config").WithContext("path", fileName).Build()
	}

	var conf Config
	if err := yaml.Unmarshal(raw, &conf); err != nil {
		return nil, blagerr.Wrap(err, blagerr.KindConfig, "decode config").WithContext("path", fileName).Build()
	}

	baseDir := filepath.Dir(fileName)
	if conf.InDir == "" {
		conf.InDir = baseDir
	}
	conf.InDir = normalizePath(conf.InDir, baseDir)
	conf.OutDir = normalizePath(conf.OutDir, baseDir)
	conf.Template = normalizePath(conf.Template, baseDir)
	conf.TagTemplate = normalizePath(conf.TagTemplate, baseDir)
	conf.HubTemplate = normalizePath(conf.HubTemplate, baseDir)
	conf.MetricsFile = normalizePath(conf.MetricsFile, baseDir)

	return &conf, nil
}

// Merge overrides c with the non-zero fields of o.
func (c *Config) Merge(o Config) {
	setString(&c.InDir, o.InDir)
	setString(&c.OutDir, o.OutDir)
	setString(&c.Template, o.Template)
	setString(&c.TagTemplate, o.TagTemplate)
	setString(&c.HubTemplate, o.HubTemplate)
	setString(&c.TagDir, o.TagDir)
	setString(&c.Markdown, o.Markdown)
	setString(&c.MetricsFile, o.MetricsFile)
	setString(&c.Feed.BaseURL, o.Feed.BaseURL)
	setString(&c.Feed.SiteTitle, o.Feed.SiteTitle)
	setString(&c.Feed.Author, o.Feed.Author)
	setString(&c.Feed.AuthorURI, o.Feed.AuthorURI)
	if len(o.Ignore) > 0 {
		c.Ignore = append(c.Ignore, o.Ignore...)
	}
	if o.IncludeHidden {
		c.IncludeHidden = true
	}
}

// Normalize fills in defaults.
func (c *Config) Normalize() {
	if c.InDir == "" {
		c.InDir = DefaultInDir
	}
	if c.Template == "" {
		c.Template = filepath.Join(c.InDir, DefaultTemplateName)
	}
	if c.TagDir == "" {
		c.TagDir = DefaultTagDir
	}
	if c.Markdown == "" {
		c.Markdown = markdown.Blackfriday
	}
	if c.Feed.SiteTitle == "" {
		c.Feed.SiteTitle = filepath.Base(c.OutDir)
	}
}

// Validate checks a normalized configuration.
func (c *Config) Validate() error {
	if c.OutDir == "" {
		return blagerr.New(blagerr.KindConfig, "no output directory given").Build()
	}
	if filepath.IsAbs(c.TagDir) || !filepath.IsLocal(c.TagDir) {
		return blagerr.New(blagerr.KindConfig, "tag directory must be relative to the output directory").
			WithContext("tag_dir", c.TagDir).
			Build()
	}
	if _, err := markdown.New(c.Markdown); err != nil {
		return blagerr.Wrap(err, blagerr.KindConfig, "invalid markdown engine").Build()
	}
	if c.HubTemplate != "" && c.TagTemplate == "" {
		return blagerr.New(blagerr.KindConfig, "hub template given without a tag template").Build()
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf("in=%s out=%s template=%s tags=%s", c.InDir, c.OutDir, c.Template, c.TagDir)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func normalizePath(path, baseDir string) string {
	if path != "" && !filepath.IsAbs(path) {
		absPath := filepath.Join(baseDir, path)
		slog.Debug("Normalizing path", "path", path, "normalized", absPath)
		return absPath
	}
	return path
}
