package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/blagsite/blag/internal/config"
	"github.com/blagsite/blag/internal/metrics"
	"github.com/blagsite/blag/internal/site"
	"golang.org/x/sync/errgroup"
)

const watchInterval = 200 * time.Millisecond

// CLI flags override values from the configuration file.
type CLI struct {
	Config string `short:"c" help:"YAML configuration file; relative paths in it are taken relative to the file"`

	InDir       string   `short:"i" name:"in-dir" help:"Directory to read posts and files from (default .)"`
	OutDir      string   `short:"o" name:"out-dir" help:"Directory to write the site to"`
	Template    string   `short:"t" help:"Post template (default <in-dir>/template.html)"`
	TagTemplate string   `name:"tag-template" help:"Tag page template; enables tag pages"`
	HubTemplate string   `name:"hub-template" help:"Template of the page listing all tags (default: the tag template)"`
	TagDir      string   `name:"tag-dir" help:"Tag page directory relative to the output directory (default tags)"`
	Ignore      []string `short:"I" help:"Path to leave out of the site; repeatable"`
	ReadHidden  bool     `short:"a" name:"read-hidden" help:"Include files and directories starting with a dot"`
	Markdown    string   `help:"Markdown engine: blackfriday (default) or goldmark"`
	MetricsFile string   `name:"metrics-file" help:"Write build counters to this Prometheus textfile"`

	Watch bool   `help:"Keep running and rebuild the site on changes"`
	Serve bool   `help:"Serve the output directory over HTTP"`
	Addr  string `help:"Address to serve on" default:"${default_addr}"`

	Verbose bool `short:"v" help:"Enable verbose logging"`
}

func main() {
	var cli CLI
	kong.Parse(&cli, append(options(), kong.UsageOnError())...)

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(cli); err != nil {
		slog.Error("Build failed", "error", err)
		os.Exit(1)
	}
}

func options() []kong.Option {
	return []kong.Option{
		kong.Name("blag"),
		kong.Description("Compile a directory of Markdown posts into a static site."),
		kong.Vars{"default_addr": config.DefaultAddr},
	}
}

func run(cli CLI) error {
	conf, err := cli.config()
	if err != nil {
		return err
	}
	slog.Debug("Configuration", "config", conf.String())

	s := site.New(conf, metrics.New(nil))
	if _, err := s.Build(); err != nil {
		return err
	}
	if !cli.Watch && !cli.Serve {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	if cli.Watch {
		g.Go(func() error { return s.Watch(ctx, watchInterval) })
	}
	if cli.Serve {
		g.Go(func() error { return site.Serve(ctx, conf.OutDir, cli.Addr) })
	}
	return g.Wait()
}

// config loads the configuration file, if any, and applies the flags on top.
func (cli CLI) config() (*config.Config, error) {
	conf := &config.Config{}
	if cli.Config != "" {
		loaded, err := config.Load(cli.Config)
		if err != nil {
			return nil, err
		}
		conf = loaded
	}

	conf.Merge(config.Config{
		InDir:         cli.InDir,
		OutDir:        cli.OutDir,
		Template:      cli.Template,
		TagTemplate:   cli.TagTemplate,
		HubTemplate:   cli.HubTemplate,
		TagDir:        cli.TagDir,
		Ignore:        cli.Ignore,
		IncludeHidden: cli.ReadHidden,
		Markdown:      cli.Markdown,
		MetricsFile:   cli.MetricsFile,
	})
	conf.Normalize()
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return conf, nil
}
