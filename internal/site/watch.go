package site

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/blagsite/blag/internal/relocate"
	"github.com/radovskyb/watcher"
)

// Watch rebuilds the site whenever something changes in the source
// directory or one of the templates, until ctx is done. Failed rebuilds are
// logged and do not stop watching.
func (s *Site) Watch(ctx context.Context, interval time.Duration) error {
	in, err := filepath.Abs(s.conf.InDir)
	if err != nil {
		return err
	}
	out, err := filepath.Abs(s.conf.OutDir)
	if err != nil {
		return err
	}
	slog.Info("Watching for changes", "path", in)

	w := watcher.New()
	w.SetMaxEvents(1)
	w.IgnoreHiddenFiles(!s.conf.IncludeHidden)

	if err := w.AddRecursive(in); err != nil {
		return err
	}
	for _, t := range []string{s.conf.Template, s.conf.TagTemplate, s.conf.HubTemplate} {
		if t == "" {
			continue
		}
		if abs, err := filepath.Abs(t); err == nil && !relocate.Within(in, abs) {
			if err := w.Add(abs); err != nil {
				return err
			}
		}
	}
	if relocate.Within(in, out) {
		if err := w.Ignore(out); err != nil {
			return err
		}
	}
	if s.conf.MetricsFile != "" {
		if abs, err := filepath.Abs(s.conf.MetricsFile); err == nil && relocate.Within(in, abs) {
			_ = w.Ignore(abs)
		}
	}

	go func() {
		w.Wait()
		for {
			select {
			case ev := <-w.Event:
				slog.Debug("Change detected", "path", ev.Path, "op", ev.Op.String())
				if _, err := s.Build(); err != nil {
					slog.Error("Rebuild failed", "error", err)
				}
			case err := <-w.Error:
				slog.Warn("Watcher error", "error", err)
			case <-ctx.Done():
				w.Close()
				return
			case <-w.Closed:
				return
			}
		}
	}()

	return w.Start(interval)
}

// Serve serves dir over HTTP on addr until ctx is done.
func Serve(ctx context.Context, dir, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.FileServer(http.Dir(dir)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Serving site", "dir", dir, "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
