// Package metrics counts what a build produced. The counters can be written
// as a Prometheus text file for the node exporter textfile collector.
package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// Outcome labels of the files_total counter.
const (
	FilePost     = "post"
	FileCopied   = "copied"
	FileExcluded = "excluded"
)

// Build holds the counters of one process.
type Build struct {
	reg           *prom.Registry
	files         *prom.CounterVec
	tagPages      prom.Counter
	feeds         prom.Counter
	buildDuration prom.Gauge
	lastSuccess   prom.Gauge
	failures      prom.Counter
}

// New creates and registers the counters on reg, or on a fresh registry when
// reg is nil.
func New(reg *prom.Registry) *Build {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	b := &Build{
		reg: reg,
		files: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "blag",
			Name:      "files_total",
			Help:      "Source files seen by builds, by outcome",
		}, []string{"outcome"}),
		tagPages: prom.NewCounter(prom.CounterOpts{
			Namespace: "blag",
			Name:      "tag_pages_total",
			Help:      "Tag and hub pages written",
		}),
		feeds: prom.NewCounter(prom.CounterOpts{
			Namespace: "blag",
			Name:      "feeds_total",
			Help:      "Atom feeds written",
		}),
		buildDuration: prom.NewGauge(prom.GaugeOpts{
			Namespace: "blag",
			Name:      "build_duration_seconds",
			Help:      "Duration of the last build",
		}),
		lastSuccess: prom.NewGauge(prom.GaugeOpts{
			Namespace: "blag",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful build",
		}),
		failures: prom.NewCounter(prom.CounterOpts{
			Namespace: "blag",
			Name:      "build_failures_total",
			Help:      "Builds that aborted with an error",
		}),
	}
	reg.MustRegister(b.files, b.tagPages, b.feeds, b.buildDuration, b.lastSuccess, b.failures)
	return b
}

func (b *Build) IncFile(outcome string) { b.files.WithLabelValues(outcome).Inc() }

func (b *Build) AddTagPages(n int) { b.tagPages.Add(float64(n)) }

func (b *Build) AddFeeds(n int) { b.feeds.Add(float64(n)) }

// ObserveBuild records the duration and outcome of a build finished at end.
func (b *Build) ObserveBuild(d time.Duration, end time.Time, err error) {
	b.buildDuration.Set(d.Seconds())
	if err != nil {
		b.failures.Inc()
		return
	}
	b.lastSuccess.Set(float64(end.Unix()))
}

// WriteTextfile writes the current values to path in the Prometheus text
// format.
func (b *Build) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, b.reg)
}
