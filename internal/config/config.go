// Package config loads spikeview's YAML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/spikeview/internal/canon"
	"github.com/roach88/spikeview/internal/correlogram"
	"github.com/roach88/spikeview/internal/layout"
	"github.com/roach88/spikeview/internal/publish"
	"github.com/roach88/spikeview/internal/store"
	"github.com/roach88/spikeview/internal/views"
)

// Document kinds accepted in publish.document.
const (
	DocumentSortingLayout = "sorting_layout"
	DocumentComposite     = "composite"
)

// Config is the full configuration file.
//
//	store:
//	  backend: sqlite
//	  path: spikeview.db
//	correlogram:
//	  window_ms: 50
//	  bin_ms: 1
//	publish:
//	  views: [UnitsTable, RasterPlot]
type Config struct {
	Store       StoreConfig       `yaml:"store"`
	Correlogram CorrelogramConfig `yaml:"correlogram"`
	Waveforms   WaveformConfig    `yaml:"waveforms"`
	Publish     PublishConfig     `yaml:"publish"`
	Log         LogConfig         `yaml:"log"`
}

type StoreConfig struct {
	Backend string `yaml:"backend"`
	// Path is the database file (sqlite) or directory (leveldb).
	Path      string        `yaml:"path"`
	Timeout   time.Duration `yaml:"timeout"`
	CacheSize int           `yaml:"cache_size"`
}

type CorrelogramConfig struct {
	WindowMs float64 `yaml:"window_ms"`
	BinMs    float64 `yaml:"bin_ms"`
	Workers  int     `yaml:"workers"`
}

type WaveformConfig struct {
	SnippetBefore  int     `yaml:"snippet_before"`
	SnippetAfter   int     `yaml:"snippet_after"`
	NoiseWindowSec float64 `yaml:"noise_window_sec"`
}

type PublishConfig struct {
	Views         []string `yaml:"views"`
	Document      string   `yaml:"document"`
	DefaultHeight int      `yaml:"default_height"`
	// Layout is a layout tree whose viewId fields name view types.
	Layout map[string]any `yaml:"layout,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:   store.BackendSQLite,
			Path:      "spikeview.db",
			Timeout:   store.DefaultTimeout,
			CacheSize: 4096,
		},
		Correlogram: CorrelogramConfig{WindowMs: 50, BinMs: 1},
		Waveforms:   WaveformConfig{SnippetBefore: 20, SnippetAfter: 20, NoiseWindowSec: 60},
		Publish: PublishConfig{
			Views:         append([]string(nil), publish.DefaultViews...),
			Document:      DocumentSortingLayout,
			DefaultHeight: 400,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over Default and validates the result.
// Unknown fields are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	switch c.Store.Backend {
	case store.BackendSQLite, store.BackendLevelDB:
		if c.Store.Path == "" {
			add("store.path is required for backend %q", c.Store.Backend)
		}
	case store.BackendMemory:
	default:
		add("store.backend: unknown backend %q", c.Store.Backend)
	}
	if c.Store.CacheSize < 0 {
		add("store.cache_size must not be negative")
	}

	if c.Correlogram.WindowMs <= 0 {
		add("correlogram.window_ms must be positive")
	}
	if c.Correlogram.BinMs <= 0 {
		add("correlogram.bin_ms must be positive")
	}
	if c.Correlogram.WindowMs > 0 && c.Correlogram.BinMs > 0 {
		// The sampling rate comes from the recording; any positive rate
		// checks the window/bin ratio.
		p := correlogram.Params{
			WindowSize:   c.Correlogram.WindowMs / 1000,
			BinSize:      c.Correlogram.BinMs / 1000,
			SamplingRate: 1,
		}
		if err := p.Validate(); err != nil {
			add("correlogram: %w", err)
		}
	}
	if c.Correlogram.Workers < 0 {
		add("correlogram.workers must not be negative")
	}

	if c.Waveforms.SnippetBefore < 0 || c.Waveforms.SnippetAfter < 0 ||
		c.Waveforms.SnippetBefore+c.Waveforms.SnippetAfter == 0 {
		add("waveforms: snippet must cover at least one sample")
	}
	if c.Waveforms.NoiseWindowSec < 0 {
		add("waveforms.noise_window_sec must not be negative")
	}

	if len(c.Publish.Views) == 0 {
		add("publish.views must not be empty")
	}
	seen := make(map[string]bool)
	for _, v := range c.Publish.Views {
		if !views.Known(v) {
			add("publish.views: unknown view type %q (known: %s)", v, strings.Join(views.Types(), ", "))
		}
		if seen[v] {
			add("publish.views: %q listed twice", v)
		}
		seen[v] = true
	}
	switch c.Publish.Document {
	case DocumentSortingLayout, DocumentComposite:
	default:
		add("publish.document: unknown document %q", c.Publish.Document)
	}
	if c.Publish.DefaultHeight < 0 {
		add("publish.default_height must not be negative")
	}
	if c.Publish.Layout != nil {
		if _, err := c.LayoutTemplate(); err != nil {
			add("publish.layout: %w", err)
		}
	}

	if _, err := c.Log.level(); err != nil {
		add("log.level: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		add("log.format: unknown format %q", c.Log.Format)
	}

	return errors.Join(errs...)
}

// StoreOptions returns the options for store.Open.
func (c *Config) StoreOptions() store.Config {
	return store.Config{
		Backend:   c.Store.Backend,
		Path:      c.Store.Path,
		Timeout:   c.Store.Timeout,
		CacheSize: c.Store.CacheSize,
	}
}

// ViewSettings returns the view builder settings.
func (c *Config) ViewSettings() views.Settings {
	return views.Settings{
		WindowSec:      c.Correlogram.WindowMs / 1000,
		BinSec:         c.Correlogram.BinMs / 1000,
		Workers:        c.Correlogram.Workers,
		SnippetBefore:  c.Waveforms.SnippetBefore,
		SnippetAfter:   c.Waveforms.SnippetAfter,
		NoiseWindowSec: c.Waveforms.NoiseWindowSec,
	}
}

// LayoutTemplate decodes publish.layout, or returns nil when none is set.
// Every viewId must name a view type.
func (c *Config) LayoutTemplate() (layout.Node, error) {
	if c.Publish.Layout == nil {
		return nil, nil
	}
	v, err := canon.FromGo(c.Publish.Layout)
	if err != nil {
		return nil, err
	}
	root, err := layout.DecodeNode(v)
	if err != nil {
		return nil, err
	}
	if errs := layout.ValidateTree(root, views.Types()); len(errs) > 0 {
		return nil, &layout.ValidationErrors{Errors: errs}
	}
	return root, nil
}

// PublishOptions returns the publisher options. logger may be nil.
func (c *Config) PublishOptions(logger *slog.Logger) (publish.Options, error) {
	tmpl, err := c.LayoutTemplate()
	if err != nil {
		return publish.Options{}, err
	}
	return publish.Options{
		Views:         c.Publish.Views,
		Layout:        tmpl,
		Composite:     c.Publish.Document == DocumentComposite,
		DefaultHeight: c.Publish.DefaultHeight,
		Settings:      c.ViewSettings(),
		Logger:        logger,
	}, nil
}

func (l LogConfig) level() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(l.Level))
	return level, err
}

// NewLogger returns a logger writing to w. verbose forces debug level.
func (l LogConfig) NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level, err := l.level()
	if err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
