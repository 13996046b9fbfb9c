package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/spikeview/internal/canon"
	"github.com/roach88/spikeview/internal/layout"
	"github.com/roach88/spikeview/internal/recording"
	"github.com/roach88/spikeview/internal/store"
	"github.com/roach88/spikeview/internal/views"
)

// ErrNoViews is returned when no view could be built.
var ErrNoViews = errors.New("no views were published")

// Store is the content-addressed store a run writes to.
type Store interface {
	Put(ctx context.Context, v canon.Value) (canon.Address, error)
	PutBytes(ctx context.Context, data []byte) (canon.Address, error)
}

// Input is the data to publish. Recording may be nil, in which case views
// that read traces are skipped.
type Input struct {
	Sorting     recording.Sorting
	Recording   recording.Recording
	DurationSec float64
}

// Options configures a Publisher.
type Options struct {
	// Views lists the view types to build; nil means DefaultViews.
	Views []string
	// Layout arranges views by type; nil means DefaultLayout. Ignored for
	// composite documents.
	Layout layout.Node
	// Composite publishes a flat Composite document instead of a
	// SortingLayout.
	Composite     bool
	DefaultHeight int
	// Settings defaults to views.DefaultSettings when zero.
	Settings views.Settings
	Logger   *slog.Logger
	// RunIDs defaults to UUIDv7Generator.
	RunIDs RunIDGenerator
}

// ViewFailure records a view that could not be built or stored.
type ViewFailure struct {
	ViewID   string
	ViewType string
	Err      error
}

func (f ViewFailure) Error() string {
	return fmt.Sprintf("view %s (%s): %v", f.ViewID, f.ViewType, f.Err)
}

func (f ViewFailure) Unwrap() error { return f.Err }

// Result describes a finished run.
type Result struct {
	RunID    string
	Document *layout.Document
	Address  canon.Address
	Failures []ViewFailure
	// Skipped lists views left out because they need a recording.
	Skipped  []string
	Duration time.Duration
}

// Publisher builds and stores documents.
type Publisher struct {
	store  Store
	opts   Options
	logger *slog.Logger
}

// New returns a Publisher writing to s.
func New(s Store, opts Options) (*Publisher, error) {
	if s == nil {
		return nil, errors.New("publish: store is required")
	}
	for _, typ := range opts.Views {
		if !views.Known(typ) {
			return nil, fmt.Errorf("publish: unknown view type %q", typ)
		}
	}
	if opts.Views == nil {
		opts.Views = DefaultViews
	}
	if opts.Layout == nil {
		opts.Layout = DefaultLayout()
	}
	if opts.Settings == (views.Settings{}) {
		opts.Settings = views.DefaultSettings()
	}
	if opts.RunIDs == nil {
		opts.RunIDs = UUIDv7Generator{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{store: s, opts: opts, logger: logger}, nil
}

// Publish builds every enabled view, stores it, and stores the resulting
// document.
//
// A view that fails to build is reported in Result.Failures and pruned
// from the layout. A store failure aborts the run with an error that
// satisfies store.IsUnavailable.
func (p *Publisher) Publish(ctx context.Context, in Input) (*Result, error) {
	if in.Sorting == nil {
		return nil, errors.New("publish: sorting is required")
	}
	runID := p.opts.RunIDs.Generate()
	start := time.Now()
	logger := p.logger.With("run_id", runID)
	logger.Info("publish starting", "views", len(p.opts.Views), "units", len(in.Sorting.UnitIDs()))

	res := &Result{RunID: runID}
	src := views.Source{Sorting: in.Sorting, Recording: in.Recording, DurationSec: in.DurationSec}
	builder := layout.NewBuilder(p.store)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, typ := range p.opts.Views {
		typ := typ
		if views.NeedsRecording(typ) && in.Recording == nil {
			logger.Info("view skipped: no recording", "view_id", typ)
			res.Skipped = append(res.Skipped, typ)
			continue
		}
		g.Go(func() error {
			entry, err := p.buildView(gctx, builder, typ, src)
			switch {
			case err == nil:
				logger.Info("view published", "view_id", typ, "address", entry.DataURI.String())
				return nil
			case store.IsUnavailable(err), gctx.Err() != nil:
				return err
			}
			logger.Warn("view failed", "view_id", typ, "error", err)
			mu.Lock()
			res.Failures = append(res.Failures, ViewFailure{ViewID: typ, ViewType: typ, Err: err})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("publish aborted", "error", err)
		return nil, err
	}
	sort.Slice(res.Failures, func(i, j int) bool { return res.Failures[i].ViewID < res.Failures[j].ViewID })

	if len(builder.IDs()) == 0 {
		return nil, ErrNoViews
	}

	doc, err := p.document(builder)
	if err != nil {
		return nil, err
	}
	data, err := doc.MarshalCanonical()
	if err != nil {
		return nil, fmt.Errorf("publish: encode document: %w", err)
	}
	if errs := layout.CheckSchema(data); len(errs) > 0 {
		return nil, &layout.ValidationErrors{Errors: errs}
	}
	addr, err := p.store.PutBytes(ctx, data)
	if err != nil {
		logger.Error("publish aborted", "error", err)
		return nil, err
	}

	res.Document = doc
	res.Address = addr
	res.Duration = time.Since(start)
	logger.Info("publish finished",
		"address", addr.String(),
		"views", len(doc.Views),
		"failures", len(res.Failures),
		"duration", res.Duration,
	)
	return res, nil
}

func (p *Publisher) buildView(ctx context.Context, b *layout.Builder, typ string, src views.Source) (layout.ViewEntry, error) {
	v, err := views.Build(ctx, typ, src, p.opts.Settings)
	if err != nil {
		return layout.ViewEntry{}, err
	}
	return b.AddView(ctx, typ, v)
}

func (p *Publisher) document(b *layout.Builder) (*layout.Document, error) {
	if p.opts.Composite {
		var order []string
		for _, typ := range p.opts.Views {
			if b.Has(typ) {
				order = append(order, typ)
			}
		}
		return b.BuildComposite(p.opts.DefaultHeight, order...)
	}

	root := layout.Prune(p.opts.Layout, b.Has)
	if root == nil {
		return nil, fmt.Errorf("publish: layout references none of the published views %v", b.IDs())
	}
	return b.Build(root)
}
