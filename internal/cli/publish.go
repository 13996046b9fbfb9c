package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roach88/spikeview/internal/config"
	"github.com/roach88/spikeview/internal/publish"
	"github.com/roach88/spikeview/internal/recording"
	"github.com/roach88/spikeview/internal/store"
)

// PublishOptions holds flags for the publish command.
type PublishOptions struct {
	*RootOptions
	SortingFile string
	Database    string
	ToyUnits    int
	ToyChannels int
	ToyDuration float64
	Seed        int64
	Retries     uint64
}

// PublishSummary is the publish command's result payload.
type PublishSummary struct {
	RunID        string        `json:"run_id"`
	Address      string        `json:"address"`
	Kind         string        `json:"kind"`
	Views        []ViewSummary `json:"views"`
	Skipped      []string      `json:"skipped,omitempty"`
	Failures     []ViewSummary `json:"failures,omitempty"`
	NewObjects   int64         `json:"new_objects"`
	Deduplicated int64         `json:"deduplicated"`
	BytesWritten int64         `json:"bytes_written"`
}

// ViewSummary describes one published or failed view.
type ViewSummary struct {
	ViewID  string `json:"view_id"`
	Type    string `json:"type"`
	DataURI string `json:"data_uri,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewPublishCommand creates the publish command.
func NewPublishCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PublishOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Build views for a sorting and publish a layout document",
		Long: `Build the configured views for a sorting, store each view and the
layout document in the content-addressed store, and print the document
address.

Without --sorting a deterministic toy recording is generated, which also
enables the views that need raw traces.

Example:
  spikeview publish --toy-units 12 --toy-duration 300
  spikeview publish --sorting sorting.yaml --db ./views.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.SortingFile, "sorting", "", "sorting file (YAML or JSON)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "store path (overrides store.path)")
	cmd.Flags().IntVar(&opts.ToyUnits, "toy-units", 12, "toy example: number of units")
	cmd.Flags().IntVar(&opts.ToyChannels, "toy-channels", 4, "toy example: number of channels")
	cmd.Flags().Float64Var(&opts.ToyDuration, "toy-duration", 60, "toy example: duration in seconds")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "toy example: random seed")
	cmd.Flags().Uint64Var(&opts.Retries, "retries", 3, "retries when the store is unavailable")

	return cmd
}

func runPublish(opts *PublishOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Store.Path = opts.Database
	}
	logger := opts.logger(cmd, cfg)

	in, err := opts.input()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInput, "failed to load sorting", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		res   *publish.Result
		stats store.Stats
	)
	operation := func() error {
		res, stats, err = publishOnce(ctx, cfg, in, logger)
		if err != nil && !store.IsUnavailable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), opts.Retries), ctx)
	notify := func(err error, wait time.Duration) {
		logger.Warn("store unavailable, retrying", "error", err, "wait", wait)
	}
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		if store.IsUnavailable(err) {
			return formatter.Fail(ExitCommandError, ErrCodeStore, "store unavailable", err)
		}
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "publish failed", err)
	}

	summary := summarize(res, stats)
	if formatter.JSON() {
		if err := formatter.SuccessRun(res.RunID, summary); err != nil {
			return err
		}
	} else {
		printPublishSummary(formatter, summary)
	}

	if len(res.Failures) > 0 {
		return NewExitError(ExitFailure, ErrCodeViewsFailed+": one or more views failed")
	}
	return nil
}

// newBackOff returns the retry schedule for unavailable stores.
var newBackOff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	return b
}

func (o *PublishOptions) input() (publish.Input, error) {
	if o.SortingFile != "" {
		sorting, file, err := recording.LoadSortingFile(o.SortingFile)
		if err != nil {
			return publish.Input{}, err
		}
		return publish.Input{Sorting: sorting, DurationSec: file.DurationSec()}, nil
	}

	rec, sorting, err := recording.ToyExample(recording.ToyOptions{
		Seed:        o.Seed,
		NumUnits:    o.ToyUnits,
		NumChannels: o.ToyChannels,
		DurationSec: o.ToyDuration,
	})
	if err != nil {
		return publish.Input{}, err
	}
	return publish.Input{Sorting: sorting, Recording: rec}, nil
}

// publishOnce opens the store, runs one publish and closes the store.
func publishOnce(ctx context.Context, cfg *config.Config, in publish.Input, logger *slog.Logger) (*publish.Result, store.Stats, error) {
	cas, err := store.Open(cfg.StoreOptions(), logger)
	if err != nil {
		return nil, store.Stats{}, err
	}
	defer func() {
		if closeErr := cas.Close(); closeErr != nil {
			logger.Error("error closing store", "error", closeErr)
		}
	}()

	popts, err := cfg.PublishOptions(logger)
	if err != nil {
		return nil, store.Stats{}, err
	}
	p, err := publish.New(cas, popts)
	if err != nil {
		return nil, store.Stats{}, err
	}
	res, err := p.Publish(ctx, in)
	if err != nil {
		return nil, store.Stats{}, err
	}
	return res, cas.Stats(), nil
}

func summarize(res *publish.Result, stats store.Stats) PublishSummary {
	s := PublishSummary{
		RunID:        res.RunID,
		Address:      res.Address.String(),
		Kind:         string(res.Document.Kind),
		Skipped:      res.Skipped,
		NewObjects:   stats.Writes,
		Deduplicated: stats.Deduplicated,
		BytesWritten: stats.BytesWritten,
	}
	for _, v := range res.Document.Views {
		s.Views = append(s.Views, ViewSummary{ViewID: v.ViewID, Type: v.Type, DataURI: v.DataURI.String()})
	}
	for _, f := range res.Failures {
		s.Failures = append(s.Failures, ViewSummary{ViewID: f.ViewID, Type: f.ViewType, Error: f.Err.Error()})
	}
	return s
}

func printPublishSummary(f *OutputFormatter, s PublishSummary) {
	f.Textf("Published %s", s.Address)
	f.Textf("  run:    %s", s.RunID)
	f.Textf("  stored: %d new object(s), %s, %d deduplicated",
		s.NewObjects, humanize.Bytes(uint64(s.BytesWritten)), s.Deduplicated)
	for _, v := range s.Views {
		f.Textf("  ✓ %-22s %s", v.ViewID, v.DataURI)
	}
	for _, id := range s.Skipped {
		f.Textf("  - %-22s skipped (needs a recording)", id)
	}
	for _, v := range s.Failures {
		f.Textf("  ✗ %-22s %s", v.ViewID, v.Error)
	}
}
