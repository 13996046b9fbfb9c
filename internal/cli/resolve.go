package cli

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/spikeview/internal/canon"
	"github.com/roach88/spikeview/internal/store"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	Database string
	Output   string
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <address>",
		Short: "Print the JSON stored at a content address",
		Long: `Look up a sha256:// address in the store and print the canonical JSON
stored there. The stored bytes are re-hashed before printing.

Example:
  spikeview resolve sha256://9f86d0... --db ./views.db
  spikeview resolve sha256://9f86d0... -o document.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "store path (overrides store.path)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the JSON to a file instead of stdout")

	return cmd
}

func runResolve(opts *ResolveOptions, arg string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	addr, err := canon.ParseAddress(arg)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInput, "invalid address", err)
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Store.Path = opts.Database
	}
	logger := opts.logger(cmd, cfg)

	cas, err := store.Open(cfg.StoreOptions(), logger)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open store", err)
	}
	defer func() {
		if closeErr := cas.Close(); closeErr != nil {
			logger.Error("error closing store", "error", closeErr)
		}
	}()

	data, found, err := cas.Resolve(cmd.Context(), addr)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "resolve failed", err)
	}
	if !found {
		return formatter.Fail(ExitFailure, ErrCodeNotFound, "address not found: "+addr.String(), nil)
	}
	formatter.VerboseLog("resolved %s (%d bytes)", addr, len(data))

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to write output", err)
		}
		formatter.Textf("Wrote %s", opts.Output)
		if formatter.JSON() {
			return formatter.Success(map[string]string{"address": addr.String(), "output": opts.Output})
		}
		return nil
	}

	if formatter.JSON() {
		return formatter.Success(json.RawMessage(data))
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(data)
	}
	_, err = formatter.Writer.Write(append(pretty.Bytes(), '\n'))
	return err
}
