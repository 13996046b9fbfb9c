package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/spikeview/internal/layout"
	"github.com/roach88/spikeview/internal/store"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	CheckStore bool
	Database   string
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                     `json:"valid"`
	Kind   string                   `json:"kind,omitempty"`
	Views  int                      `json:"views"`
	Errors []layout.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <document>",
		Short: "Validate a layout document",
		Long: `Validate a SortingLayout or Composite document (JSON or YAML).

Performs structural validation (view references, hint counts, cycles,
directions) and checks the document against the published schema.
With --check-store every dataUri must also resolve in the store.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.CheckStore, "check-store", false, "require every dataUri to resolve in the store")
	cmd.Flags().StringVar(&opts.Database, "db", "", "store path (overrides store.path)")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, "document not found: "+path, nil)
		}
		return formatter.Fail(ExitCommandError, ErrCodeInput, "failed to read document", err)
	}

	doc, err := layout.ParseDocument(data)
	if err != nil {
		var verrs *layout.ValidationErrors
		if errors.As(err, &verrs) {
			return outputValidationErrors(formatter, ValidationResult{Errors: verrs.Errors})
		}
		return formatter.Fail(ExitCommandError, ErrCodeInput, "failed to parse document", err)
	}
	formatter.VerboseLog("Parsed %s document with %d view(s)", doc.Kind, len(doc.Views))

	result := ValidationResult{Kind: string(doc.Kind), Views: len(doc.Views)}
	result.Errors = layout.Validate(doc)
	if len(result.Errors) == 0 {
		canonical, err := doc.MarshalCanonical()
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeInput, "failed to encode document", err)
		}
		result.Errors = layout.CheckSchema(canonical)
	}

	if len(result.Errors) == 0 && opts.CheckStore {
		missing, err := opts.missingViews(cmd, doc)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to check store", err)
		}
		result.Errors = missing
	}

	if len(result.Errors) > 0 {
		return outputValidationErrors(formatter, result)
	}

	result.Valid = true
	if formatter.JSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ %s document valid (%d views)\n", doc.Kind, len(doc.Views))
	return nil
}

// missingViews reports views whose dataUri is absent from the store.
func (o *ValidateOptions) missingViews(cmd *cobra.Command, doc *layout.Document) ([]layout.ValidationError, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	if o.Database != "" {
		cfg.Store.Path = o.Database
	}
	logger := o.logger(cmd, cfg)
	cas, err := store.Open(cfg.StoreOptions(), logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := cas.Close(); closeErr != nil {
			logger.Error("error closing store", "error", closeErr)
		}
	}()

	var errs []layout.ValidationError
	for i, v := range doc.Views {
		_, found, err := cas.Resolve(cmd.Context(), v.DataURI)
		if err != nil {
			return nil, err
		}
		if !found {
			errs = append(errs, layout.ValidationError{
				Field:   fmt.Sprintf("views[%d].dataUri", i),
				Message: fmt.Sprintf("%s is not in the store", v.DataURI),
				Code:    layout.ErrUnresolvedViewID,
			})
		}
	}
	return errs, nil
}

// outputValidationErrors outputs validation errors.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	errs := result.Errors
	if formatter.JSON() {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: errs[0].Code, Message: errs[0].Message},
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n", err.Code, err.Field, err.Message)
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
