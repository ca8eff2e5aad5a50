package cli

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/lowcms/internal/domain/schema"
)

// DeriveResult is the output of the derive command.
type DeriveResult struct {
	Schema     *schema.Node `json:"schema"`
	HasUnknown bool         `json:"hasUnknown"`
}

// NewDeriveCommand creates the derive command.
func NewDeriveCommand(rootOpts *RootOptions) *cobra.Command {
	var jsonPath string

	cmd := &cobra.Command{
		Use:   "derive <file>",
		Short: "Derive a JSON schema from a sample file",
		Long: `Derive a JSON Schema (draft 7) from a sample JSON file.

The sample is an object or an array of objects. Use --json-path to derive
from a field inside the file (dot-separated, numeric segments index arrays).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDerive(rootOpts, args[0], jsonPath, cmd)
		},
	}

	cmd.Flags().StringVar(&jsonPath, "json-path", "", "derive from the value at this path")

	return cmd
}

func runDerive(opts *RootOptions, file, jsonPath string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	sample, err := loadSample(file, jsonPath, opts.MaxBytes)
	if err != nil {
		return f.Fail("load sample", err)
	}
	f.VerboseLog("Loaded sample from %s", file)

	node := schema.Derive(sample)
	res := DeriveResult{Schema: node, HasUnknown: schema.HasTypes(node, schema.TypeUnknown)}
	if res.HasUnknown {
		f.VerboseLog("Schema has fields of unknown type")
	}

	text, err := json.MarshalIndent(node, "", "  ")
	if err != nil {
		return f.Fail("encode schema", err)
	}
	if err := f.Success(res, string(text)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
