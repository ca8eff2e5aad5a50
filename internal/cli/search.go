package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/lowcms/internal/domain"
	"github.com/kailas-cloud/lowcms/internal/domain/search/filter"
	"github.com/kailas-cloud/lowcms/internal/domain/value"
)

// SearchResult is the output of the search command.
type SearchResult struct {
	Items []any `json:"items"`
	Total int   `json:"total"`
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		predicate string
		jsonPath  string
	)

	cmd := &cobra.Command{
		Use:   "search <file>",
		Short: "Print the records of a file matching a filter",
		Long: `Print the records of a JSON file that match a Mongo-style filter.

The file holds an array of records or a single record. Without --filter
every record is printed. Text output has one record per line.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(rootOpts, args[0], predicate, jsonPath, cmd)
		},
	}

	cmd.Flags().StringVarP(&predicate, "filter", "f", "", `filter predicate, e.g. '{"age":{"$gt":20}}'`)
	cmd.Flags().StringVar(&jsonPath, "json-path", "", "search the records at this path")

	return cmd
}

func runSearch(opts *RootOptions, file, predicate, jsonPath string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	var p filter.Predicate
	if predicate != "" {
		if err := p.UnmarshalJSON([]byte(predicate)); err != nil {
			return f.Fail("parse filter", fmt.Errorf("%w: %w", domain.ErrInvalidFilter, err))
		}
	}

	data, err := loadSample(file, jsonPath, opts.MaxBytes)
	if err != nil {
		return f.Fail("load records", err)
	}
	records, err := asRecords(data)
	if err != nil {
		return f.Fail("load records", err)
	}

	matched := filter.Search(records, p)
	f.VerboseLog("Matched %d of %d records", len(matched), len(records))

	lines := make([]string, 0, len(matched))
	for _, r := range matched {
		b, err := value.Marshal(r)
		if err != nil {
			return f.Fail("encode record", err)
		}
		lines = append(lines, string(b))
	}
	if err := f.Success(SearchResult{Items: matched, Total: len(matched)}, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func asRecords(data any) ([]any, error) {
	if value.IsObject(data) {
		return []any{data}, nil
	}
	records, ok := data.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an array of records or a record, got %T", domain.ErrInvalidSample, data)
	}
	return records, nil
}
