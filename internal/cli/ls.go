package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/lowcms/internal/domain"
	"github.com/kailas-cloud/lowcms/internal/workspace"
)

// LsEntry is one listed directory or file.
type LsEntry struct {
	Name string `json:"name"`
	Size int64  `json:"size,omitempty"`
}

// LsResult is the output of the ls command.
type LsResult struct {
	Directories []LsEntry `json:"directories"`
	Files       []LsEntry `json:"files"`
}

// NewLsCommand creates the ls command.
func NewLsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ls [dir]",
		Short:         "List the directories and files of a directory",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runLs(rootOpts, dir, cmd)
		},
	}

	return cmd
}

func runLs(opts *RootOptions, dir string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	ws, err := workspace.Open(filepath.Clean(dir))
	if err != nil {
		return f.Fail("open directory", fmt.Errorf("%w: %w", domain.ErrNotFound, err))
	}
	defer func() { _ = ws.Close() }()

	listing, err := ws.Enumerate("")
	if err != nil {
		return f.Fail("list directory", err)
	}

	res := LsResult{Directories: make([]LsEntry, 0, len(listing.Directories)), Files: make([]LsEntry, 0, len(listing.Files))}
	lines := make([]string, 0, len(listing.Directories)+len(listing.Files))
	for _, e := range listing.Directories {
		res.Directories = append(res.Directories, LsEntry{Name: e.Name})
		lines = append(lines, e.Name+"/")
	}
	for _, e := range listing.Files {
		res.Files = append(res.Files, LsEntry{Name: e.Name, Size: e.Size})
		lines = append(lines, e.Name)
	}
	if err := f.Success(res, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
