package cli

import (
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"github.com/kailas-cloud/lowcms/internal/domain"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Invalid input (bad sample, bad filter)
	ExitCommandError = 2 // Command error (missing file, permission denied)
)

// Error codes reported in CLI output.
const (
	ErrCodeGeneric          = "E001"
	ErrCodeNotFound         = "E002"
	ErrCodePermissionDenied = "E003"
	ErrCodeInvalidSample    = "E004"
	ErrCodeInvalidFilter    = "E005"
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // verbose output, kept off Writer so JSON stays parseable
	Verbose   bool
}

// CLIResponse is the JSON envelope of every command.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error part of a CLIResponse.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success writes data as a JSON envelope, or text when the format is text.
func (f *OutputFormatter) Success(data any, text string) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, text)
	return err
}

// Fail reports err in the configured format and returns it as an ExitError.
func (f *OutputFormatter) Fail(message string, err error) error {
	code, exit := classify(err)
	if f.Format == "json" {
		_ = f.encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: fmt.Sprintf("%s: %v", message, err)},
		})
	} else {
		fmt.Fprintf(f.Writer, "Error [%s]: %s: %v\n", code, message, err)
	}
	return &ExitError{Code: exit, Message: fmt.Sprintf("[%s] %s", code, message), Err: err}
}

// VerboseLog outputs a message only if verbose mode is enabled.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func (f *OutputFormatter) encode(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(f.Writer, string(data))
	return err
}

func classify(err error) (code string, exit int) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return ErrCodeNotFound, ExitCommandError
	case errors.Is(err, domain.ErrPermissionDenied):
		return ErrCodePermissionDenied, ExitCommandError
	case errors.Is(err, domain.ErrInvalidSample):
		return ErrCodeInvalidSample, ExitFailure
	case errors.Is(err, domain.ErrInvalidFilter):
		return ErrCodeInvalidFilter, ExitFailure
	default:
		return ErrCodeGeneric, ExitCommandError
	}
}

func newFormatter(opts *RootOptions, w, errW io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: w, ErrWriter: errW, Verbose: opts.Verbose}
}
