package cli

import (
	"fmt"
	"path/filepath"

	"github.com/kailas-cloud/lowcms/internal/domain"
	"github.com/kailas-cloud/lowcms/internal/domain/jsonpath"
	"github.com/kailas-cloud/lowcms/internal/workspace"
)

// loadSample reads the JSON file at file, narrowed to jsonPath when set.
// The file's directory is opened as a workspace so reads stay inside it.
func loadSample(file, jsonPath string, maxBytes int64) (any, error) {
	ws, err := workspace.Open(filepath.Dir(file))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	defer func() { _ = ws.Close() }()

	data, err := ws.ReadJSON(filepath.Base(file), maxBytes)
	if err != nil {
		return nil, err
	}
	if jsonPath == "" {
		return data, nil
	}
	v, ok := jsonpath.Get(data, jsonpath.Parse(jsonPath))
	if !ok {
		return nil, fmt.Errorf("%w: no value at %q", domain.ErrInvalidSample, jsonPath)
	}
	return v, nil
}
