package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/siteradius/siteradius/pkg/models"
)

// FileStore keeps one JSON file per analysis in a local directory. It is the
// default backend: no external services required.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir, defaulting to the XDG data
// directory when dir is empty. The directory is created if missing.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = filepath.Join(xdg.DataHome, "siteradius", "results")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save writes the result as indented JSON to <dir>/<id>.json.
func (s *FileStore) Save(_ context.Context, id string, result *models.CohesionResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := os.WriteFile(s.path(id), data, 0o644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

// Load reads the result stored under id.
func (s *FileStore) Load(_ context.Context, id string) (*models.CohesionResult, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to read result: %w", err)
	}

	var result models.CohesionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return &result, nil
}
