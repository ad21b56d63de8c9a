// Package store persists cohesion results under their analysis IDs. Three
// backends share one contract: local JSON files, Elasticsearch, and
// S3-compatible object storage.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/siteradius/siteradius/internal/config"
	"github.com/siteradius/siteradius/pkg/models"
)

// ErrNotFound is returned by Load when no result exists for the given ID.
var ErrNotFound = errors.New("analysis not found")

// Store is the results sink shared by the pipeline, the HTTP API, and the
// report command.
type Store interface {
	// Save persists the result under the given analysis ID, overwriting any
	// previous result for that ID.
	Save(ctx context.Context, id string, result *models.CohesionResult) error

	// Load retrieves the result stored under the given analysis ID.
	// Returns ErrNotFound when the ID is unknown.
	Load(ctx context.Context, id string) (*models.CohesionResult, error)
}

// New creates the store backend selected by the configuration.
func New(cfg config.Storage) (Store, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileStore(cfg.Dir)
	case "elastic":
		return NewElasticStore(ElasticConfig{
			Addresses: cfg.Elasticsearch.Addresses,
			Index:     cfg.Elasticsearch.Index,
			Username:  cfg.Elasticsearch.Username,
			Password:  cfg.Elasticsearch.Password,
		})
	case "s3":
		return NewS3Store(S3Config{
			Endpoint:        cfg.S3.Endpoint,
			Bucket:          cfg.S3.Bucket,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UseSSL:          cfg.S3.UseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
