package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/siteradius/siteradius/pkg/models"
)

// ElasticConfig holds Elasticsearch backend configuration.
type ElasticConfig struct {
	Addresses []string
	Index     string
	Username  string
	Password  string
}

// ElasticStore persists results as documents in one Elasticsearch index,
// keyed by analysis ID.
type ElasticStore struct {
	es    *elasticsearch.Client
	index string

	ensureOnce sync.Once
	ensureErr  error
}

// indexMapping defines the results index. The scalar fields and the metadata
// are queryable; the per-page arrays are stored verbatim without indexing.
var indexMapping = `{
	"mappings": {
		"properties": {
			"focus_score": { "type": "float" },
			"radius": { "type": "float" },
			"similarity_distribution": { "type": "object", "enabled": false },
			"content_composition": { "type": "object", "enabled": false },
			"content_clusters": { "type": "object", "enabled": false },
			"page_metrics": { "type": "object", "enabled": false },
			"metadata": {
				"properties": {
					"url": { "type": "keyword" },
					"page_count": { "type": "integer" },
					"pages_omitted": { "type": "integer" },
					"model": { "type": "keyword" },
					"max_pages": { "type": "integer" },
					"timestamp": { "type": "date" }
				}
			}
		}
	}
}`

// NewElasticStore creates an Elasticsearch-backed store.
func NewElasticStore(config ElasticConfig) (*ElasticStore, error) {
	if config.Index == "" {
		return nil, fmt.Errorf("index is required")
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: config.Addresses,
		Username:  config.Username,
		Password:  config.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}

	return &ElasticStore{es: es, index: config.Index}, nil
}

// Ping checks if Elasticsearch is available.
func (s *ElasticStore) Ping(ctx context.Context) bool {
	res, err := s.es.Ping(s.es.Ping.WithContext(ctx))
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return !res.IsError()
}

// ensureIndex creates the results index with its mapping, once per store.
func (s *ElasticStore) ensureIndex(ctx context.Context) error {
	s.ensureOnce.Do(func() {
		res, err := s.es.Indices.Exists([]string{s.index}, s.es.Indices.Exists.WithContext(ctx))
		if err != nil {
			s.ensureErr = fmt.Errorf("failed to check index: %w", err)
			return
		}
		defer res.Body.Close()

		if res.StatusCode == 200 {
			return
		}

		res, err = s.es.Indices.Create(
			s.index,
			s.es.Indices.Create.WithContext(ctx),
			s.es.Indices.Create.WithBody(bytes.NewReader([]byte(indexMapping))),
		)
		if err != nil {
			s.ensureErr = fmt.Errorf("failed to create index: %w", err)
			return
		}
		defer res.Body.Close()

		if res.IsError() {
			s.ensureErr = fmt.Errorf("error creating index: %s", res.String())
		}
	})
	return s.ensureErr
}

// Save indexes the result under the analysis ID.
func (s *ElasticStore) Save(ctx context.Context, id string, result *models.CohesionResult) error {
	if err := s.ensureIndex(ctx); err != nil {
		return err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	res, err := s.es.Index(
		s.index,
		bytes.NewReader(data),
		s.es.Index.WithContext(ctx),
		s.es.Index.WithDocumentID(id),
	)
	if err != nil {
		return fmt.Errorf("failed to index result: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing result (status %d): %s", res.StatusCode, res.String())
	}
	return nil
}

// getResponse represents the ES get response structure.
type getResponse struct {
	Found  bool                  `json:"found"`
	Source models.CohesionResult `json:"_source"`
}

// Load retrieves the result stored under the analysis ID.
func (s *ElasticStore) Load(ctx context.Context, id string) (*models.CohesionResult, error) {
	res, err := s.es.Get(s.index, id, s.es.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if res.IsError() {
		return nil, fmt.Errorf("get error: %s", res.String())
	}

	var gr getResponse
	if err := json.NewDecoder(res.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !gr.Found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &gr.Source, nil
}

// DeleteIndex removes the results index (for testing/cleanup).
func (s *ElasticStore) DeleteIndex(ctx context.Context) error {
	res, err := s.es.Indices.Delete([]string{s.index}, s.es.Indices.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return nil
}
