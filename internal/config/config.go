package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server     Server     `mapstructure:"server"`
	Crawler    Crawler    `mapstructure:"crawler"`
	Embeddings Embeddings `mapstructure:"embeddings"`
	Analyzer   Analyzer   `mapstructure:"analyzer"`
	Storage    Storage    `mapstructure:"storage"`
	MCP        MCP        `mapstructure:"mcp"`
}

// Server holds HTTP API server configuration.
type Server struct {
	Addr string `mapstructure:"addr"`
}

// Crawler holds crawl engine configuration.
type Crawler struct {
	MaxPages      int           `mapstructure:"max_pages"`
	MaxDepth      int           `mapstructure:"max_depth"`
	Delay         time.Duration `mapstructure:"delay"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Workers       int           `mapstructure:"workers"`
	UserAgent     string        `mapstructure:"user_agent"`
	MinTextLength int           `mapstructure:"min_text_length"`
}

// Embeddings holds embedding model configuration.
type Embeddings struct {
	Endpoint     string        `mapstructure:"endpoint"`
	Model        string        `mapstructure:"model"`
	BatchSize    int           `mapstructure:"batch_size"`
	Timeout      time.Duration `mapstructure:"timeout"`
	CacheSize    int           `mapstructure:"cache_size"`
	ChunkSize    int           `mapstructure:"chunk_size"`
	ChunkOverlap int           `mapstructure:"chunk_overlap"`
}

// Analyzer holds cohesion analysis configuration.
type Analyzer struct {
	MaxTextChars int `mapstructure:"max_text_chars"`
}

// Storage holds results store configuration. Backend selects one of
// "file", "elastic", or "s3".
type Storage struct {
	Backend       string        `mapstructure:"backend"`
	Dir           string        `mapstructure:"dir"`
	Elasticsearch Elasticsearch `mapstructure:"elasticsearch"`
	S3            S3            `mapstructure:"s3"`
}

// Elasticsearch holds ES connection configuration.
type Elasticsearch struct {
	Addresses []string `mapstructure:"addresses"`
	Index     string   `mapstructure:"index"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

// S3 holds S3/MinIO storage configuration.
type S3 struct {
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// MCP holds MCP server configuration.
type MCP struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Server: Server{
			Addr: ":8000",
		},
		Crawler: Crawler{
			MaxPages:      50,
			MaxDepth:      3,
			Delay:         1 * time.Second,
			Timeout:       10 * time.Second,
			Workers:       10,
			UserAgent:     "SiteRadius/1.0",
			MinTextLength: 100,
		},
		Embeddings: Embeddings{
			Endpoint:     "http://localhost:8080",
			Model:        "all-MiniLM-L6-v2",
			BatchSize:    32,
			Timeout:      30 * time.Second,
			CacheSize:    1024,
			ChunkSize:    512,
			ChunkOverlap: 100,
		},
		Analyzer: Analyzer{
			MaxTextChars: 10000,
		},
		Storage: Storage{
			Backend: "file",
			Dir:     "", // empty means the XDG data directory
			Elasticsearch: Elasticsearch{
				Addresses: []string{"http://localhost:9200"},
				Index:     "siteradius-results",
			},
			S3: S3{
				Endpoint:        "localhost:9002",
				Bucket:          "siteradius",
				AccessKeyID:     "minioadmin",
				SecretAccessKey: "minioadmin",
				UseSSL:          false,
			},
		},
		MCP: MCP{
			Name:    "siteradius",
			Version: "1.0.0",
		},
	}
}
