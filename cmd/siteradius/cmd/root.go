package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/siteradius/siteradius/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	cfg     config.Config
)

// GetConfig returns the loaded configuration.
func GetConfig() config.Config {
	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "siteradius",
	Short: "SiteRadius: website thematic cohesion analyzer",
	Long: `SiteRadius crawls a website, embeds each page's text, and measures how
tightly the site's content clusters around a single theme.

Commands:
  analyze  Crawl and analyze one site
  serve    Start the HTTP task API
  mcp      Start the MCP server over stdio
  report   Render a stored analysis as Markdown`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogger() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func initConfig() {
	// Start with defaults
	cfg = config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/siteradius")
		viper.AddConfigPath(".")
	}

	// Environment variable overrides
	// SITERADIUS_CRAWLER_MAX_PAGES -> crawler.max_pages
	viper.SetEnvPrefix("SITERADIUS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Explicitly bind nested env vars
	viper.BindEnv("server.addr", "SITERADIUS_SERVER_ADDR")
	viper.BindEnv("crawler.max_pages", "SITERADIUS_CRAWLER_MAX_PAGES")
	viper.BindEnv("crawler.max_depth", "SITERADIUS_CRAWLER_MAX_DEPTH")
	viper.BindEnv("crawler.delay", "SITERADIUS_CRAWLER_DELAY")
	viper.BindEnv("crawler.workers", "SITERADIUS_CRAWLER_WORKERS")
	viper.BindEnv("crawler.user_agent", "SITERADIUS_CRAWLER_USER_AGENT")
	viper.BindEnv("embeddings.endpoint", "SITERADIUS_EMBEDDINGS_ENDPOINT")
	viper.BindEnv("embeddings.model", "SITERADIUS_EMBEDDINGS_MODEL")
	viper.BindEnv("embeddings.batch_size", "SITERADIUS_EMBEDDINGS_BATCH_SIZE")
	viper.BindEnv("storage.backend", "SITERADIUS_STORAGE_BACKEND")
	viper.BindEnv("storage.dir", "SITERADIUS_STORAGE_DIR")
	viper.BindEnv("storage.elasticsearch.addresses", "SITERADIUS_STORAGE_ELASTICSEARCH_ADDRESSES")
	viper.BindEnv("storage.elasticsearch.index", "SITERADIUS_STORAGE_ELASTICSEARCH_INDEX")
	viper.BindEnv("storage.elasticsearch.username", "SITERADIUS_STORAGE_ELASTICSEARCH_USERNAME")
	viper.BindEnv("storage.elasticsearch.password", "SITERADIUS_STORAGE_ELASTICSEARCH_PASSWORD")
	viper.BindEnv("storage.s3.endpoint", "SITERADIUS_STORAGE_S3_ENDPOINT")
	viper.BindEnv("storage.s3.bucket", "SITERADIUS_STORAGE_S3_BUCKET")
	viper.BindEnv("storage.s3.access_key_id", "SITERADIUS_STORAGE_S3_ACCESS_KEY_ID")
	viper.BindEnv("storage.s3.secret_access_key", "SITERADIUS_STORAGE_S3_SECRET_ACCESS_KEY")
	viper.BindEnv("mcp.name", "SITERADIUS_MCP_NAME")
	viper.BindEnv("mcp.version", "SITERADIUS_MCP_VERSION")

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("config file error", "error", err)
		}
		// No config file - use defaults + env vars
	}

	// Unmarshal into struct (merges config file with defaults)
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Warn("failed to parse config", "error", err)
	}

	// Handle special case: addresses as comma-separated string from env
	if addrs := os.Getenv("SITERADIUS_STORAGE_ELASTICSEARCH_ADDRESSES"); addrs != "" {
		cfg.Storage.Elasticsearch.Addresses = strings.Split(addrs, ",")
	}
}
