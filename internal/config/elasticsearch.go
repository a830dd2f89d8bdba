package config

// ElasticsearchConfig configures the optional event search index. An empty
// URL disables search; the catalog then falls back to SQL filtering.
type ElasticsearchConfig struct {
	URL        string
	Username   string
	Password   string
	Index      string
	MaxRetries int
}

func LoadElasticsearch() ElasticsearchConfig {
	return ElasticsearchConfig{
		URL:        getEnv("ELASTICSEARCH_URL", ""),
		Username:   getEnv("ELASTICSEARCH_USERNAME", ""),
		Password:   getEnv("ELASTICSEARCH_PASSWORD", ""),
		Index:      getEnv("ELASTICSEARCH_INDEX", "events"),
		MaxRetries: getEnvInt("ELASTICSEARCH_MAX_RETRIES", 3),
	}
}

// Enabled reports whether a search backend is configured.
func (c ElasticsearchConfig) Enabled() bool {
	return c.URL != ""
}
