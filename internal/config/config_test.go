package config

import (
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Config_LoadsDefaultsFromFile(t *testing.T) {
	os.Setenv("MODE", "test")

	cfg := Get()

	assert.Equal(t, "https://cekbansos.kemensos.go.id", cfg.Crawler.BaseURL)
	assert.Equal(t, "cekbansos.kemensos.go.id", cfg.Crawler.Source)
	assert.Equal(t, 15*time.Second, cfg.Crawler.RequestTimeout)
	assert.Equal(t, 1, cfg.Crawler.MaxConcurrentRequests)
	assert.False(t, cfg.Crawler.FailFast)
	assert.Equal(t, "./output", cfg.Output.Dir)
}

func Test_Config_EnvironmentOverrideWorksCorrect(t *testing.T) {
	override := Config{
		Crawler: CrawlerConfig{
			BaseURL:               "https://mirror.example.org",
			Source:                "mirror.example.org",
			MaxRequestsPerSecond:  2.5,
			MaxRetries:            7,
			RequestTimeout:        20 * time.Second,
			MaxConcurrentRequests: 4,
			FailFast:              true,
		},
		Output: OutputConfig{Dir: "/tmp/hierarchy"},
		DB:     DBConfig{ConnectionString: "/tmp/crawler.db"},
	}

	os.Setenv("MODE", "test")
	os.Setenv("CRAWLER_BASE_URL", override.Crawler.BaseURL)
	os.Setenv("CRAWLER_SOURCE", override.Crawler.Source)
	os.Setenv("CRAWLER_MAX_REQUESTS_PER_SECOND", "2.5")
	os.Setenv("CRAWLER_MAX_RETRIES", strconv.Itoa(override.Crawler.MaxRetries))
	os.Setenv("CRAWLER_REQUEST_TIMEOUT", "20s")
	os.Setenv("CRAWLER_MAX_CONCURRENT_REQUESTS", strconv.Itoa(override.Crawler.MaxConcurrentRequests))
	os.Setenv("CRAWLER_FAIL_FAST", "true")
	os.Setenv("OUTPUT_DIR", override.Output.Dir)
	os.Setenv("DB_CONNECTION_STRING", override.DB.ConnectionString)

	t.Cleanup(func() {
		for _, key := range []string{"CRAWLER_BASE_URL", "CRAWLER_SOURCE", "CRAWLER_MAX_REQUESTS_PER_SECOND",
			"CRAWLER_MAX_RETRIES", "CRAWLER_REQUEST_TIMEOUT", "CRAWLER_MAX_CONCURRENT_REQUESTS",
			"CRAWLER_FAIL_FAST", "OUTPUT_DIR", "DB_CONNECTION_STRING"} {
			os.Unsetenv(key)
		}
	})

	cfg := Get()
	require.NotNil(t, cfg)

	assert.Equal(t, override.Crawler.BaseURL, cfg.Crawler.BaseURL)
	assert.Equal(t, override.Crawler.Source, cfg.Crawler.Source)
	assert.Equal(t, override.Crawler.MaxRequestsPerSecond, cfg.Crawler.MaxRequestsPerSecond)
	assert.Equal(t, override.Crawler.MaxRetries, cfg.Crawler.MaxRetries)
	assert.Equal(t, override.Crawler.RequestTimeout, cfg.Crawler.RequestTimeout)
	assert.Equal(t, override.Crawler.MaxConcurrentRequests, cfg.Crawler.MaxConcurrentRequests)
	assert.Equal(t, override.Crawler.FailFast, cfg.Crawler.FailFast)
	assert.Equal(t, override.Output.Dir, cfg.Output.Dir)
	assert.Equal(t, override.DB.ConnectionString, cfg.DB.ConnectionString)
}
