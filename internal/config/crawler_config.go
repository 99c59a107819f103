package config

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type CrawlerConfig struct {
	BaseURL               string        `mapstructure:"base_url" validate:"required,url"`
	Source                string        `mapstructure:"source" validate:"required"`
	MaxRequestsPerSecond  float32       `mapstructure:"max_requests_per_second" validate:"gt=0"`
	MaxRetries            int           `mapstructure:"max_retries" validate:"gte=0"`
	RequestTimeout        time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	MaxConcurrentRequests int           `mapstructure:"max_concurrent_requests" validate:"gte=1"`
	FailFast              bool          `mapstructure:"fail_fast"`
	CronSchedule          string        `mapstructure:"cron_schedule"`
}

func (config CrawlerConfig) validate() error {
	return validator.New().Struct(config)
}

func (config CrawlerConfig) bindEnvironmentVariables() error {

	bindings := map[string]string{
		"crawler.base_url":                "CRAWLER_BASE_URL",
		"crawler.source":                  "CRAWLER_SOURCE",
		"crawler.max_requests_per_second": "CRAWLER_MAX_REQUESTS_PER_SECOND",
		"crawler.max_retries":             "CRAWLER_MAX_RETRIES",
		"crawler.request_timeout":         "CRAWLER_REQUEST_TIMEOUT",
		"crawler.max_concurrent_requests": "CRAWLER_MAX_CONCURRENT_REQUESTS",
		"crawler.fail_fast":               "CRAWLER_FAIL_FAST",
		"crawler.cron_schedule":           "CRAWLER_CRON_SCHEDULE",
	}

	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			return err
		}
	}

	return nil
}
