package services

import (
	"github.com/asaskevich/EventBus"
	log "github.com/sirupsen/logrus"

	"github.com/wilayah-id/crawler/internal/events"
	"github.com/wilayah-id/crawler/internal/metrics"
)

// ProgressReporter turns builder events into log lines and metrics so the
// builder itself stays free of presentation concerns.
type ProgressReporter struct {
	bus EventBus.Bus
}

func NewProgressReporter(bus EventBus.Bus) (*ProgressReporter, error) {

	reporter := &ProgressReporter{bus: bus}

	if err := bus.Subscribe(events.ProvinceCompletedTopic, reporter.onProvinceCompleted); err != nil {
		return nil, err
	}
	if err := bus.Subscribe(events.FetchFailedTopic, reporter.onFetchFailed); err != nil {
		return nil, err
	}
	if err := bus.Subscribe(events.CrawlCompletedTopic, reporter.onCrawlCompleted); err != nil {
		return nil, err
	}
	return reporter, nil
}

func (r *ProgressReporter) onProvinceCompleted(event events.ProvinceCompleted) {
	log.Infof("province [%d/%d] done: %s (%d cities/regencies)",
		event.Index, event.Total, event.Name, event.Cities)
}

func (r *ProgressReporter) onFetchFailed(event events.FetchFailed) {
	metrics.FetchFailures.WithLabelValues(event.Level.String()).Inc()
}

func (r *ProgressReporter) onCrawlCompleted(event events.CrawlCompleted) {
	metrics.CrawlDuration.Observe(event.Duration.Seconds())
	stats := event.Statistics
	log.Infof("crawl completed in %v: %d provinces, %d cities/regencies, %d districts, %d villages, %d failed fetches",
		event.Duration, stats.TotalProvinces, stats.TotalCities, stats.TotalDistricts,
		stats.TotalVillages, event.Failures)
}
