package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	DirectoryRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_directory_requests_total",
			Help: "Total number of requests sent to the remote directory.",
		},
		[]string{"endpoint", "outcome"},
	)
	RequestRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_request_retries_total",
			Help: "Total number of retried directory requests.",
		},
	)
	FetchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_fetch_failures_total",
			Help: "Total number of subtrees lost after the retry budget was exhausted.",
		},
		[]string{"level"},
	)
	CrawlDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crawler_crawl_duration_seconds",
			Help:    "Duration of each full hierarchy crawl in seconds.",
			Buckets: []float64{60, 300, 900, 1800, 3600, 7200, 14400},
		},
	)
)

func StartMetricsServer() {

	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(DirectoryRequests)
	prometheus.MustRegister(RequestRetries)
	prometheus.MustRegister(FetchFailures)
	prometheus.MustRegister(CrawlDuration)

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(":8080", nil))
	}()
}
