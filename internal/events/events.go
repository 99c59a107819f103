package events

import (
	"time"

	"github.com/wilayah-id/crawler/internal/entities"
)

var FetchFailedTopic = "FetchFailedEvent"

// FetchFailed is published when a parent's children could not be retrieved
// after the retry budget was exhausted. The parent keeps an empty children
// list in the output.
type FetchFailed struct {
	Level      entities.Level
	ParentCode string
	Err        error
}

var ProvinceCompletedTopic = "ProvinceCompletedEvent"

type ProvinceCompleted struct {
	Index  int
	Total  int
	Code   string
	Name   string
	Cities int
}

var CrawlCompletedTopic = "CrawlCompletedEvent"

type CrawlCompleted struct {
	Statistics entities.Statistics
	Duration   time.Duration
	Failures   int
}
