package entities

import "time"

// CrawlRun is the persisted summary of one crawl.
type CrawlRun struct {
	ID            uint `gorm:"primaryKey"`
	StartedAt     time.Time
	FinishedAt    time.Time
	Provinces     int
	Cities        int
	Districts     int
	Villages      int
	FailedFetches int
	Canceled      bool
	OutputFile    string
}
