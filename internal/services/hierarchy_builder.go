package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/wilayah-id/crawler/internal/entities"
	"github.com/wilayah-id/crawler/internal/events"
	"github.com/wilayah-id/crawler/internal/logger"
)

type directoryClient interface {
	Provinces(ctx context.Context) ([]entities.Region, error)
	Cities(ctx context.Context, provinceCode string) ([]entities.Region, error)
	Districts(ctx context.Context, provinceCode, cityCode string) ([]entities.Region, error)
	Villages(ctx context.Context, provinceCode, cityCode, districtCode string) ([]entities.Region, error)
}

// Report accompanies the output document but is never part of it: it counts
// the subtrees lost to exhausted retries, keyed by the level whose children
// could not be fetched.
type Report struct {
	Failures map[entities.Level]int
	Warnings []string
	Canceled bool
}

func newReport() *Report {
	return &Report{Failures: map[entities.Level]int{}}
}

func (r *Report) TotalFailures() int {
	total := 0
	for _, count := range r.Failures {
		total += count
	}
	return total
}

// HierarchyBuilder walks the four-level tree, one remote query per parent
// node, and assembles the output document. Children keep the exact order the
// remote returned them, also when the fan-out runs on several workers.
type HierarchyBuilder struct {
	bus           EventBus.Bus
	client        directoryClient
	source        string
	failFast      bool
	maxConcurrent int
}

func NewHierarchyBuilder(bus EventBus.Bus, client directoryClient, source string) *HierarchyBuilder {
	return &HierarchyBuilder{bus: bus, client: client, source: source, maxConcurrent: 1}
}

// SetFailFast switches from the default best-effort policy (a failed parent
// keeps an empty children list, siblings continue) to aborting the whole
// build on the first exhausted fetch.
func (b *HierarchyBuilder) SetFailFast(failFast bool) {
	b.failFast = failFast
}

func (b *HierarchyBuilder) SetMaxConcurrent(workers int) {
	if workers < 1 {
		workers = 1
	}
	b.maxConcurrent = workers
}

// Build runs the crawl. A failed province fetch is fatal in both policies;
// anything below degrades per the configured policy. On context cancellation
// the partial tree assembled so far is aggregated and returned with a
// warning instead of being thrown away.
func (b *HierarchyBuilder) Build(ctx context.Context) (*entities.Document, *Report, error) {

	report := newReport()
	start := time.Now()
	doc := entities.NewDocument(b.source)

	provinceRegions, err := b.client.Provinces(ctx)
	if err != nil {
		return nil, report, errors.Wrap(err, "fetch provinces")
	}
	doc.Hierarchy.Provinces = lo.Map(provinceRegions, func(r entities.Region, _ int) entities.Province {
		return entities.NewProvince(r)
	})
	log.Infof("found %d provinces", len(doc.Hierarchy.Provinces))

	stages := []struct {
		level entities.Level
		jobs  func() []stageJob
	}{
		{entities.LevelCity, func() []stageJob { return b.cityJobs(doc) }},
		{entities.LevelDistrict, func() []stageJob { return b.districtJobs(doc) }},
		{entities.LevelVillage, func() []stageJob { return b.villageJobs(doc) }},
	}

	for _, stage := range stages {
		if err := b.runStage(ctx, stage.level, stage.jobs(), report); err != nil {
			return nil, report, err
		}
		if report.Canceled {
			report.Warnings = append(report.Warnings, "crawl canceled before completion, output holds a partial tree")
			log.Warn("crawl canceled before completion, output holds a partial tree")
			break
		}
	}

	doc.Aggregate()

	b.bus.Publish(events.CrawlCompletedTopic, events.CrawlCompleted{
		Statistics: doc.Metadata.Statistics,
		Duration:   time.Since(start),
		Failures:   report.TotalFailures(),
	})
	return doc, report, nil
}

// stageJob fetches the children of one parent node. Each job owns its
// parent's slot in the tree, so jobs of one stage never write to the same
// memory and output order stays request order regardless of completion order.
type stageJob struct {
	parentCode string
	fetch      func(ctx context.Context) error
}

func (b *HierarchyBuilder) cityJobs(doc *entities.Document) []stageJob {

	provinces := doc.Hierarchy.Provinces
	total := len(provinces)

	jobs := make([]stageJob, total)
	for i := range provinces {
		index, province := i, &provinces[i]
		jobs[i] = stageJob{parentCode: province.Code, fetch: func(ctx context.Context) error {
			regions, err := b.client.Cities(ctx, province.Code)
			if err != nil {
				return err
			}
			province.Cities = lo.Map(regions, func(r entities.Region, _ int) entities.City {
				return entities.NewCity(r)
			})
			b.bus.Publish(events.ProvinceCompletedTopic, events.ProvinceCompleted{
				Index:  index + 1,
				Total:  total,
				Code:   province.Code,
				Name:   province.Name,
				Cities: len(province.Cities),
			})
			return nil
		}}
	}
	return jobs
}

func (b *HierarchyBuilder) districtJobs(doc *entities.Document) []stageJob {

	var jobs []stageJob
	for pi := range doc.Hierarchy.Provinces {
		province := &doc.Hierarchy.Provinces[pi]
		for ci := range province.Cities {
			provinceCode, city := province.Code, &province.Cities[ci]
			jobs = append(jobs, stageJob{parentCode: city.Code, fetch: func(ctx context.Context) error {
				regions, err := b.client.Districts(ctx, provinceCode, city.Code)
				if err != nil {
					return err
				}
				city.Districts = lo.Map(regions, func(r entities.Region, _ int) entities.District {
					return entities.NewDistrict(r)
				})
				return nil
			}})
		}
	}
	return jobs
}

func (b *HierarchyBuilder) villageJobs(doc *entities.Document) []stageJob {

	var jobs []stageJob
	for pi := range doc.Hierarchy.Provinces {
		province := &doc.Hierarchy.Provinces[pi]
		for ci := range province.Cities {
			city := &province.Cities[ci]
			for di := range city.Districts {
				provinceCode, cityCode, district := province.Code, city.Code, &city.Districts[di]
				jobs = append(jobs, stageJob{parentCode: district.Code, fetch: func(ctx context.Context) error {
					regions, err := b.client.Villages(ctx, provinceCode, cityCode, district.Code)
					if err != nil {
						return err
					}
					district.Villages = lo.Map(regions, func(r entities.Region, _ int) entities.Village {
						return entities.NewVillage(r)
					})
					return nil
				}})
			}
		}
	}
	return jobs
}

func (b *HierarchyBuilder) runStage(ctx context.Context, level entities.Level, jobs []stageJob, report *Report) error {

	stageCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, b.maxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var fatal error

	for _, job := range jobs {
		if stageCtx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(job stageJob) {
			defer wg.Done()
			defer func() { <-sem }()

			err := job.fetch(stageCtx)
			if err == nil || errors.Is(err, context.Canceled) {
				return
			}

			mu.Lock()
			report.Failures[level]++
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("%s children of %s lost: %v", level, job.parentCode, err))
			if b.failFast && fatal == nil {
				fatal = errors.Wrapf(err, "fetch %s children of %s", level, job.parentCode)
				cancel()
			}
			mu.Unlock()

			log.WithField(logger.ErrorTypeField, logger.ErrorTypeBansos).
				Errorf("failed to fetch %s children of %s: %v", level, job.parentCode, err)
			b.bus.Publish(events.FetchFailedTopic, events.FetchFailed{
				Level:      level,
				ParentCode: job.parentCode,
				Err:        err,
			})
		}(job)
	}
	wg.Wait()

	if fatal != nil {
		return fatal
	}
	if ctx.Err() != nil {
		report.Canceled = true
	}
	return nil
}
