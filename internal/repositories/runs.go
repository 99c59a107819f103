package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wilayah-id/crawler/internal/entities"
)

// Runs keeps the history of crawl summaries, one row per completed run.
type Runs struct {
	db *gorm.DB
}

func NewRunsRepository(db *gorm.DB) *Runs {
	return &Runs{db: db}
}

func (repo *Runs) Add(ctx context.Context, run *entities.CrawlRun) error {
	return repo.db.WithContext(ctx).Create(run).Error
}

func (repo *Runs) Latest(ctx context.Context) (*entities.CrawlRun, error) {

	var run entities.CrawlRun
	if err := repo.db.WithContext(ctx).Order("started_at DESC").First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

func (repo *Runs) Get(ctx context.Context, limit int) ([]entities.CrawlRun, error) {

	var runs []entities.CrawlRun
	if err := repo.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
