package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wilayah-id/crawler/internal/entities"
)

func newTestContext(t *testing.T) *DbContext {
	t.Helper()

	dbContext, err := NewDbContext(":memory:")
	require.NoError(t, err)
	require.NoError(t, dbContext.Migrate())

	t.Cleanup(func() { _ = dbContext.Close() })
	return dbContext
}

func Test_Runs_LatestReturnsNilWhenEmpty(t *testing.T) {

	runs := NewRunsRepository(newTestContext(t).DB)

	latest, err := runs.Latest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func Test_Runs_AddAndReadBack(t *testing.T) {

	runs := NewRunsRepository(newTestContext(t).DB)

	first := entities.CrawlRun{
		StartedAt:  time.Now().Add(-2 * time.Hour),
		FinishedAt: time.Now().Add(-time.Hour),
		Provinces:  38, Cities: 514, Districts: 7277, Villages: 83763,
		OutputFile: "output/Hierarchy_data_20260831_010000.json",
	}
	second := entities.CrawlRun{
		StartedAt:     time.Now().Add(-30 * time.Minute),
		FinishedAt:    time.Now(),
		Provinces:     38, Cities: 514, Districts: 7276, Villages: 83001,
		FailedFetches: 1,
		OutputFile:    "output/Hierarchy_data_20260831_120000.json",
	}

	require.NoError(t, runs.Add(context.Background(), &first))
	require.NoError(t, runs.Add(context.Background(), &second))

	latest, err := runs.Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.OutputFile, latest.OutputFile)
	assert.Equal(t, 1, latest.FailedFetches)

	history, err := runs.Get(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
