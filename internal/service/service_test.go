package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/damoang/angple-cms/internal/domain"
	"github.com/damoang/angple-cms/internal/migration"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, migration.Run(db))
	return db
}

// recordingPublisher keeps published events in memory
type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Name)
	}
	return out
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

func (p *recordingPublisher) last() Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

// recordingIndexer keeps index calls in memory
type recordingIndexer struct {
	mu      sync.Mutex
	indexed []string
	removed []string
}

func (i *recordingIndexer) IndexContent(_ context.Context, c *domain.Content) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.indexed = append(i.indexed, c.ContentID)
	return nil
}

func (i *recordingIndexer) RemoveContent(_ context.Context, _, contentID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.removed = append(i.removed, contentID)
	return nil
}

func strPtr(v string) *string { return &v }
