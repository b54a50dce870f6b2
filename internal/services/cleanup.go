package services

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/amaumene/gosubfetch/internal/cache"
	"github.com/amaumene/gosubfetch/internal/constants"
	"github.com/amaumene/gosubfetch/internal/database"
	"github.com/amaumene/gosubfetch/pkg/logger"
)

// CleanupService periodically expires cached catalog ids, purges stored ones
// and removes subtitle archives left behind by interrupted runs.
type CleanupService struct {
	db              database.Database
	cache           *cache.LRUCache[string]
	subtitlesDir    string
	logger          logger.Logger
	interval        time.Duration
	retentionPeriod time.Duration
	archiveMaxAge   time.Duration
	mu              sync.Mutex
	running         bool
	stopChan        chan struct{}
}

// NewCleanupService creates a new cleanup service. Stored catalog ids older
// than retention are purged.
func NewCleanupService(db database.Database, c *cache.LRUCache[string], subtitlesDir string, retention time.Duration, log logger.Logger) *CleanupService {
	if log == nil {
		log = logger.New()
	}
	return &CleanupService{
		db:              db,
		cache:           c,
		subtitlesDir:    subtitlesDir,
		logger:          log,
		interval:        constants.CacheCleanupInterval,
		retentionPeriod: retention,
		archiveMaxAge:   constants.StaleArchiveAge,
		stopChan:        make(chan struct{}),
	}
}

// SetInterval sets how often cleanup runs
func (c *CleanupService) SetInterval(duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.interval = duration
}

// Start begins the cleanup service
func (c *CleanupService) Start(ctx context.Context) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	interval := c.interval
	c.mu.Unlock()

	c.logger.Infof("[Cleanup] starting cleanup service with interval: %v, retention: %v", interval, c.retentionPeriod)

	c.performCleanup()
	go c.cleanupLoop(ctx, interval)
}

// Stop stops the cleanup service
func (c *CleanupService) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}

	c.running = false
	close(c.stopChan)
	c.logger.Infof("[Cleanup] cleanup service stopped")
}

func (c *CleanupService) cleanupLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.Stop()
			return
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.performCleanup()
		}
	}
}

// CleanupNow performs immediate cleanup
func (c *CleanupService) CleanupNow() {
	c.performCleanup()
}

func (c *CleanupService) performCleanup() {
	expired := 0
	if c.cache != nil {
		expired = c.cache.CleanExpired()
	}

	purged := 0
	if c.db != nil && c.retentionPeriod > 0 {
		n, err := c.db.PurgeOlderThan(c.retentionPeriod)
		if err != nil {
			c.logger.Errorf("[Cleanup] failed to purge catalog store: %v", err)
		}
		purged = n
	}

	archives := c.removeStaleArchives()
	c.logger.Debugf("[Cleanup] cleanup completed: %d cached ids expired, %d stored ids purged, %d archives removed", expired, purged, archives)
}

// removeStaleArchives deletes .zip files under the subtitles directory that
// are older than archiveMaxAge. Younger archives may belong to a running download.
func (c *CleanupService) removeStaleArchives() int {
	if c.subtitlesDir == "" {
		return 0
	}

	cutoff := time.Now().Add(-c.archiveMaxAge)
	removed := 0
	err := filepath.WalkDir(c.subtitlesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), constants.ArchiveExt) {
			return nil
		}
		info, err := d.Info()
		if err != nil || info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			c.logger.Warnf("[Cleanup] failed to remove stale archive %s: %v", path, err)
			return nil
		}
		removed++
		return nil
	})
	if err != nil {
		c.logger.Warnf("[Cleanup] failed to scan %s: %v", c.subtitlesDir, err)
	}
	return removed
}
