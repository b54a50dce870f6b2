package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/gosubfetch/internal/cache"
	"github.com/amaumene/gosubfetch/internal/config"
	"github.com/amaumene/gosubfetch/internal/database"
	"github.com/amaumene/gosubfetch/pkg/logger"
)

func TestNewContainer(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	c := NewContainer(cfg, nil, logger.Discard())
	assert.NotNil(t, c.Resolver)
	assert.NotNil(t, c.Host)
	assert.NotNil(t, c.Acquirer)
	assert.NotNil(t, c.Pipeline)
	assert.NotNil(t, c.Cache)
	assert.NotNil(t, c.Cleanup)
}

func TestCleanupRemovesStaleArchives(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "show", "Old.Release.zip")
	fresh := filepath.Join(dir, "New.Release.zip")
	subtitle := filepath.Join(dir, "Old.Release.srt")

	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	for _, p := range []string{stale, fresh, subtitle} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))
	require.NoError(t, os.Chtimes(subtitle, old, old))

	svc := NewCleanupService(nil, nil, dir, time.Hour, logger.Discard())
	svc.CleanupNow()

	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)
	assert.FileExists(t, subtitle)
}

func TestCleanupPurgesStoreAndCache(t *testing.T) {
	db, err := database.NewBolt(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.StoreCatalogID(&database.CatalogEntry{
		Query:     "Old+1999",
		CatalogID: "tt1",
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}))
	require.NoError(t, db.StoreCatalogID(&database.CatalogEntry{
		Query:     "New+2024",
		CatalogID: "tt2",
		CreatedAt: time.Now(),
	}))

	c := cache.New[string](10, time.Nanosecond)
	c.Set("Old+1999", "tt1")
	time.Sleep(time.Millisecond)

	svc := NewCleanupService(db, c, "", 24*time.Hour, logger.Discard())
	svc.CleanupNow()

	entry, err := db.GetCatalogID("Old+1999")
	require.NoError(t, err)
	assert.Nil(t, entry)

	entry, err = db.GetCatalogID("New+2024")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "tt2", entry.CatalogID)

	assert.Zero(t, c.Len())
}

func TestCleanupStopWithoutStart(t *testing.T) {
	svc := NewCleanupService(nil, nil, "", time.Hour, logger.Discard())
	assert.NotPanics(t, svc.Stop)
}
