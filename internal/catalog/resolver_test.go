package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/amaumene/gosubfetch/internal/cache"
	"github.com/amaumene/gosubfetch/internal/database"
	"github.com/amaumene/gosubfetch/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	link  string
	found bool
	err   error
	calls int
}

func (f *fakeEngine) FindCatalogLink(ctx context.Context, query string) (string, bool, error) {
	f.calls++
	return f.link, f.found, f.err
}

func TestResolveFound(t *testing.T) {
	engine := &fakeEngine{link: "https://www.imdb.com/title/tt0133093/", found: true}
	r := NewResolver(engine, cache.New[string](10, time.Hour), nil, logger.Discard())

	id, found, err := r.Resolve(context.Background(), "The.Matrix+1999")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "tt0133093", id)

	// Second lookup is served from the cache.
	id, found, err = r.Resolve(context.Background(), "The.Matrix+1999")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "tt0133093", id)
	assert.Equal(t, 1, engine.calls)
}

func TestResolveNotFound(t *testing.T) {
	r := NewResolver(&fakeEngine{}, nil, nil, logger.Discard())

	id, found, err := r.Resolve(context.Background(), "Unknown+2001")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, id)
}

func TestResolveLinkWithoutID(t *testing.T) {
	r := NewResolver(&fakeEngine{link: "https://www.imdb.com/title/", found: true}, nil, nil, logger.Discard())

	_, found, err := r.Resolve(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestResolveEngineFailure(t *testing.T) {
	boom := errors.New("dns failure")
	r := NewResolver(&fakeEngine{err: boom}, nil, nil, logger.Discard())

	_, found, err := r.Resolve(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
	assert.False(t, found)
}

func TestResolveUsesDatabase(t *testing.T) {
	db, err := database.NewBolt(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer db.Close()

	engine := &fakeEngine{link: "https://www.imdb.com/title/tt0000001/", found: true}
	first := NewResolver(engine, nil, db, logger.Discard())
	_, _, err = first.Resolve(context.Background(), "Old.Film+1968")
	require.NoError(t, err)

	// A fresh resolver sharing the database does not hit the engine.
	second := NewResolver(engine, cache.New[string](10, time.Hour), db, logger.Discard())
	id, found, err := second.Resolve(context.Background(), "Old.Film+1968")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "tt0000001", id)
	assert.Equal(t, 1, engine.calls)
}
