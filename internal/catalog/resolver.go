// Package catalog resolves a release search text to its catalog (IMDb)
// identifier. The scraping strategy lives behind SearchEngine so markup
// changes stay inside one adapter.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/amaumene/gosubfetch/internal/cache"
	"github.com/amaumene/gosubfetch/internal/database"
	"github.com/amaumene/gosubfetch/internal/metrics"
	"github.com/amaumene/gosubfetch/pkg/logger"
)

// Resolver looks up catalog ids through the memory cache, the database and
// finally the search engine.
type Resolver struct {
	engine SearchEngine
	cache  *cache.LRUCache[string]
	db     database.Database
	logger logger.Logger
}

// NewResolver wires a resolver. cache and db may be nil.
func NewResolver(engine SearchEngine, c *cache.LRUCache[string], db database.Database, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.New()
	}
	return &Resolver{engine: engine, cache: c, db: db, logger: log}
}

// Resolve returns the catalog id for searchText. found is false when the
// search engine returned no usable link; err is reserved for failures to
// reach or read the search engine.
func (r *Resolver) Resolve(ctx context.Context, searchText string) (id string, found bool, err error) {
	if id, ok := r.lookupCached(searchText); ok {
		return id, true, nil
	}

	link, found, err := r.engine.FindCatalogLink(ctx, searchText)
	if err != nil {
		return "", false, fmt.Errorf("resolve %q: %w", searchText, err)
	}
	if !found {
		metrics.CatalogLookupsTotal.WithLabelValues("miss").Inc()
		return "", false, nil
	}

	id, ok := ExtractID(link)
	if !ok {
		r.logger.Warnf("[Catalog] link %s carries no catalog id", link)
		metrics.CatalogLookupsTotal.WithLabelValues("miss").Inc()
		return "", false, nil
	}

	metrics.CatalogLookupsTotal.WithLabelValues("search").Inc()
	r.remember(searchText, id)
	return id, true, nil
}

func (r *Resolver) lookupCached(searchText string) (string, bool) {
	if r.cache != nil {
		if id, ok := r.cache.Get(searchText); ok {
			r.logger.Debugf("[Catalog] cache hit for %q: %s", searchText, id)
			metrics.CatalogLookupsTotal.WithLabelValues("cache").Inc()
			return id, true
		}
	}

	if r.db != nil {
		entry, err := r.db.GetCatalogID(searchText)
		if err != nil {
			r.logger.Errorf("[Catalog] failed to read stored id: %v", err)
			return "", false
		}
		if entry != nil {
			if r.cache != nil {
				r.cache.Set(searchText, entry.CatalogID)
			}
			metrics.CatalogLookupsTotal.WithLabelValues("store").Inc()
			return entry.CatalogID, true
		}
	}

	return "", false
}

func (r *Resolver) remember(searchText, id string) {
	if r.cache != nil {
		r.cache.Set(searchText, id)
	}
	if r.db != nil {
		entry := &database.CatalogEntry{Query: searchText, CatalogID: id, CreatedAt: time.Now()}
		if err := r.db.StoreCatalogID(entry); err != nil {
			r.logger.Errorf("[Catalog] failed to store id: %v", err)
		}
	}
}
