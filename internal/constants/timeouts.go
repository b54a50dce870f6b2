// Package constants defines timeout values used throughout the application.
package constants

import "time"

const (
	// HTTPTimeout bounds a single upstream request, archive download included.
	HTTPTimeout = 30 * time.Second

	// DatabaseOpenTimeout bounds waiting for the bolt file lock.
	DatabaseOpenTimeout = time.Second

	// CacheCleanupInterval is how often expired catalog ids are purged.
	CacheCleanupInterval = time.Hour

	// StaleArchiveAge is how old a leftover .zip must be before cleanup deletes it.
	StaleArchiveAge = time.Hour

	ServerShutdownTimeout = 10 * time.Second
)
