// Package constants defines numerical limits used by caches and rate limiters.
package constants

const (
	// Catalog id cache
	DefaultCacheSize = 1000
	DefaultCacheTTL  = 24 * 7 // hours

	// Search engine pacing
	SearchRateLimit = 1 // requests per second
	SearchRateBurst = 2

	// Subtitle host pacing
	SubtitleHostRateLimit = 2
	SubtitleHostRateBurst = 4

	// Number of candidate rows shown in debug logs
	MaxCandidatesToLog = 5
)
