package constants

// Provider names used in log tags and metric labels
const (
	ProviderGoogle        = "google"
	ProviderOpenSubtitles = "opensubtitles"
)
