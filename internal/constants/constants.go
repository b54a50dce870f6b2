// Package constants defines application-wide constants and default values.
package constants

const (
	AppName    = "gosubfetch"
	AppVersion = "1.0.0"

	// Default configuration values
	DefaultPort         = "3000"
	DefaultLogLevel     = "info"
	DefaultSubtitlesDir = "./subtitles"
	DefaultStaticDir    = "./static"
	DefaultDatabasePath = "./cache.db"

	// Upstream sites
	DefaultSearchURL       = "https://www.google.com/search"
	DefaultSubtitleHostURL = "https://www.opensubtitles.org"
	DefaultSubtitleLang    = "pob"

	// Output artifacts
	SubtitleExt   = ".srt"
	TranscriptExt = ".srt.txt"
	ArchiveExt    = ".zip"
)
