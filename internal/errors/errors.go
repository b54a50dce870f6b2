// Package errors defines the typed errors surfaced by the subtitle pipeline.
// Lookups and listings return plain wrapped errors that the orchestrator
// classifies; acquisition already knows its failure kind and returns these.
package errors

import (
	stderrors "errors"
	"fmt"
)

// PipelineError represents a terminal failure of one pipeline run.
type PipelineError struct {
	Type    string
	Message string
	Cause   error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Error type constants
const (
	ErrorTypeInput        = "INPUT_INVALID"
	ErrorTypeResolution   = "CATALOG_UNRESOLVED"
	ErrorTypeNoCandidate  = "NO_CANDIDATE"
	ErrorTypeSubtitleHost = "SUBTITLE_HOST_FAILURE"
	ErrorTypeDownload     = "DOWNLOAD_FAILED"
	ErrorTypeExtraction   = "EXTRACTION_FAILED"
	ErrorTypeFilesystem   = "FILESYSTEM_FAILURE"
)

// NewPipelineError creates a new PipelineError
func NewPipelineError(errorType, message string, cause error) *PipelineError {
	return &PipelineError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NewInputError reports a missing or unusable release name.
func NewInputError(message string) *PipelineError {
	return NewPipelineError(ErrorTypeInput, message, nil)
}

// NewResolutionError reports that no catalog identifier could be found.
func NewResolutionError(query string, cause error) *PipelineError {
	return NewPipelineError(ErrorTypeResolution, fmt.Sprintf("no catalog id found for %q", query), cause)
}

// NewNoCandidateError reports an empty subtitle listing.
func NewNoCandidateError(catalogID string) *PipelineError {
	return NewPipelineError(ErrorTypeNoCandidate, fmt.Sprintf("no subtitle candidates for %s", catalogID), nil)
}

// NewSubtitleHostError reports that the subtitle listing page could not be fetched.
func NewSubtitleHostError(catalogID string, cause error) *PipelineError {
	return NewPipelineError(ErrorTypeSubtitleHost, fmt.Sprintf("subtitle listing for %s unavailable", catalogID), cause)
}

// NewDownloadError reports a network or stream failure while fetching the archive.
func NewDownloadError(link string, cause error) *PipelineError {
	return NewPipelineError(ErrorTypeDownload, fmt.Sprintf("download of %s failed", link), cause)
}

// NewExtractionError reports an archive without a usable subtitle entry.
func NewExtractionError(archive string, cause error) *PipelineError {
	return NewPipelineError(ErrorTypeExtraction, fmt.Sprintf("no subtitle extracted from %s", archive), cause)
}

// NewFilesystemError reports a rename, write or delete failure.
func NewFilesystemError(message string, cause error) *PipelineError {
	return NewPipelineError(ErrorTypeFilesystem, message, cause)
}

// TypeOf returns the Type of the first PipelineError in err's chain, or "".
func TypeOf(err error) string {
	var pe *PipelineError
	if stderrors.As(err, &pe) {
		return pe.Type
	}
	return ""
}

// IsType reports whether err carries a PipelineError of the given type.
func IsType(err error, errorType string) bool {
	return err != nil && TypeOf(err) == errorType
}
