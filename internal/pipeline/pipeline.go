// Package pipeline turns a release path into a subtitle file next to it.
//
// A run walks Idle, NameParsed, CatalogResolved, SourceFound, Downloaded,
// Extracted and ends in Done or Failed. A release whose subtitle already
// exists ends in Skipped before any network call. Every run that is not
// skipped leaves exactly one transcript at {base}.srt.txt.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amaumene/gosubfetch/internal/acquire"
	"github.com/amaumene/gosubfetch/internal/constants"
	apperrors "github.com/amaumene/gosubfetch/internal/errors"
	"github.com/amaumene/gosubfetch/internal/metrics"
	"github.com/amaumene/gosubfetch/internal/release"
	"github.com/amaumene/gosubfetch/internal/subhost"
	"github.com/amaumene/gosubfetch/internal/transcript"
	"github.com/amaumene/gosubfetch/pkg/logger"
)

type State string

const (
	StateIdle            State = "idle"
	StateNameParsed      State = "name_parsed"
	StateCatalogResolved State = "catalog_resolved"
	StateSourceFound     State = "source_found"
	StateDownloaded      State = "downloaded"
	StateExtracted       State = "extracted"
	StateDone            State = "done"
	StateSkipped         State = "skipped"
	StateFailed          State = "failed"
)

// stageAfter names the step that runs once a run has reached a state.
var stageAfter = map[State]string{
	StateIdle:            "parse",
	StateNameParsed:      "resolve",
	StateCatalogResolved: "list",
	StateSourceFound:     "download",
	StateDownloaded:      "extract",
	StateExtracted:       "cleanup",
}

// Resolver maps search text to a catalog identifier.
type Resolver interface {
	Resolve(ctx context.Context, searchText string) (id string, found bool, err error)
}

// SourceFinder picks the subtitle archive for a catalog identifier.
type SourceFinder interface {
	SearchURL(catalogID string) string
	FindSource(ctx context.Context, catalogID, filename string) (subhost.Selection, bool, error)
}

// Acquirer downloads an archive and extracts its subtitle next to base.
type Acquirer interface {
	Acquire(ctx context.Context, link, base string, obs acquire.Observer) (*acquire.Result, error)
}

// Outcome reports how far a run got and what it produced.
type Outcome struct {
	RunID          string             `json:"runId,omitempty"`
	State          State              `json:"state"`
	SubtitlePath   string             `json:"subtitlePath"`
	TranscriptPath string             `json:"transcriptPath,omitempty"`
	CatalogID      string             `json:"catalogId,omitempty"`
	Selection      *subhost.Selection `json:"selection,omitempty"`
	OriginalName   string             `json:"originalName,omitempty"`
}

type Pipeline struct {
	resolver Resolver
	finder   SourceFinder
	acquirer Acquirer
	logger   logger.Logger
}

func New(resolver Resolver, finder SourceFinder, acquirer Acquirer, log logger.Logger) *Pipeline {
	if log == nil {
		log = logger.New()
	}
	return &Pipeline{
		resolver: resolver,
		finder:   finder,
		acquirer: acquirer,
		logger:   log,
	}
}

// run is the mutable state of one Produce call.
type run struct {
	outcome    *Outcome
	transcript *transcript.Transcript
	logger     logger.Logger
}

func (r *run) advance(s State) {
	r.logger.Debugf("state %s -> %s", r.outcome.State, s)
	r.outcome.State = s
}

func (r *run) Downloaded(archivePath string) {
	r.transcript.Add("link downloaded", archivePath)
	r.advance(StateDownloaded)
}

func (r *run) Extracted(originalName string) {
	r.outcome.OriginalName = originalName
	r.transcript.Add("subtitle extracted")
	r.transcript.Add("original subtitle name:", originalName)
	r.advance(StateExtracted)
}

func (r *run) ArchiveDeleted(string) {
	r.transcript.Add("zip file deleted")
}

// Produce runs the pipeline for releasePath. The returned outcome is non-nil
// unless releasePath is unusable.
func (p *Pipeline) Produce(ctx context.Context, releasePath string) (*Outcome, error) {
	releasePath = strings.TrimSpace(releasePath)
	filename := filepath.Base(releasePath)
	if releasePath == "" || filename == "." || filename == string(filepath.Separator) {
		return nil, apperrors.NewInputError("release path is empty")
	}

	base := strings.TrimSuffix(releasePath, filepath.Ext(filename))
	outcome := &Outcome{
		State:        StateIdle,
		SubtitlePath: base + constants.SubtitleExt,
	}

	if _, err := os.Stat(outcome.SubtitlePath); err == nil {
		p.logger.Infof("[Pipeline] subtitle already exists: %s", outcome.SubtitlePath)
		outcome.State = StateSkipped
		metrics.RunsTotal.WithLabelValues(string(StateSkipped)).Inc()
		return outcome, nil
	}

	outcome.RunID = uuid.NewString()
	outcome.TranscriptPath = base + constants.TranscriptExt
	runLogger := logger.WithPrefix(p.logger, fmt.Sprintf("[Run %s] ", outcome.RunID))
	r := &run{
		outcome:    outcome,
		transcript: transcript.New(runLogger),
		logger:     runLogger,
	}

	start := time.Now()
	runLogger.Infof("producing subtitle for %s", releasePath)

	err := p.produce(ctx, r, filename, base)
	metrics.RunDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		return p.fail(r, err)
	}

	r.advance(StateDone)
	if err := r.transcript.Flush(outcome.TranscriptPath); err != nil {
		metrics.StageFailuresTotal.WithLabelValues("transcript").Inc()
		metrics.RunsTotal.WithLabelValues(string(StateFailed)).Inc()
		outcome.State = StateFailed
		return outcome, apperrors.NewFilesystemError("failed to write transcript", err)
	}

	metrics.RunsTotal.WithLabelValues(string(StateDone)).Inc()
	runLogger.Infof("subtitle ready: %s", outcome.SubtitlePath)
	return outcome, nil
}

func (p *Pipeline) produce(ctx context.Context, r *run, filename, base string) error {
	info := release.Parse(filename)
	r.transcript.Add("release parsed", info)
	r.advance(StateNameParsed)

	searchText := info.SearchText()
	id, found, err := p.resolver.Resolve(ctx, searchText)
	if err != nil {
		return apperrors.NewResolutionError(searchText, err)
	}
	if !found {
		return apperrors.NewResolutionError(searchText, nil)
	}
	r.outcome.CatalogID = id
	r.transcript.Add("found imdb id", id)
	r.advance(StateCatalogResolved)

	r.transcript.Add("url", p.finder.SearchURL(id))
	sel, found, err := p.finder.FindSource(ctx, id, filename)
	if err != nil {
		return apperrors.NewSubtitleHostError(id, err)
	}
	r.transcript.Add("got response")
	if !found {
		return apperrors.NewNoCandidateError(id)
	}
	r.outcome.Selection = &sel
	if !sel.Direct {
		r.transcript.Add("best match", sel.Candidate)
	}
	r.transcript.Add("download link", sel.Link)
	r.advance(StateSourceFound)

	if _, err := p.acquirer.Acquire(ctx, sel.Link, base, r); err != nil {
		if apperrors.TypeOf(err) == "" {
			err = apperrors.NewDownloadError(sel.Link, err)
		}
		return err
	}
	return nil
}

// fail appends the error to the transcript and flushes it. A transcript that
// cannot be written is logged; the run's own error is what gets returned.
func (p *Pipeline) fail(r *run, err error) (*Outcome, error) {
	stage := stageAfter[r.outcome.State]
	metrics.StageFailuresTotal.WithLabelValues(stage).Inc()
	metrics.RunsTotal.WithLabelValues(string(StateFailed)).Inc()

	r.logger.Errorf("failed during %s", stage)
	r.transcript.Add(err.Error())
	if flushErr := r.transcript.Flush(r.outcome.TranscriptPath); flushErr != nil {
		r.logger.Errorf("failed to write transcript %s: %v", r.outcome.TranscriptPath, flushErr)
	}

	r.outcome.State = StateFailed
	return r.outcome, err
}
