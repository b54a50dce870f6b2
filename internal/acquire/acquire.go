// Package acquire downloads a subtitle archive next to a release and pulls
// the subtitle out of it.
package acquire

import (
	"archive/zip"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/amaumene/gosubfetch/internal/constants"
	apperrors "github.com/amaumene/gosubfetch/internal/errors"
	"github.com/amaumene/gosubfetch/pkg/httputil"
	"github.com/amaumene/gosubfetch/pkg/logger"
)

// ErrNoSubtitle is the cause of an extraction error for archives without a .srt entry.
var ErrNoSubtitle = stderrors.New("archive has no .srt entry")

// Observer is told about each completed step of an acquisition.
type Observer interface {
	Downloaded(archivePath string)
	Extracted(originalName string)
	ArchiveDeleted(archivePath string)
}

// Result describes the files produced by one acquisition.
type Result struct {
	ArchivePath  string `json:"archivePath"`
	SubtitlePath string `json:"subtitlePath"`
	OriginalName string `json:"originalName"`
}

type Acquirer struct {
	httpClient *http.Client
	userAgent  string
	logger     logger.Logger
}

func NewAcquirer(client *http.Client, userAgent string, log logger.Logger) *Acquirer {
	if client == nil {
		client = httputil.NewDefaultHTTPClient()
	}
	if log == nil {
		log = logger.New()
	}
	return &Acquirer{
		httpClient: client,
		userAgent:  userAgent,
		logger:     log,
	}
}

// Acquire downloads link to {base}.zip, extracts the subtitle to {base}.srt
// and deletes the archive. The archive never survives a failed run.
func (a *Acquirer) Acquire(ctx context.Context, link, base string, obs Observer) (*Result, error) {
	if obs == nil {
		obs = nopObserver{}
	}
	res := &Result{
		ArchivePath:  base + constants.ArchiveExt,
		SubtitlePath: base + constants.SubtitleExt,
	}

	if err := a.Download(ctx, link, res.ArchivePath); err != nil {
		return nil, err
	}
	obs.Downloaded(res.ArchivePath)

	original, err := Extract(res.ArchivePath, res.SubtitlePath)
	if err != nil {
		if rmErr := os.Remove(res.ArchivePath); rmErr != nil && !os.IsNotExist(rmErr) {
			a.logger.Warnf("[Acquire] failed to remove archive %s: %v", res.ArchivePath, rmErr)
		}
		return nil, err
	}
	res.OriginalName = original
	obs.Extracted(original)

	if err := os.Remove(res.ArchivePath); err != nil {
		return nil, apperrors.NewFilesystemError(fmt.Sprintf("failed to delete archive %s", res.ArchivePath), err)
	}
	obs.ArchiveDeleted(res.ArchivePath)

	return res, nil
}

// Download streams link into dest. A partial file is removed on failure.
func (a *Acquirer) Download(ctx context.Context, link, dest string) (err error) {
	a.logger.Debugf("[Acquire] downloading %s to %s", link, dest)

	resp, err := httputil.Get(ctx, a.httpClient, link, a.userAgent)
	if err != nil {
		return apperrors.NewDownloadError(link, err)
	}
	defer resp.Body.Close()

	f, err := os.Create(dest)
	if err != nil {
		return apperrors.NewFilesystemError(fmt.Sprintf("failed to create archive %s", dest), err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = apperrors.NewFilesystemError(fmt.Sprintf("failed to write archive %s", dest), closeErr)
		}
		if err != nil {
			os.Remove(dest)
		}
	}()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		return apperrors.NewDownloadError(link, err)
	}

	a.logger.Debugf("[Acquire] downloaded %d bytes from %s", n, link)
	return nil
}

// Extract copies the first .srt entry of archive to dest and returns the
// entry's name inside the archive. Entries are enumerated before anything is
// written, so dest is untouched when the archive holds no subtitle.
func Extract(archive, dest string) (string, error) {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return "", apperrors.NewExtractionError(archive, err)
	}
	defer r.Close()

	entry := firstSubtitle(r.File)
	if entry == nil {
		return "", apperrors.NewExtractionError(archive, ErrNoSubtitle)
	}

	if err := copyEntry(entry, dest); err != nil {
		return "", err
	}
	return entry.Name, nil
}

func firstSubtitle(files []*zip.File) *zip.File {
	for _, f := range files {
		if f.FileInfo().IsDir() {
			continue
		}
		if strings.EqualFold(path.Ext(f.Name), constants.SubtitleExt) {
			return f
		}
	}
	return nil
}

func copyEntry(entry *zip.File, dest string) (err error) {
	src, err := entry.Open()
	if err != nil {
		return apperrors.NewExtractionError(entry.Name, err)
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return apperrors.NewFilesystemError(fmt.Sprintf("failed to create subtitle %s", dest), err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = apperrors.NewFilesystemError(fmt.Sprintf("failed to write subtitle %s", dest), closeErr)
		}
		if err != nil {
			os.Remove(dest)
		}
	}()

	if _, err := io.Copy(out, src); err != nil {
		return apperrors.NewExtractionError(entry.Name, err)
	}
	return nil
}

type nopObserver struct{}

func (nopObserver) Downloaded(string)     {}
func (nopObserver) Extracted(string)      {}
func (nopObserver) ArchiveDeleted(string) {}
