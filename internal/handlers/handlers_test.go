package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/gosubfetch/internal/config"
	apperrors "github.com/amaumene/gosubfetch/internal/errors"
	"github.com/amaumene/gosubfetch/internal/pipeline"
	"github.com/amaumene/gosubfetch/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeProducer struct {
	err   error
	paths []string
}

func (f *fakeProducer) Produce(ctx context.Context, releasePath string) (*pipeline.Outcome, error) {
	f.paths = append(f.paths, releasePath)
	if f.err != nil {
		return &pipeline.Outcome{State: pipeline.StateFailed}, f.err
	}
	sub := strings.TrimSuffix(releasePath, filepath.Ext(releasePath)) + ".srt"
	if err := os.WriteFile(sub, []byte("1\n00:00:01,000 --> 00:00:02,000\nOi\n"), 0o644); err != nil {
		return nil, err
	}
	return &pipeline.Outcome{State: pipeline.StateDone, SubtitlePath: sub}, nil
}

func setupRouter(t *testing.T, producer Producer) (*gin.Engine, *config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.SubtitlesDir = t.TempDir()
	cfg.StaticDir = t.TempDir()

	r := gin.New()
	New(producer, cfg, http.NotFoundHandler(), logger.Discard()).RegisterRoutes(r)
	return r, cfg
}

func get(r *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestReleaseServesSubtitle(t *testing.T) {
	producer := &fakeProducer{}
	r, cfg := setupRouter(t, producer)

	w := get(r, "/release/The.Matrix.1999.1080p.WEB-DL.x264.srt")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "00:00:01,000")
	require.Len(t, producer.paths, 1)
	assert.Equal(t, filepath.Join(cfg.SubtitlesDir, "The.Matrix.1999.1080p.WEB-DL.x264.srt"), producer.paths[0])
}

func TestReleaseErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.NewInputError("empty"), http.StatusBadRequest},
		{apperrors.NewResolutionError("x+1999", nil), http.StatusNotFound},
		{apperrors.NewNoCandidateError("tt1"), http.StatusNotFound},
		{apperrors.NewSubtitleHostError("tt1", nil), http.StatusBadGateway},
		{apperrors.NewDownloadError("http://x", nil), http.StatusBadGateway},
		{apperrors.NewExtractionError("x.zip", nil), http.StatusBadGateway},
		{apperrors.NewFilesystemError("disk full", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		r, _ := setupRouter(t, &fakeProducer{err: tt.err})
		w := get(r, "/release/Movie.2020.mkv")
		assert.Equal(t, tt.want, w.Code, apperrors.TypeOf(tt.err))

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tt.err.Error(), body["error"])
	}
}

func TestReleaseRejectsTraversal(t *testing.T) {
	producer := &fakeProducer{}
	r, _ := setupRouter(t, producer)

	w := get(r, "/release/a/%2e%2e/%2e%2e/etc/passwd")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, producer.paths)

	w = get(r, "/release/")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogServesTranscript(t *testing.T) {
	r, cfg := setupRouter(t, &fakeProducer{})
	transcript := filepath.Join(cfg.SubtitlesDir, "Movie.2020.WEB.srt.txt")
	require.NoError(t, os.WriteFile(transcript, []byte("release parsed {}\nfound imdb id tt1"), 0o644))

	w := get(r, "/log/Movie.2020.WEB.srt.txt")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "found imdb id tt1")

	// A release name maps to its transcript.
	w = get(r, "/log/Movie.2020.WEB.mkv")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "release parsed")
}

func TestLogNotFound(t *testing.T) {
	r, _ := setupRouter(t, &fakeProducer{})

	w := get(r, "/log/Unknown.srt.txt")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStaticFallback(t *testing.T) {
	r, cfg := setupRouter(t, &fakeProducer{})
	require.NoError(t, os.WriteFile(filepath.Join(cfg.StaticDir, "app.js"), []byte("console.log('gosubfetch')"), 0o644))

	w := get(r, "/app.js")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gosubfetch")
}
