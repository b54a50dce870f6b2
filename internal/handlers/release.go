package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/gosubfetch/internal/constants"
	apperrors "github.com/amaumene/gosubfetch/internal/errors"
)

func (h *Handler) handleRelease(c *gin.Context) {
	path, ok := h.resolveName(c)
	if !ok {
		return
	}

	outcome, err := h.producer.Produce(c.Request.Context(), path)
	if err != nil {
		h.logger.Warnf("[Release] %s: %v", path, err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	h.logger.Debugf("[Release] serving %s (%s)", outcome.SubtitlePath, outcome.State)
	c.File(outcome.SubtitlePath)
}

// handleLog serves a run transcript. A name without the .txt suffix is read
// as a release name and mapped to its transcript.
func (h *Handler) handleLog(c *gin.Context) {
	path, ok := h.resolveName(c)
	if !ok {
		return
	}

	if !strings.HasSuffix(path, ".txt") {
		path = strings.TrimSuffix(path, filepath.Ext(path)) + constants.TranscriptExt
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{"error": "log not found"})
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.File(path)
}

// resolveName maps the wildcard parameter into the subtitles directory. It
// writes a 400 response and returns false for names the validator rejects.
func (h *Handler) resolveName(c *gin.Context) (string, bool) {
	name := c.Param("name")
	if err := h.validator.Validate(name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	name = strings.TrimPrefix(name, "/")
	return filepath.Join(h.config.SubtitlesDir, filepath.FromSlash(name)), true
}

func statusFor(err error) int {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeInput:
		return http.StatusBadRequest
	case apperrors.ErrorTypeResolution, apperrors.ErrorTypeNoCandidate:
		return http.StatusNotFound
	case apperrors.ErrorTypeSubtitleHost, apperrors.ErrorTypeDownload, apperrors.ErrorTypeExtraction:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
