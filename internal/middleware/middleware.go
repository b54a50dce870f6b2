package middleware

import (
	"compress/gzip"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/gosubfetch/internal/metrics"
	"github.com/amaumene/gosubfetch/pkg/logger"
)

type gzipResponseWriter struct {
	gin.ResponseWriter
	gzipWriter  *gzip.Writer
	passThrough bool
}

// WriteHeader drops Content-Length, which file responses set to the
// uncompressed size. Bodiless and partial responses are sent as is.
func (w *gzipResponseWriter) WriteHeader(code int) {
	switch code {
	case http.StatusNoContent, http.StatusPartialContent, http.StatusNotModified:
		w.Header().Del("Content-Encoding")
		w.passThrough = true
	default:
		w.Header().Del("Content-Length")
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	if w.passThrough {
		return w.ResponseWriter.Write(data)
	}
	w.Header().Del("Content-Length")
	if w.gzipWriter == nil {
		w.gzipWriter = gzip.NewWriter(w.ResponseWriter)
	}
	return w.gzipWriter.Write(data)
}

func (w *gzipResponseWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *gzipResponseWriter) close() error {
	if w.gzipWriter == nil {
		if !w.Written() {
			w.Header().Del("Content-Encoding")
		}
		return nil
	}
	return w.gzipWriter.Close()
}

// Gzip compresses responses for clients that accept it. Range requests are
// left alone so byte offsets keep referring to the stored file.
func Gzip(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") || c.GetHeader("Range") != "" {
			c.Next()
			return
		}

		c.Header("Content-Encoding", "gzip")
		c.Header("Vary", "Accept-Encoding")

		gw := &gzipResponseWriter{ResponseWriter: c.Writer}
		defer func() {
			if err := gw.close(); err != nil {
				log.Errorf("[HTTP] failed to close gzip writer: %v", err)
			}
		}()

		c.Writer = gw
		c.Next()
	}
}

func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func Logger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		clientIP := c.ClientIP()
		method := c.Request.Method
		statusCode := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		switch {
		case statusCode >= 500:
			log.Errorf("[HTTP] %s %s %d %v %s", clientIP, method, statusCode, latency, path)
		case statusCode >= 400:
			log.Warnf("[HTTP] %s %s %d %v %s", clientIP, method, statusCode, latency, path)
		default:
			log.Infof("[HTTP] %s %s %d %v %s", clientIP, method, statusCode, latency, path)
		}
	}
}

// Metrics records request counts and latencies by matched route. Unmatched
// requests are grouped under "static".
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "static"
		}
		method := c.Request.Method
		metrics.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
