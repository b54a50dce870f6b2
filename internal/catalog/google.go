package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/amaumene/gosubfetch/internal/constants"
	"github.com/amaumene/gosubfetch/internal/metrics"
	"github.com/amaumene/gosubfetch/internal/scrape"
	"github.com/amaumene/gosubfetch/pkg/httputil"
	"github.com/amaumene/gosubfetch/pkg/logger"
	"github.com/amaumene/gosubfetch/pkg/ratelimiter"
)

const titlePathPrefix = "/title/"

var (
	catalogHosts = map[string]bool{
		"imdb.com":     true,
		"www.imdb.com": true,
		"m.imdb.com":   true,
	}
	catalogIDRegex = regexp.MustCompile(`^/title/([A-Za-z]{2}\d+)`)
)

// SearchEngine finds the first catalog title link a web search returns for query.
type SearchEngine interface {
	FindCatalogLink(ctx context.Context, query string) (link string, found bool, err error)
}

// Google scrapes the HTML result page of a Google-compatible search endpoint.
type Google struct {
	searchURL   string
	userAgent   string
	httpClient  *http.Client
	rateLimiter ratelimiter.RateLimiter
	logger      logger.Logger
}

func NewGoogle(searchURL, userAgent string, client *http.Client, limiter ratelimiter.RateLimiter, log logger.Logger) *Google {
	if searchURL == "" {
		searchURL = constants.DefaultSearchURL
	}
	if client == nil {
		client = httputil.NewDefaultHTTPClient()
	}
	if limiter == nil {
		limiter = ratelimiter.NewTokenBucket(constants.SearchRateBurst, constants.SearchRateLimit)
	}
	if log == nil {
		log = logger.New()
	}
	return &Google{
		searchURL:   searchURL,
		userAgent:   userAgent,
		httpClient:  client,
		rateLimiter: limiter,
		logger:      log,
	}
}

// buildSearchURL escapes query fully; the "+" separator reaches the engine as %2B.
func (g *Google) buildSearchURL(query string) string {
	return fmt.Sprintf("%s?q=%s", g.searchURL, url.QueryEscape(query))
}

func (g *Google) FindCatalogLink(ctx context.Context, query string) (string, bool, error) {
	if err := g.rateLimiter.Wait(ctx); err != nil {
		return "", false, err
	}

	searchURL := g.buildSearchURL(query)
	g.logger.Debugf("[Google] searching catalog link - URL: %s", searchURL)

	start := time.Now()
	resp, err := httputil.Get(ctx, g.httpClient, searchURL, g.userAgent)
	metrics.ObserveProvider(constants.ProviderGoogle, start, err)
	if err != nil {
		return "", false, fmt.Errorf("search engine request failed: %w", err)
	}
	defer resp.Body.Close()

	doc, err := scrape.Parse(resp.Body)
	if err != nil {
		return "", false, err
	}

	link, found := FirstCatalogLink(doc)
	g.logger.Debugf("[Google] catalog link for %q: %q (found: %t)", query, link, found)
	return link, found, nil
}

// FirstCatalogLink returns the first anchor target in doc that points at a
// catalog title page, following Google "/url?q=" redirect wrappers.
func FirstCatalogLink(doc *html.Node) (string, bool) {
	for _, a := range scrape.FindAll(doc, scrape.Tag("a")) {
		href, ok := scrape.Attr(a, "href")
		if !ok {
			continue
		}
		if target, ok := catalogTarget(href); ok {
			return target, true
		}
	}
	return "", false
}

func catalogTarget(href string) (string, bool) {
	if strings.HasPrefix(href, "/url?") {
		u, err := url.Parse(href)
		if err != nil {
			return "", false
		}
		href = u.Query().Get("q")
	}

	u, err := url.Parse(href)
	if err != nil || !catalogHosts[strings.ToLower(u.Host)] {
		return "", false
	}
	if !strings.HasPrefix(u.Path, titlePathPrefix) {
		return "", false
	}
	return u.String(), true
}

// ExtractID returns the catalog identifier (two letters followed by digits)
// embedded in a title link.
func ExtractID(link string) (string, bool) {
	u, err := url.Parse(link)
	if err != nil {
		return "", false
	}
	m := catalogIDRegex.FindStringSubmatch(u.Path)
	if m == nil {
		return "", false
	}
	return m[1], true
}
