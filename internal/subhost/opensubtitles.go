// Package subhost lists subtitle candidates on opensubtitles.org and picks
// the link to download for a release.
package subhost

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/net/html"

	"github.com/amaumene/gosubfetch/internal/constants"
	"github.com/amaumene/gosubfetch/internal/metrics"
	"github.com/amaumene/gosubfetch/internal/ranking"
	"github.com/amaumene/gosubfetch/internal/scrape"
	"github.com/amaumene/gosubfetch/pkg/httputil"
	"github.com/amaumene/gosubfetch/pkg/logger"
	"github.com/amaumene/gosubfetch/pkg/ratelimiter"
)

const (
	searchPathFormat = "/en/search/sublanguageid-%s/imdbid-%s/sort-6/asc-0"

	directLinkID       = "bt-dwl-bt"
	labelCellPrefix    = "main"
	archiveLinkPrefix  = "/en/subtitleserve"
	detailLinkPrefix   = "/en/subtitles/"
	downloadCountUnits = "x"
)

var watchOnlineRegex = regexp.MustCompile(`(?i)watch online.*`)

// Listing is what a search result page offers. When the host redirected
// straight to a single subtitle, DirectLink is set and Rows is empty.
type Listing struct {
	DirectLink string              `json:"directLink,omitempty"`
	Rows       []ranking.Candidate `json:"rows,omitempty"`
}

// Selection is the archive chosen for a release.
type Selection struct {
	Link      string            `json:"link"`
	Direct    bool              `json:"direct"`
	Candidate ranking.Candidate `json:"candidate"`
	Strategy  ranking.Strategy  `json:"strategy,omitempty"`
}

type OpenSubtitles struct {
	baseURL     string
	language    string
	userAgent   string
	httpClient  *http.Client
	rateLimiter ratelimiter.RateLimiter
	logger      logger.Logger
}

func NewOpenSubtitles(baseURL, language, userAgent string, client *http.Client, limiter ratelimiter.RateLimiter, log logger.Logger) *OpenSubtitles {
	if baseURL == "" {
		baseURL = constants.DefaultSubtitleHostURL
	}
	if language == "" {
		language = constants.DefaultSubtitleLang
	}
	if client == nil {
		client = httputil.NewDefaultHTTPClient()
	}
	if limiter == nil {
		limiter = ratelimiter.NewTokenBucket(constants.SubtitleHostRateBurst, constants.SubtitleHostRateLimit)
	}
	if log == nil {
		log = logger.New()
	}
	return &OpenSubtitles{
		baseURL:     strings.TrimRight(baseURL, "/"),
		language:    language,
		userAgent:   userAgent,
		httpClient:  client,
		rateLimiter: limiter,
		logger:      log,
	}
}

// SearchURL is the listing page for a catalog identifier. The host wants the
// numeric part only.
func (o *OpenSubtitles) SearchURL(catalogID string) string {
	numeric := strings.TrimLeftFunc(catalogID, unicode.IsLetter)
	return o.baseURL + fmt.Sprintf(searchPathFormat, url.PathEscape(o.language), url.PathEscape(numeric))
}

// ListCandidates fetches and parses the listing page for catalogID.
func (o *OpenSubtitles) ListCandidates(ctx context.Context, catalogID string) (*Listing, error) {
	if err := o.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	searchURL := o.SearchURL(catalogID)
	o.logger.Debugf("[OpenSubtitles] listing subtitles - URL: %s", searchURL)

	start := time.Now()
	resp, err := httputil.Get(ctx, o.httpClient, searchURL, o.userAgent)
	metrics.ObserveProvider(constants.ProviderOpenSubtitles, start, err)
	if err != nil {
		return nil, fmt.Errorf("subtitle host request failed: %w", err)
	}
	defer resp.Body.Close()

	doc, err := scrape.Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	listing := ParseListing(doc)
	o.logger.Debugf("[OpenSubtitles] %s: direct link %t, %d rows", catalogID, listing.DirectLink != "", len(listing.Rows))
	return &listing, nil
}

// FindSource lists the candidates for catalogID and picks the one to download
// for filename. found is false when the page offers nothing.
func (o *OpenSubtitles) FindSource(ctx context.Context, catalogID, filename string) (Selection, bool, error) {
	listing, err := o.ListCandidates(ctx, catalogID)
	if err != nil {
		return Selection{}, false, err
	}

	sel, found := Choose(*listing, filename)
	if !found {
		return Selection{}, false, nil
	}

	link, err := o.absolute(sel.Link)
	if err != nil {
		return Selection{}, false, fmt.Errorf("bad link %q: %w", sel.Link, err)
	}
	sel.Link = link

	if !sel.Direct {
		n := min(len(listing.Rows), constants.MaxCandidatesToLog)
		o.logger.Debugf("[OpenSubtitles] picked %q by %s among %d rows (first %d: %v)",
			sel.Candidate.Release, sel.Strategy, len(listing.Rows), n, listing.Rows[:n])
	}
	return sel, true, nil
}

// Choose prefers the direct link and falls back to ranking the rows.
func Choose(listing Listing, filename string) (Selection, bool) {
	if listing.DirectLink != "" {
		return Selection{Link: listing.DirectLink, Direct: true}, true
	}

	downloadable := make([]ranking.Candidate, 0, len(listing.Rows))
	for _, row := range listing.Rows {
		if row.ArchiveLink != "" {
			downloadable = append(downloadable, row)
		}
	}

	best, strategy, ok := ranking.Select(downloadable, filename)
	if !ok {
		return Selection{}, false
	}
	return Selection{Link: best.ArchiveLink, Candidate: best, Strategy: strategy}, true
}

func (o *OpenSubtitles) absolute(link string) (string, error) {
	base, err := url.Parse(o.baseURL + "/")
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// ParseListing reads a result page. Archive and detail anchors are looked up
// inside the table row that holds each label cell, so a row missing an anchor
// never borrows one from its neighbours.
func ParseListing(doc *html.Node) Listing {
	if a := scrape.FindFirst(doc, scrape.AttrEquals("a", "id", directLinkID)); a != nil {
		if href, ok := scrape.Attr(a, "href"); ok && href != "" {
			return Listing{DirectLink: href}
		}
	}

	labels := scrape.FindAll(doc, scrape.AttrPrefix("td", "id", labelCellPrefix))

	rows := make([]ranking.Candidate, 0, len(labels))
	for _, td := range labels {
		row := enclosingRow(td)
		c := ranking.Candidate{Release: releaseLabel(scrape.Text(td))}
		if a := scrape.FindFirst(row, scrape.AttrPrefix("a", "href", archiveLinkPrefix)); a != nil {
			c.ArchiveLink, _ = scrape.Attr(a, "href")
			c.Downloads = downloadCount(scrape.Text(a))
		}
		if a := scrape.FindFirst(row, scrape.AttrPrefix("a", "href", detailLinkPrefix)); a != nil {
			c.DetailLink, _ = scrape.Attr(a, "href")
		}
		rows = append(rows, c)
	}
	return Listing{Rows: rows}
}

// enclosingRow returns the <tr> around a label cell, or the cell itself when
// the markup has no row.
func enclosingRow(td *html.Node) *html.Node {
	for n := td.Parent; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && n.Data == "tr" {
			return n
		}
	}
	return td
}

// releaseLabel keeps the last non-blank line of a label cell, which is where
// the host prints the uploader's release name.
func releaseLabel(text string) string {
	lines := strings.Split(text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(watchOnlineRegex.ReplaceAllString(lines[i], ""))
		if line != "" {
			return line
		}
	}
	return ""
}

// downloadCount reads counters like "1234x"; anything unreadable counts as zero.
func downloadCount(text string) int {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, downloadCountUnits); i >= 0 {
		text = text[:i]
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0
	}
	return n
}
