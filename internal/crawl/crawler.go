// Package crawl discovers and extracts same-domain sibling pages of a root
// URL, bounded by a page ceiling, a traversal depth, and a wall-clock
// budget. It is an optional extension of the single-page fetch path.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	colly "github.com/gocolly/colly/v2"

	"github.com/jonesrussell/docify/internal/extract"
	"github.com/jonesrussell/docify/internal/logger"
)

// crawlerUserAgent identifies crawl requests.
const crawlerUserAgent = "Mozilla/5.0 (compatible; DocifyBot/1.0; +https://docify.app)"

// skipPathFragments mark URL paths that never hold analyzable content.
var skipPathFragments = []string{
	"/search",
	"/login",
	"/admin",
	"/wp-admin",
	"/api/",
	"/feed",
	"/tag/",
	"/category/",
	"/author/",
}

// ErrBudgetExceeded reports that the crawl hit its wall-clock ceiling.
var ErrBudgetExceeded = errors.New("crawl budget exceeded")

// Crawler performs breadth-limited same-domain crawls.
type Crawler struct {
	log logger.Interface
	cfg Config
}

// New creates a Crawler.
func New(log logger.Interface, cfg Config) *Crawler {
	return &Crawler{
		log: log.WithComponent("crawl"),
		cfg: cfg.WithDefaults(),
	}
}

// Crawl walks same-domain links breadth-first from rootURL and returns the
// usable pages found, in discovery order, the root page first. Pages that
// fail to fetch or extract are skipped, not errors; the crawl itself only
// fails when the root URL is unreachable.
func (c *Crawler) Crawl(ctx context.Context, rootURL string) ([]*extract.ExtractedPage, error) {
	parsed, parseErr := url.Parse(rootURL)
	if parseErr != nil {
		return nil, fmt.Errorf("parse root url: %w", parseErr)
	}

	deadline := time.Now().Add(c.cfg.Budget)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Hostname()),
		colly.MaxDepth(c.cfg.MaxDepth),
		colly.UserAgent(crawlerUserAgent),
		colly.Async(true),
	)
	collector.SetRequestTimeout(c.cfg.RequestTimeout)

	if limitErr := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: c.cfg.Parallelism,
		Delay:       c.cfg.Delay,
	}); limitErr != nil {
		return nil, fmt.Errorf("set crawl limits: %w", limitErr)
	}

	var mu sync.Mutex
	var pages []*extract.ExtractedPage
	visited := map[string]bool{}

	collector.OnRequest(func(r *colly.Request) {
		if time.Now().After(deadline) || ctx.Err() != nil {
			r.Abort()
			return
		}

		mu.Lock()
		defer mu.Unlock()
		if len(pages) >= c.cfg.MaxPages || visited[r.URL.String()] {
			r.Abort()
			return
		}
		visited[r.URL.String()] = true
	})

	collector.OnResponse(func(r *colly.Response) {
		pageURL := r.Request.URL.String()

		page, extractErr := extract.Extract(r.Body, r.Headers.Get("Content-Type"), pageURL)
		if extractErr != nil {
			c.log.Debug("page extraction failed", "url", pageURL, "error", extractErr.Error())
			return
		}

		if !page.IsUsable() {
			c.log.Debug("page below quality threshold, skipping", "url", pageURL)
			return
		}

		mu.Lock()
		defer mu.Unlock()
		if len(pages) < c.cfg.MaxPages {
			pages = append(pages, page)
		}
	})

	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" || !c.shouldFollow(link, parsed.Hostname()) {
			return
		}

		mu.Lock()
		full := len(pages) >= c.cfg.MaxPages
		mu.Unlock()
		if full {
			return
		}

		// Visit errors (already visited, depth exceeded) are expected here.
		_ = e.Request.Visit(link)
	})

	if visitErr := collector.Visit(rootURL); visitErr != nil {
		return nil, fmt.Errorf("visit root url: %w", visitErr)
	}
	collector.Wait()

	mu.Lock()
	defer mu.Unlock()

	c.log.Info("crawl finished",
		"root_url", rootURL,
		"pages", len(pages),
		"visited", len(visited),
	)

	if len(pages) == 0 && time.Now().After(deadline) {
		return nil, ErrBudgetExceeded
	}

	return pages, nil
}

// shouldFollow filters links to same-domain content paths.
func (c *Crawler) shouldFollow(link, host string) bool {
	parsed, err := url.Parse(link)
	if err != nil {
		return false
	}

	if parsed.Hostname() != host {
		return false
	}

	path := strings.ToLower(parsed.Path)
	for _, fragment := range skipPathFragments {
		if strings.Contains(path, fragment) {
			return false
		}
	}

	return true
}
