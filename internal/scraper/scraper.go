// Package scraper turns a search keyword into the ordered list of icon
// image URLs found on the search site's result page.
package scraper

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"iconscrape/internal/config"
	"iconscrape/internal/downloader"
	friendlyerrors "iconscrape/internal/errors"
	"iconscrape/internal/logging"
	"iconscrape/internal/util"
)

// Fetcher returns the icon URLs for a query, in page order. Failures are
// reported as an empty slice; callers never see an error.
type Fetcher interface {
	Fetch(ctx context.Context, query string) []string
}

// FetchFunc adapts a plain function to Fetcher.
type FetchFunc func(ctx context.Context, query string) []string

func (f FetchFunc) Fetch(ctx context.Context, query string) []string { return f(ctx, query) }

// Flaticon scrapes a Flaticon-style search page: every element matching
// ItemSelector contributes the ImageAttr of its first <img>.
type Flaticon struct {
	searchURL string
	selector  string
	attr      string
	client    *downloader.Client
	log       *logging.Logger
}

// NewFlaticon builds a scraper from cfg.Source, falling back to the defaults
// of config.Default for unset fields.
func NewFlaticon(cfg *config.Config, client *downloader.Client, log *logging.Logger) *Flaticon {
	def := config.Default().Source
	src := def
	if cfg != nil {
		src = cfg.Source
	}
	if strings.TrimSpace(src.SearchURL) == "" {
		src.SearchURL = def.SearchURL
	}
	if strings.TrimSpace(src.ItemSelector) == "" {
		src.ItemSelector = def.ItemSelector
	}
	if strings.TrimSpace(src.ImageAttr) == "" {
		src.ImageAttr = def.ImageAttr
	}
	if client == nil {
		client = downloader.New(cfg, log, 30*time.Second, nil)
	}
	return &Flaticon{
		searchURL: src.SearchURL,
		selector:  src.ItemSelector,
		attr:      src.ImageAttr,
		client:    client,
		log:       log.Named("scraper"),
	}
}

// Fetch implements Fetcher. Errors are logged and normalized to nil.
func (f *Flaticon) Fetch(ctx context.Context, query string) []string {
	urls, err := f.Search(ctx, query)
	if err != nil {
		fe := friendlyerrors.ScrapeError(query, downloader.StatusCode(err), err)
		f.log.Warnf("%s: %v", fe.Message, err)
		return nil
	}
	f.log.Infof("query %q: %d icons", query, len(urls))
	return urls
}

// Search fetches and parses the result page for query.
func (f *Flaticon) Search(ctx context.Context, query string) ([]string, error) {
	pageURL := util.ExpandURL(f.searchURL, map[string]string{"query": query})
	if pageURL == "" {
		return nil, errors.New("search url not configured")
	}
	body, err := f.client.Get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	base, _ := url.Parse(pageURL)
	return ParseResults(bytes.NewReader(body), base, f.selector, f.attr)
}

// ParseResults extracts image URLs from an HTML result page. Items whose
// first <img> lacks attr are skipped; relative URLs are resolved against base.
func ParseResults(r io.Reader, base *url.URL, selector, attr string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	var out []string
	doc.Find(selector).Each(func(i int, s *goquery.Selection) {
		v, ok := s.Find("img").First().Attr(attr)
		v = strings.TrimSpace(v)
		if !ok || v == "" {
			return
		}
		if base != nil {
			if u, err := url.Parse(v); err == nil && !u.IsAbs() {
				v = base.ResolveReference(u).String()
			}
		}
		out = append(out, v)
	})
	return out, nil
}
