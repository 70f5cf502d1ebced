package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ConferenceMonitor/internal/collector"
)

// Default selectors for listing pages. Per-source overrides come from
// config; these cover the common markup of IEEE/ACM style calendars.
var defaultSelectors = map[string]string{
	"item":        ".conference-item, .event-item, li.conference",
	"title":       ".title, h3, h2",
	"dates":       ".dates, .date, time",
	"location":    ".location, .venue",
	"description": ".description, .summary, p",
	"link":        "a",
	"deadline":    ".deadline",
}

// ListingCollector scrapes conference calendar pages. Each matched item
// becomes one raw payload; the normalizer interprets the fields.
type ListingCollector struct {
	client *http.Client
}

// NewListingCollector wires an HTTP client; nil gets a 20s-timeout default.
func NewListingCollector(client *http.Client) *ListingCollector {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &ListingCollector{client: client}
}

// Name identifies the strategy inside the registry.
func (l *ListingCollector) Name() string {
	return "listing"
}

// Collect fetches the source page and extracts every listed conference
// that mentions the requested research area.
func (l *ListingCollector) Collect(ctx context.Context, req collector.Request) ([]collector.Payload, error) {
	doc, err := fetchDocument(ctx, l.client, req.Source.URL)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", req.Source.Name, err)
	}

	sel := func(key string) string {
		if v, ok := req.Source.Selectors[key]; ok && v != "" {
			return v
		}
		return defaultSelectors[key]
	}

	area := strings.ToLower(strings.TrimSpace(req.Area))
	var out []collector.Payload

	doc.Find(sel("item")).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if area != "" && !strings.Contains(strings.ToLower(item.Text()), area) {
			return true
		}

		p := collector.Payload{
			"title":       strings.TrimSpace(item.Find(sel("title")).First().Text()),
			"dates":       strings.TrimSpace(item.Find(sel("dates")).First().Text()),
			"location":    strings.TrimSpace(item.Find(sel("location")).First().Text()),
			"description": strings.TrimSpace(item.Find(sel("description")).First().Text()),
		}

		if href, ok := item.Find(sel("link")).First().Attr("href"); ok {
			p["url"] = absoluteURL(req.Source.URL, href)
		}

		var deadlines []string
		item.Find(sel("deadline")).Each(func(_ int, d *goquery.Selection) {
			if text := strings.TrimSpace(d.Text()); text != "" {
				deadlines = append(deadlines, text)
			}
		})
		if len(deadlines) > 0 {
			p["deadlines"] = deadlines
		}

		out = append(out, p)
		return req.Limit <= 0 || len(out) < req.Limit
	})

	return out, nil
}

func fetchDocument(ctx context.Context, client *http.Client, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ConferenceMonitor/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func absoluteURL(base, href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return parsed.ResolveReference(ref).String()
}
