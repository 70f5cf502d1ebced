package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ConferenceMonitor/internal/collector"
)

const defaultPageSize = 50

var listDateExpr = regexp.MustCompile(`\d{1,2} [A-Za-z]{3} \d{4}`)

// ArxivCollector crawls arXiv listing pages. The source's Options map
// research areas to arXiv categories; areas without a mapping yield no
// payloads.
type ArxivCollector struct {
	client *http.Client
}

// NewArxivCollector wires an HTTP client; nil gets a 20s-timeout default.
func NewArxivCollector(client *http.Client) *ArxivCollector {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &ArxivCollector{client: client}
}

// Name identifies the strategy inside the registry.
func (a *ArxivCollector) Name() string {
	return "arxiv"
}

// Collect fetches the category listing for the requested area and turns
// each entry into a raw paper payload.
func (a *ArxivCollector) Collect(ctx context.Context, req collector.Request) ([]collector.Payload, error) {
	category := categoryFor(req.Source.Options, req.Area)
	if category == "" {
		return nil, nil
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	pageURL, err := listURL(req.Source.URL, category, limit)
	if err != nil {
		return nil, fmt.Errorf("category %s: %w", category, err)
	}

	doc, err := fetchDocument(ctx, a.client, pageURL)
	if err != nil {
		return nil, fmt.Errorf("category %s: %w", category, err)
	}

	var out []collector.Payload
	doc.Find("dl > dt").EachWithBreak(func(_ int, dt *goquery.Selection) bool {
		p, ok := parseListEntry(dt, dt.Next())
		if ok {
			out = append(out, p)
		}
		return len(out) < limit
	})

	return out, nil
}

func parseListEntry(dt, dd *goquery.Selection) (collector.Payload, bool) {
	title := strings.TrimSpace(dd.Find(".list-title").First().Text())
	title = strings.TrimSpace(strings.TrimPrefix(title, "Title:"))
	if title == "" {
		return nil, false
	}

	abstract := dd.Find(".mathjax").First().Text()
	abstract = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(abstract), "Abstract:"))

	var authors []string
	dd.Find(".list-authors a").Each(func(_ int, a *goquery.Selection) {
		if name := strings.TrimSpace(a.Text()); name != "" {
			authors = append(authors, name)
		}
	})

	href, _ := dt.Find("a[href*=\"/abs/\"]").First().Attr("href")
	if href != "" && !strings.HasPrefix(href, "http") {
		href = "https://arxiv.org" + href
	}

	p := collector.Payload{
		"title": title,
		"venue": "arXiv",
	}
	if abstract != "" {
		p["abstract"] = abstract
	}
	if len(authors) > 0 {
		p["authors"] = authors
	}
	if href != "" {
		p["url"] = href
	}

	dateText := strings.TrimSpace(dd.Find(".list-date").First().Text())
	if dateText == "" {
		dateText = strings.TrimSpace(dd.Find(".list-dateline").First().Text())
	}
	if match := listDateExpr.FindString(dateText); match != "" {
		if parsed, err := time.Parse("2 Jan 2006", match); err == nil {
			p["year"] = parsed.Year()
		}
	}

	return p, true
}

func categoryFor(options map[string]string, area string) string {
	for k, v := range options {
		if strings.EqualFold(k, strings.TrimSpace(area)) {
			return v
		}
	}
	return ""
}

func listURL(base, category string, limit int) (string, error) {
	parsed, err := url.Parse(strings.TrimSuffix(base, "/") + "/" + category + "/recent")
	if err != nil {
		return "", fmt.Errorf("invalid listing url %s: %w", base, err)
	}
	query := parsed.Query()
	query.Set("skip", "0")
	query.Set("show", strconv.Itoa(limit))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
