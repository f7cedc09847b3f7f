package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	defaultDuckDuckGoURL = "https://html.duckduckgo.com"
	defaultResultLimit   = 5
)

// DuckDuckGoProvider queries the DuckDuckGo HTML endpoint, which needs no API key.
type DuckDuckGoProvider struct {
	apiURL string
	client *http.Client
}

// NewDuckDuckGoProvider creates a DuckDuckGo provider. An empty apiURL uses
// the public endpoint.
func NewDuckDuckGoProvider(apiURL string) *DuckDuckGoProvider {
	apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if apiURL == "" {
		apiURL = defaultDuckDuckGoURL
	}
	return &DuckDuckGoProvider{
		apiURL: apiURL,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Search executes a query and scrapes the result list.
func (p *DuckDuckGoProvider) Search(ctx context.Context, query string, opts SearchOptions) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("duckduckgo: query is required")
	}

	endpoint, err := url.Parse(p.apiURL + "/html/")
	if err != nil {
		return nil, fmt.Errorf("parse duckduckgo url: %w", err)
	}
	q := endpoint.Query()
	q.Set("q", query)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create duckduckgo request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; postsmith/1.0)")
	req.Header.Set("Accept", "text/html")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("duckduckgo request failed with status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse duckduckgo html: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultResultLimit
	}
	results := extractDuckDuckGoResults(doc)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func extractDuckDuckGoResults(doc *html.Node) []Result {
	var results []Result

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result__a"):
				results = append(results, Result{
					Title: collapseSpace(textContent(n)),
					URL:   resolveDuckDuckGoLink(attr(n, "href")),
				})
				return
			case hasClass(n, "result__snippet"):
				if len(results) > 0 {
					results[len(results)-1].Content = collapseSpace(textContent(n))
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return results
}

// resolveDuckDuckGoLink unwraps the //duckduckgo.com/l/?uddg=<target> redirect.
func resolveDuckDuckGoLink(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
