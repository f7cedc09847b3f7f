package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/postsmith/internal/search"
)

const (
	ToolWebSearch    = "web_search"
	ToolSocialTrends = "social_trends"

	researchResultLimit = 5
)

// socialSites 限定社交趋势搜索的站点范围。
var socialSites = []string{"x.com", "reddit.com", "threads.net", "linkedin.com"}

// ResearchTools 基于搜索提供方构造调研阶段可用的两个工具：通用网页搜索与社交趋势搜索。
func ResearchTools(provider search.Provider, now func() time.Time) []Tool {
	if provider == nil {
		return nil
	}
	if now == nil {
		now = time.Now
	}

	return []Tool{
		{
			Name:        ToolWebSearch,
			Description: "Search the web for recent articles and trending data about a topic.",
			Invoke: func(ctx context.Context, query string) (string, error) {
				results, err := provider.Search(ctx, query, search.SearchOptions{Limit: researchResultLimit})
				if err != nil {
					return "", err
				}
				return search.FormatResults(results), nil
			},
		},
		{
			Name:        ToolSocialTrends,
			Description: "Search public social media posts for real-time reactions and trends about a topic.",
			Invoke: func(ctx context.Context, query string) (string, error) {
				results, err := provider.Search(ctx, socialQuery(query), search.SearchOptions{Limit: researchResultLimit})
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Social posts (%s):\n%s", now().Format("January 2, 2006"), search.FormatResults(results)), nil
			},
		},
	}
}

func socialQuery(query string) string {
	sites := make([]string, 0, len(socialSites))
	for _, site := range socialSites {
		sites = append(sites, "site:"+site)
	}
	return fmt.Sprintf("%s (%s)", strings.TrimSpace(query), strings.Join(sites, " OR "))
}
