package search

import (
	"context"
	"fmt"
	"strings"
)

// Provider defines the interface for web search providers.
type Provider interface {
	Search(ctx context.Context, query string, opts SearchOptions) ([]Result, error)
}

// Result represents a single search result.
type Result struct {
	Title   string
	URL     string
	Content string
}

// SearchOptions controls search behavior across providers.
type SearchOptions struct {
	Limit int
}

// FormatResults renders results as a compact numbered list suitable for
// handing back to a language model as tool output.
func FormatResults(results []Result) string {
	if len(results) == 0 {
		return "No results found."
	}
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s", i+1, strings.TrimSpace(r.Title))
		if r.URL != "" {
			fmt.Fprintf(&b, " (%s)", r.URL)
		}
		b.WriteString("\n")
		if content := strings.TrimSpace(r.Content); content != "" {
			fmt.Fprintf(&b, "   %s\n", content)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
