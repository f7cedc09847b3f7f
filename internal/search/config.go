package search

import (
	"fmt"
	"strings"
)

const (
	providerDuckDuckGo = "duckduckgo"
	providerSearxng    = "searxng"
)

// Config holds configuration for search providers.
type Config struct {
	Provider string
	APIURL   string
}

// NewProvider creates a search provider from configuration.
func NewProvider(cfg Config) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", providerDuckDuckGo:
		return NewDuckDuckGoProvider(cfg.APIURL), nil
	case providerSearxng:
		return NewSearxngProvider(cfg.APIURL)
	default:
		return nil, fmt.Errorf("unsupported search provider: %s", cfg.Provider)
	}
}
