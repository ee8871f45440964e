package verify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andrejsstepanovs/memberqr/client"
	"github.com/andrejsstepanovs/memberqr/file"
	"github.com/andrejsstepanovs/memberqr/publish"
	"github.com/andrejsstepanovs/memberqr/storage"
)

// Config holds the configuration for a verify operation.
type Config struct {
	PhotosDir  string
	CDNBaseURL string
	Timeout    time.Duration
}

// ParseConfig validates the settings a verify run needs.
func ParseConfig(photosDir, cdnBaseURL string) (*Config, error) {
	if strings.TrimSpace(cdnBaseURL) == "" {
		return nil, fmt.Errorf("CDN base url is required")
	}
	if strings.TrimSpace(photosDir) == "" {
		return nil, fmt.Errorf("photo directory is required")
	}

	return &Config{
		PhotosDir:  photosDir,
		CDNBaseURL: cdnBaseURL,
		Timeout:    30 * time.Second,
	}, nil
}

// ExpectedURLs returns the public page URL of every eligible photo followed by the index URL.
func ExpectedURLs(config *Config) ([]string, error) {
	photos, err := file.Photos(config.PhotosDir, file.PhotoExtensions)
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(photos)+1)
	seen := make(map[string]bool, len(photos))
	for _, p := range photos {
		// a.heic and a.jpg share one page
		if seen[p.BaseName] {
			continue
		}
		seen[p.BaseName] = true
		urls = append(urls, publish.PageURL(config.CDNBaseURL, p.BaseName))
	}
	urls = append(urls, strings.TrimRight(config.CDNBaseURL, "/")+"/"+storage.IndexKey)

	return urls, nil
}

// Run probes each expected URL once, in order.
func Run(ctx context.Context, config *Config) ([]client.PageStatus, error) {
	urls, err := ExpectedURLs(config)
	if err != nil {
		return nil, fmt.Errorf("error listing photos: %w", err)
	}

	results := make([]client.PageStatus, 0, len(urls))
	for _, u := range urls {
		status, err := client.ProbePage(ctx, u, config.Timeout)
		if err != nil {
			return results, fmt.Errorf("error probing %s: %w", u, err)
		}
		results = append(results, status)
	}

	return results, nil
}
