// internal/feed/discover.go
package feed

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Feed paths data portals commonly publish their dataset listings under.
var feedPatterns = []string{
	"/feeds/dataset.atom",
	"/feeds/custom.atom",
	"/feed",
	"/feed.xml",
	"/atom.xml",
	"/rss.xml",
}

var linkRegex = regexp.MustCompile(`<link[^>]+type=["'](application/(rss|atom)\+xml)["'][^>]*href=["']([^"']+)["']`)

// DiscoverFeed finds the dataset feed of a portal, first from the page's feed
// link and then by probing well-known paths.
func DiscoverFeed(siteURL string) (string, error) {
	client := &http.Client{Timeout: 10 * time.Second}

	resp, err := client.Get(siteURL)
	if err == nil {
		defer resp.Body.Close()
		contentType := resp.Header.Get("Content-Type")
		if strings.Contains(contentType, "xml") {
			return siteURL, nil
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 100000))
		matches := linkRegex.FindStringSubmatch(string(body))
		if len(matches) > 3 {
			feedURL := matches[3]
			if !strings.HasPrefix(feedURL, "http") {
				feedURL = strings.TrimSuffix(siteURL, "/") + "/" + strings.TrimPrefix(feedURL, "/")
			}
			return feedURL, nil
		}
	}

	baseURL := strings.TrimSuffix(siteURL, "/")
	for _, pattern := range feedPatterns {
		feedURL := baseURL + pattern
		resp, err := client.Head(feedURL)
		if err != nil {
			continue
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return feedURL, nil
		}
	}

	return "", fmt.Errorf("could not discover a dataset feed for %s", siteURL)
}
