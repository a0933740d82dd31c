package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// FetchedResource is a downloadable file advertised by a dataset feed entry.
type FetchedResource struct {
	PackageID string
	URL       string
	Name      string
	Format    string
	Position  int
}

type Fetcher struct {
	parser  *gofeed.Parser
	timeout time.Duration
}

func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	if userAgent != "" {
		parser.UserAgent = userAgent
	}
	return &Fetcher{parser: parser, timeout: timeout}
}

// FetchResources reads a dataset Atom/RSS feed. Each entry is a package and each
// of its enclosures a resource; entries without enclosures are skipped.
func (f *Fetcher) FetchResources(ctx context.Context, feedURL string) ([]FetchedResource, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	var resources []FetchedResource
	for _, item := range feed.Items {
		packageID := item.GUID
		if packageID == "" {
			packageID = item.Link
		}
		if packageID == "" {
			continue
		}

		for i, enc := range item.Enclosures {
			if enc == nil || enc.URL == "" {
				continue
			}
			resources = append(resources, FetchedResource{
				PackageID: packageID,
				URL:       enc.URL,
				Name:      strings.TrimSpace(item.Title),
				Format:    enc.Type,
				Position:  i,
			})
		}
	}

	return resources, nil
}
