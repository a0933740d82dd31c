package cache

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Cache stores downloaded resources under a directory, one subdirectory per
// resource, and publishes them under a base URL.
type Cache struct {
	dir     string
	baseURL string
}

// New returns a cache rooted at dir. An empty baseURL publishes files as file:// URLs.
func New(dir, baseURL string) *Cache {
	if baseURL == "" {
		baseURL = (&url.URL{Scheme: "file", Path: filepath.ToSlash(dir)}).String()
	}
	return &Cache{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (c *Cache) Dir() string {
	return c.dir
}

// Path is where the downloader writes a resource's file.
func (c *Cache) Path(resourceID, filename string) string {
	return filepath.Join(c.dir, sanitize(resourceID), sanitize(filename))
}

// URLFor is the cache URL recorded against a downloaded resource.
func (c *Cache) URLFor(resourceID, filename string) string {
	return c.baseURL + "/" + url.PathEscape(sanitize(resourceID)) + "/" + url.PathEscape(sanitize(filename))
}

// CachedFilepath maps a cache URL back to the local file. It returns "" when the
// URL is not served by this cache or the file no longer exists.
func (c *Cache) CachedFilepath(cacheURL string) string {
	if cacheURL == "" || !strings.HasPrefix(cacheURL, c.baseURL+"/") {
		return ""
	}

	rel, err := url.PathUnescape(strings.TrimPrefix(cacheURL, c.baseURL+"/"))
	if err != nil {
		return ""
	}
	rel = path.Clean("/" + rel)
	if rel == "/" {
		return ""
	}

	p := filepath.Join(c.dir, filepath.FromSlash(rel))
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return ""
	}
	return p
}

func sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "_"
	}
	return name
}
