package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestURLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, "http://remotesite.com/resources")

	p := c.Path("res-1", "filename.csv")
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("a,b\n1,2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cacheURL := c.URLFor("res-1", "filename.csv")
	if cacheURL != "http://remotesite.com/resources/res-1/filename.csv" {
		t.Errorf("unexpected cache URL %s", cacheURL)
	}

	if got := c.CachedFilepath(cacheURL); got != p {
		t.Errorf("expected %s, got %s", p, got)
	}
}

func TestCachedFilepathMissingFile(t *testing.T) {
	c := New(t.TempDir(), "")

	if got := c.CachedFilepath(c.URLFor("res-1", "gone.csv")); got != "" {
		t.Errorf("expected no path for missing file, got %s", got)
	}
}

func TestCachedFilepathForeignURL(t *testing.T) {
	c := New(t.TempDir(), "http://remotesite.com/resources")

	for _, u := range []string{"", "http://elsewhere.org/resources/a.csv", "http://remotesite.com/resources/"} {
		if got := c.CachedFilepath(u); got != "" {
			t.Errorf("expected no path for %q, got %s", u, got)
		}
	}
}

func TestCachedFilepathStaysInDir(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "cache")
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(parent, "secret"), []byte("x"), 0644)

	c := New(dir, "http://remotesite.com/resources")
	if got := c.CachedFilepath("http://remotesite.com/resources/../secret"); got != "" {
		t.Errorf("expected traversal to be rejected, got %s", got)
	}
}

func TestPathSanitizesNames(t *testing.T) {
	c := New("/cache", "")
	if got := c.Path("../x", "a/b.csv"); got != filepath.Join("/cache", ".._x", "a_b.csv") {
		t.Errorf("unexpected path %s", got)
	}
}
