package scorer

import (
	"net/url"
	"strings"
)

// ExtensionVariants returns the candidate file extensions of a URL, most specific
// first: "coins.data.1996.csv.zip" gives ["csv.zip", "zip"]. The query string is
// ignored and a name without a dot has no extensions.
func ExtensionVariants(rawURL string) []string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}

	segment := strings.ToLower(p[strings.LastIndex(p, "/")+1:])
	parts := strings.Split(segment, ".")
	if len(parts) < 2 {
		return nil
	}

	last := parts[len(parts)-1]
	// ".htaccess" is a name, not an extension
	if last == "" || (len(parts) == 2 && parts[0] == "") {
		return nil
	}

	var variants []string
	if len(parts) >= 3 && parts[len(parts)-2] != "" {
		variants = append(variants, parts[len(parts)-2]+"."+last)
	}
	return append(variants, last)
}
