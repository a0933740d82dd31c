package sniff

import (
	"context"
	"fmt"
	"strings"

	"github.com/julienpequegnot/openqa/internal/format"
	"github.com/wailsapp/mimetype"
)

// Detected types that say nothing about the data format. A zip could hold
// anything and plain text is the fallback for every text file.
var inconclusive = map[string]bool{
	"application/octet-stream": true,
	"application/zip":          true,
	"text/plain":               true,
}

type Sniffer struct {
	formats *format.Registry
}

func New(formats *format.Registry) *Sniffer {
	if formats == nil {
		formats = format.Default()
	}
	return &Sniffer{formats: formats}
}

// SniffFormat inspects the start of a file and returns its format, or nil when the
// content does not identify one.
func (s *Sniffer) SniffFormat(ctx context.Context, path string) (*format.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to sniff %s: %w", path, err)
	}

	mime := mtype.String()
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if inconclusive[mime] {
		return nil, nil
	}

	f, ok := s.formats.ByMIMEType(mime)
	if !ok {
		return nil, nil
	}
	return f, nil
}
