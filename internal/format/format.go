package format

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed formats.yaml
var builtinTable []byte

// Descriptor describes one known file format.
type Descriptor struct {
	DisplayName string   `yaml:"name"`
	Extensions  []string `yaml:"extensions"`
	Aliases     []string `yaml:"aliases,omitempty"`
	MIMETypes   []string `yaml:"mime_types,omitempty"`
	Open        bool     `yaml:"open"`
	Weight      int      `yaml:"weight"`
}

// Registry is a read-only lookup table of formats. It is safe for concurrent use
// once built.
type Registry struct {
	formats     []*Descriptor
	byName      map[string]*Descriptor
	byExtension map[string]*Descriptor
	byAlias     map[string]*Descriptor
	byMIME      map[string]*Descriptor
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the embedded format table.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := Parse(builtinTable)
		if err != nil {
			panic(fmt.Sprintf("format: invalid builtin table: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Parse builds a registry from a YAML list of descriptors.
func Parse(data []byte) (*Registry, error) {
	var formats []*Descriptor
	if err := yaml.Unmarshal(data, &formats); err != nil {
		return nil, fmt.Errorf("failed to parse format table: %w", err)
	}
	return New(formats)
}

// New builds a registry. Earlier descriptors win when two claim the same key.
func New(formats []*Descriptor) (*Registry, error) {
	r := &Registry{
		byName:      make(map[string]*Descriptor),
		byExtension: make(map[string]*Descriptor),
		byAlias:     make(map[string]*Descriptor),
		byMIME:      make(map[string]*Descriptor),
	}

	for _, f := range formats {
		if f.DisplayName == "" {
			return nil, fmt.Errorf("format with extensions %v has no name", f.Extensions)
		}
		if f.Weight < 0 || f.Weight > 3 {
			return nil, fmt.Errorf("format %q has weight %d, want 0-3", f.DisplayName, f.Weight)
		}
		key := normalize(f.DisplayName)
		if _, dup := r.byName[key]; dup {
			return nil, fmt.Errorf("duplicate format %q", f.DisplayName)
		}
		r.byName[key] = f
		r.formats = append(r.formats, f)

		for _, ext := range f.Extensions {
			putIfAbsent(r.byExtension, normalize(ext), f)
		}
		for _, alias := range f.Aliases {
			putIfAbsent(r.byAlias, normalize(alias), f)
		}
		for _, mime := range f.MIMETypes {
			putIfAbsent(r.byMIME, normalize(mime), f)
		}
	}

	return r, nil
}

func putIfAbsent(m map[string]*Descriptor, key string, f *Descriptor) {
	if key == "" {
		return
	}
	if _, ok := m[key]; !ok {
		m[key] = f
	}
}

func normalize(s string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")
}

// All returns the descriptors in table order.
func (r *Registry) All() []*Descriptor {
	out := make([]*Descriptor, len(r.formats))
	copy(out, r.formats)
	return out
}

func (r *Registry) ByDisplayName(name string) (*Descriptor, bool) {
	f, ok := r.byName[normalize(name)]
	return f, ok
}

func (r *Registry) ByExtension(ext string) (*Descriptor, bool) {
	f, ok := r.byExtension[normalize(ext)]
	return f, ok
}

// ByMIMEType ignores any parameters, so "text/plain; charset=utf-8" matches text/plain.
func (r *Registry) ByMIMEType(mime string) (*Descriptor, bool) {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	f, ok := r.byMIME[normalize(mime)]
	return f, ok
}

// ByFreeText resolves a user-entered format label such as "Excel", "csv",
// ".xls" or "text/csv".
func (r *Registry) ByFreeText(text string) (*Descriptor, bool) {
	key := normalize(text)
	if key == "" {
		return nil, false
	}
	if f, ok := r.byName[key]; ok {
		return f, true
	}
	if f, ok := r.byAlias[key]; ok {
		return f, true
	}
	if f, ok := r.ByMIMEType(key); ok {
		return f, true
	}
	if f, ok := r.byExtension[key]; ok {
		return f, true
	}
	return nil, false
}
