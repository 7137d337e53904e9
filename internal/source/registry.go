// Package source keeps the article sources available to the pipeline.
package source

import (
	"errors"
	"fmt"
	"sort"

	"NewsSearchEngine/internal/ports"
)

// ErrUnknownSource is returned when a name has no registered source.
var ErrUnknownSource = errors.New("source is not registered")

// Registry keeps a mapping from source names to their implementations.
type Registry struct {
	sources map[string]ports.ArticleSource
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]ports.ArticleSource{}}
}

// Register adds or replaces a source implementation.
func (r *Registry) Register(src ports.ArticleSource) {
	if r.sources == nil {
		r.sources = map[string]ports.ArticleSource{}
	}
	r.sources[src.Name()] = src
}

// Resolve returns a source by name.
func (r *Registry) Resolve(name string) (ports.ArticleSource, error) {
	if src, ok := r.sources[name]; ok {
		return src, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSource, name)
}

// Names lists registered sources in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select resolves every name; a single name yields that source, several yield a Fanout.
func (r *Registry) Select(names ...string) (ports.ArticleSource, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no source selected")
	}
	selected := make([]ports.ArticleSource, 0, len(names))
	for _, name := range names {
		src, err := r.Resolve(name)
		if err != nil {
			return nil, err
		}
		selected = append(selected, src)
	}
	if len(selected) == 1 {
		return selected[0], nil
	}
	return NewFanout(selected, nil), nil
}
