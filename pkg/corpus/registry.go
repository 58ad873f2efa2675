/*
Package corpus keeps the named text sources a model is trained from.

Sources are identified by name, keep the order they were first added in,
and carry an active flag. Only active sources feed training. Sources are
never removed; a source is switched off by toggling it inactive.

The package also reads sources from a directory (ReadDirectory), seeds a
fresh directory with sample texts (SeedSamples) and watches a directory
for edits (Watcher).

Registry is not safe for concurrent use; the engine serializes access.
*/
package corpus

import "strings"

// Source is a named corpus text.
type Source struct {
	Name    string
	Content string
	Active  bool
}

// SourceInfo is the listing view of a Source.
type SourceInfo struct {
	Name   string `json:"name" msgpack:"name"`
	Active bool   `json:"active" msgpack:"active"`
}

// Registry holds sources in insertion order.
type Registry struct {
	order   []string
	sources map[string]*Source
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]*Source)}
}

// Upsert inserts or overwrites a source. An overwritten source keeps its
// original position. Reports whether the source is new.
func (r *Registry) Upsert(name, content string, active bool) bool {
	if s, ok := r.sources[name]; ok {
		s.Content = content
		s.Active = active
		return false
	}
	r.sources[name] = &Source{Name: name, Content: content, Active: active}
	r.order = append(r.order, name)
	return true
}

// SetActive sets the flag of a known source. Returns false for unknown names.
func (r *Registry) SetActive(name string, active bool) bool {
	s, ok := r.sources[name]
	if !ok {
		return false
	}
	s.Active = active
	return true
}

// Get returns a copy of the named source.
func (r *Registry) Get(name string) (Source, bool) {
	s, ok := r.sources[name]
	if !ok {
		return Source{}, false
	}
	return *s, true
}

// Names returns all source names in insertion order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// List returns name and flag of every source in insertion order.
func (r *Registry) List() []SourceInfo {
	out := make([]SourceInfo, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, SourceInfo{Name: name, Active: r.sources[name].Active})
	}
	return out
}

// Len returns the number of sources.
func (r *Registry) Len() int {
	return len(r.order)
}

// ActiveCount returns the number of active sources.
func (r *Registry) ActiveCount() int {
	n := 0
	for _, s := range r.sources {
		if s.Active {
			n++
		}
	}
	return n
}

// ActiveText joins the content of every active source, in registry order,
// separated by a single space.
func (r *Registry) ActiveText() string {
	var b strings.Builder
	first := true
	for _, name := range r.order {
		s := r.sources[name]
		if !s.Active {
			continue
		}
		if !first {
			b.WriteByte(' ')
		}
		b.WriteString(s.Content)
		first = false
	}
	return b.String()
}
