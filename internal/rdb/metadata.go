package rdb

import (
	"fmt"
	"sort"

	"github.com/helios-lab/project-helios/internal/model"
	"github.com/helios-lab/project-helios/internal/query"
)

// Index holds the static attributes of every component of one entry, plus an
// inverted attribute index used for predicate evaluation. It is built once at
// entry construction and read-only afterwards.
type Index struct {
	attrs map[string]map[string]string // component -> attribute -> value
	// inverted: attribute -> value -> component names. Its key set doubles as
	// the attribute universe for rejecting unknown predicate attributes.
	inverted map[string]map[string][]string
	names    []string // all component names, sorted
}

func newIndex(components []model.Component) *Index {
	ix := &Index{
		attrs:    make(map[string]map[string]string, len(components)),
		inverted: make(map[string]map[string][]string),
	}
	for _, c := range components {
		attrs := make(map[string]string, len(c.Attributes))
		for name, value := range c.Attributes {
			attrs[name] = value
			if ix.inverted[name] == nil {
				ix.inverted[name] = make(map[string][]string)
			}
			ix.inverted[name][value] = append(ix.inverted[name][value], c.Name)
		}
		ix.attrs[c.Name] = attrs
		ix.names = append(ix.names, c.Name)
	}
	sort.Strings(ix.names)
	return ix
}

// AttributesOf returns a copy of a component's attribute map.
func (ix *Index) AttributesOf(component string) (map[string]string, error) {
	attrs, ok := ix.attrs[component]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrComponentNotFound, component)
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out, nil
}

// Components returns all component names, sorted.
func (ix *Index) Components() []string {
	out := make([]string, len(ix.names))
	copy(out, ix.names)
	return out
}

// HasComponent reports whether the component exists in the index.
func (ix *Index) HasComponent(component string) bool {
	_, ok := ix.attrs[component]
	return ok
}

// HasAttribute reports whether any component carries the attribute.
func (ix *Index) HasAttribute(name string) bool {
	_, ok := ix.inverted[name]
	return ok
}

// match evaluates a parsed predicate against every component and returns the
// matching set. Attributes unknown to the whole index fail loudly instead of
// silently matching nothing.
func (ix *Index) match(source string, expr query.Expr) (Set, error) {
	for _, attr := range query.Attributes(expr) {
		if !ix.HasAttribute(attr) {
			return nil, query.NewUnknownAttributeError(source, attr)
		}
	}

	matched := make(Set)
	for name, attrs := range ix.attrs {
		if expr.Eval(attrs) {
			matched[name] = struct{}{}
		}
	}
	return matched, nil
}
