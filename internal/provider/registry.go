package provider

import (
	"fmt"
	"strings"
)

// Registry holds the configured providers keyed by vendor name and
// preserves registration order, which is the order vendors are attempted
// in within a trial.
type Registry struct {
	order  []string
	byName map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{byName: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		name := strings.ToLower(p.Name())
		if _, exists := r.byName[name]; exists {
			continue
		}
		r.byName[name] = p
		r.order = append(r.order, name)
	}
	return r
}

func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown vendor: %s", name)
	}
	return p, nil
}

// Names returns vendor names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}
