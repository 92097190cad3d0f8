package sources

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Dependencies are handed to every adapter factory.
type Dependencies struct {
	Fetcher DocumentFetcher
	Logger  zerolog.Logger

	// BaseURLs overrides the catalog root per source name, mainly for tests
	// and mirrors.
	BaseURLs map[string]string

	name string
}

func (d Dependencies) baseURL(def string) string {
	if u := strings.TrimRight(d.BaseURLs[d.name], "/"); u != "" {
		return u
	}
	return def
}

// Factory builds an adapter.
type Factory func(deps Dependencies) Adapter

type registration struct {
	name    string
	factory Factory
}

var (
	mu       sync.RWMutex
	registry []registration
)

func init() {
	Register(openSubtitlesName, NewOpenSubtitles)
	Register(podnapisiName, NewPodnapisi)
	Register(feliratokName, NewFeliratok)
}

// Register makes a catalog available under name. Registration order is the
// default search order. It panics on a nil factory or a duplicate name.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if f == nil {
		panic("sources: Register factory is nil")
	}
	if slices.ContainsFunc(registry, func(r registration) bool { return r.name == name }) {
		panic(fmt.Sprintf("sources: source %q already registered", name))
	}
	registry = append(registry, registration{name: name, factory: f})
}

// Names returns the registered source names in registration order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for _, r := range registry {
		names = append(names, r.name)
	}
	return names
}

// Build constructs the adapters for names, in the order given. An empty
// list selects every registered source.
func Build(names []string, deps Dependencies) ([]Adapter, error) {
	if len(names) == 0 {
		names = Names()
	}

	mu.RLock()
	defer mu.RUnlock()

	adapters := make([]Adapter, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		i := slices.IndexFunc(registry, func(r registration) bool { return r.name == name })
		if i < 0 {
			return nil, fmt.Errorf("sources: unknown source %q (registered: %s)", name, strings.Join(namesLocked(), ", "))
		}
		d := deps
		d.name = name
		adapters = append(adapters, registry[i].factory(d))
	}
	return adapters, nil
}

func namesLocked() []string {
	names := make([]string, 0, len(registry))
	for _, r := range registry {
		names = append(names, r.name)
	}
	return names
}
