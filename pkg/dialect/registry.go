package dialect

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// ErrDialectRequired is returned when a dialect is required but not provided.
var ErrDialectRequired = errors.New("dialect is required")

// registered dialects, keyed by lower-cased name
var (
	registryMu sync.RWMutex
	registry   = map[string]*Dialect{}
)

// Register makes d available to Lookup. Dialect packages call it from
// init. Registering two different dialects under one name panics.
func Register(d *Dialect) {
	if d == nil || d.Name == "" {
		panic("dialect: Register of unnamed dialect")
	}
	key := strings.ToLower(d.Name)

	registryMu.Lock()
	defer registryMu.Unlock()
	if prev, ok := registry[key]; ok && prev != d {
		panic(fmt.Sprintf("dialect: %q registered twice", d.Name))
	}
	registry[key] = d
}

// Get returns the dialect registered under name, ignoring case.
func Get(name string) (*Dialect, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[strings.ToLower(name)]
	return d, ok
}

// Lookup is Get with an error that names the registered dialects.
func Lookup(name string) (*Dialect, error) {
	if name == "" {
		return nil, ErrDialectRequired
	}
	if d, ok := Get(name); ok {
		return d, nil
	}
	return nil, fmt.Errorf("unknown dialect %q (available: %s)", name, strings.Join(List(), ", "))
}

// List returns the registered dialect names in sorted order.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
