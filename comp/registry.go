package comp

import (
	"fmt"
	"sort"
	"sync"
)

var (
	mu       sync.RWMutex
	registry = map[string]Computation{}
)

// Register adds a computation to the global registry.
func Register(c Computation) error {
	mu.Lock()
	defer mu.Unlock()
	if _, present := registry[c.Name()]; present {
		return fmt.Errorf("%s: %w", c.Name(), ErrExists)
	}
	registry[c.Name()] = c
	return nil
}

// Lookup finds a registered computation by name.
func Lookup(name string) Computation {
	mu.RLock()
	defer mu.RUnlock()
	return registry[name]
}

// All returns the registered computations sorted by name.
func All() []Computation {
	mu.RLock()
	defer mu.RUnlock()
	res := make([]Computation, 0, len(registry))
	for _, c := range registry {
		res = append(res, c)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name() < res[j].Name() })
	return res
}
