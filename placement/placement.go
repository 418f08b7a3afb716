// Package placement defines the groups of participants that can host a
// federated value.
package placement

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Placement identifies the group of participants hosting a value. Identity
// is by name.
type Placement struct {
	name      string
	singleton bool
}

func (p *Placement) Name() string { return p.name }

// Singleton reports whether the placement hosts exactly one participant.
func (p *Placement) Singleton() bool { return p.singleton }

// String returns the notation form of the placement, as in float32@SERVER.
func (p *Placement) String() string { return strings.ToUpper(p.name) }

var (
	mu       sync.RWMutex
	registry = map[string]*Placement{}
)

var ErrExists = errors.New("placement exists")

func Register(name string, singleton bool) (*Placement, error) {
	mu.Lock()
	defer mu.Unlock()
	key := strings.ToLower(name)
	if _, present := registry[key]; present {
		return nil, fmt.Errorf("%s: %w", name, ErrExists)
	}
	p := &Placement{name: key, singleton: singleton}
	registry[key] = p
	return p, nil
}

func Lookup(name string) *Placement {
	mu.RLock()
	defer mu.RUnlock()
	return registry[strings.ToLower(name)]
}

func All() []*Placement {
	mu.RLock()
	defer mu.RUnlock()
	res := make([]*Placement, 0, len(registry))
	for _, p := range registry {
		res = append(res, p)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].name < res[j].name })
	return res
}

var (
	// Clients is the multi-member group of participating devices. Member
	// data items may differ unless a value is declared all-equal.
	Clients *Placement

	// Server is the single coordinating party.
	Server *Placement
)

func init() {
	Clients, _ = Register("clients", false)
	Server, _ = Register("server", true)
}
