package intrinsic

import (
	"fmt"
	"sort"
	"sync"
)

var (
	mu sync.RWMutex
	d  = map[string]Intrinsic{}
)

func Register(in Intrinsic) error {
	mu.Lock()
	defer mu.Unlock()
	_, present := d[in.Name()]
	if present {
		return fmt.Errorf("%s: %w", in.Name(), ErrExists)
	}
	d[in.Name()] = in
	return nil
}

func init() {
	Register(ValueAtClients())
	Register(ValueAtServer())
	Register(Broadcast())
	Register(Map())
	Register(MapAllEqual())
	Register(ZipAtClients())
	Register(Sum())
	Register(Mean())
	Register(WeightedMean())
}

func Lookup(name string) Intrinsic {
	mu.RLock()
	defer mu.RUnlock()
	return d[name]
}

func All() []Intrinsic {
	mu.RLock()
	defer mu.RUnlock()
	res := make([]Intrinsic, 0, len(d))
	for _, in := range d {
		res = append(res, in)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name() < res[j].Name() })
	return res
}
