package prng

import (
	"embed"
	"fmt"
	"slices"
	"strings"
	"sync"
)

//go:embed kernels/*.cl
var kernelFS embed.FS

type entry struct {
	name      string
	stateSize int
	bits      int
	newLane   func() Lane
}

var entries = []entry{
	{"isaac", 2064, 32, func() Lane { return new(isaacLane) }},
	{"kiss09", 32, 64, func() Lane { return new(kiss09Lane) }},
	{"kiss99", 16, 32, func() Lane { return new(kiss99Lane) }},
	{"lcg6432", 8, 32, func() Lane { return new(lcg6432Lane) }},
	{"lcg12864", 16, 64, func() Lane { return new(lcg12864Lane) }},
	{"lfib", 144, 64, func() Lane { return new(lfibLane) }},
	{"mrg31k3p", 24, 32, func() Lane { return new(mrg31k3pLane) }},
	{"mrg63k3a", 48, 64, func() Lane { return new(mrg63k3aLane) }},
	{"msws", 24, 32, func() Lane { return new(mswsLane) }},
	{"mt19937", 2500, 32, func() Lane { return new(mt19937Lane) }},
	{"mwc64x", 8, 32, func() Lane { return new(mwc64xLane) }},
	{"pcg6432", 8, 32, func() Lane { return new(pcg6432Lane) }},
	{"philox2x32_10", 16, 64, func() Lane { return new(philoxLane) }},
	{"ran2", 140, 32, func() Lane { return new(ran2Lane) }},
	{"tinymt32", 28, 32, func() Lane { return new(tinymt32Lane) }},
	{"tinymt64", 32, 64, func() Lane { return new(tinymt64Lane) }},
	{"tyche", 16, 32, func() Lane { return new(tycheLane) }},
	{"tyche_i", 16, 32, func() Lane { return new(tycheILane) }},
	{"well512", 68, 32, func() Lane { return new(well512Lane) }},
	{"xorshift1024", 136, 64, func() Lane { return new(xorshift1024Lane) }},
	{"xorshift6432star", 8, 32, func() Lane { return new(xorshift6432StarLane) }},
}

var (
	loadOnce  sync.Once
	registry  map[string]Algorithm
	names     []string
	loadError error
)

func load() {
	registry = make(map[string]Algorithm, len(entries))
	for _, e := range entries {
		src, err := kernelFS.ReadFile("kernels/" + e.name + ".cl")
		if err != nil {
			loadError = fmt.Errorf("kernel fragment for %s: %w", e.name, err)
			return
		}
		registry[e.name] = Algorithm{
			Name:       e.name,
			StateSize:  e.stateSize,
			NativeBits: e.bits,
			Precisions: precisionsFor(e.bits),
			Source:     string(src),
			newLane:    e.newLane,
		}
		names = append(names, e.name)
	}
	slices.Sort(names)
}

// Lookup resolves an algorithm by name. Matching ignores case and
// surrounding whitespace.
func Lookup(name string) (Algorithm, error) {
	loadOnce.Do(load)
	if loadError != nil {
		return Algorithm{}, loadError
	}
	key := strings.ToLower(strings.TrimSpace(name))
	a, ok := registry[key]
	if !ok {
		return Algorithm{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
	return a, nil
}

// Names lists the registered algorithms in sorted order.
func Names() []string {
	loadOnce.Do(load)
	return slices.Clone(names)
}

// All returns every registered algorithm sorted by name.
func All() []Algorithm {
	loadOnce.Do(load)
	out := make([]Algorithm, 0, len(names))
	for _, n := range names {
		out = append(out, registry[n])
	}
	return out
}
