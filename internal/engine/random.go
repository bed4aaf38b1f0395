package engine

import (
	"math/rand/v2"
	"sync"
)

// Random is the single source of every random draw in a playthrough.
type Random interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
	// IntN returns a uniform value in [0, n). n must be positive.
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }
func (globalRandom) IntN(n int) int   { return rand.IntN(n) }

// NewRandom returns the unseeded, non-reproducible production source.
func NewRandom() Random {
	return globalRandom{}
}

// Pick returns one uniformly chosen element of items, or "" when empty.
func Pick(r Random, items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[r.IntN(len(items))]
}

// Sample draws up to count distinct elements of items without replacement.
func Sample(r Random, items []string, count int) []string {
	pool := append([]string(nil), items...)
	out := make([]string, 0, count)
	for len(pool) > 0 && len(out) < count {
		idx := r.IntN(len(pool))
		out = append(out, pool[idx])
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	return out
}

// ScriptedRandom replays fixed draws. Once a script runs dry, Float64 returns
// a value just below 1 (no probabilistic event fires) and IntN returns 0.
type ScriptedRandom struct {
	mu     sync.Mutex
	floats []float64
	ints   []int
}

// NewScriptedRandom creates a source replaying floats and ints in order.
func NewScriptedRandom(floats []float64, ints []int) *ScriptedRandom {
	return &ScriptedRandom{floats: floats, ints: ints}
}

// PushFloats appends more float draws.
func (r *ScriptedRandom) PushFloats(v ...float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.floats = append(r.floats, v...)
}

// PushInts appends more integer draws.
func (r *ScriptedRandom) PushInts(v ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ints = append(r.ints, v...)
}

// Remaining reports how many scripted draws are still queued.
func (r *ScriptedRandom) Remaining() (floats, ints int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.floats), len(r.ints)
}

func (r *ScriptedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.floats) == 0 {
		return 0.999999
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *ScriptedRandom) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	if v < 0 || v >= n {
		v = ((v % n) + n) % n
	}
	return v
}
