package residency

import (
	"fmt"
	"iter"
	"time"
)

// DefaultWindowSize is the number of leading entries that form the
// recent window when Options.WindowSize is zero.
const DefaultWindowSize = 1000

// WindowRule selects which end of the recency order the window covers.
type WindowRule int

const (
	// WindowMostRecent counts the WindowSize most-recently-used entries.
	WindowMostRecent WindowRule = iota
	// WindowLeastRecent counts the WindowSize least-recently-used entries,
	// the order an eldest-first entry walk produces.
	WindowLeastRecent
)

func (r WindowRule) String() string {
	switch r {
	case WindowMostRecent:
		return "most_recent"
	case WindowLeastRecent:
		return "least_recent"
	default:
		return fmt.Sprintf("WindowRule(%d)", int(r))
	}
}

// ParseWindowRule maps the String form back to a WindowRule.
func ParseWindowRule(s string) (WindowRule, error) {
	switch s {
	case "", "most_recent":
		return WindowMostRecent, nil
	case "least_recent":
		return WindowLeastRecent, nil
	}
	return 0, fmt.Errorf("residency: unknown window rule %q", s)
}

// Entries is the read-only view of a cache the Sampler needs.
// cache.LRU and cache.Synchronized satisfy it.
type Entries[K comparable, V any] interface {
	All() iter.Seq2[K, V]
	Backward() iter.Seq2[K, V]
}

// Options configures a Sampler. Zero values are safe.
type Options struct {
	// WindowSize bounds the recent window; 0 => DefaultWindowSize.
	WindowSize int
	WindowRule WindowRule
	// ObjectSize is the payload size used to derive ExpectedResident/Gap.
	ObjectSize int
	// Now overrides the time source (tests). Nil => time.Now.
	Now func() time.Time
}

// Sampler computes residency Snapshots. It keeps only the previous tick's
// window key set between ticks, so its memory does not grow over a run.
// Not safe for concurrent use.
type Sampler[K comparable, V any] struct {
	oracle Oracle[V]
	opt    Options
	start  time.Time
	tick   int

	resident map[K]struct{}
	window   map[K]struct{}
	prev     map[K]struct{}
}

// NewSampler returns a Sampler bound to oracle. Elapsed time in snapshots
// is measured from this call.
func NewSampler[K comparable, V any](oracle Oracle[V], opt Options) *Sampler[K, V] {
	if oracle == nil {
		oracle = NopOracle[V]{}
	}
	if opt.WindowSize <= 0 {
		opt.WindowSize = DefaultWindowSize
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	return &Sampler[K, V]{
		oracle:   oracle,
		opt:      opt,
		start:    opt.Now(),
		resident: make(map[K]struct{}),
		window:   make(map[K]struct{}, opt.WindowSize),
		prev:     make(map[K]struct{}, opt.WindowSize),
	}
}

// Sample walks c once and returns the Snapshot for this tick.
// iteration and hitRate are recorded verbatim.
func (s *Sampler[K, V]) Sample(c Entries[K, V], iteration int, hitRate float64) Snapshot {
	if t, ok := s.oracle.(TickAware); ok {
		t.BeginTick()
	}

	// The current window becomes prev; reuse the old prev map for this tick.
	s.prev, s.window = s.window, s.prev
	clear(s.window)
	clear(s.resident)

	seq := c.All()
	if s.opt.WindowRule == WindowLeastRecent {
		seq = c.Backward()
	}
	idx := 0
	for k, v := range seq {
		if s.oracle.IsResident(v) {
			s.resident[k] = struct{}{}
			if idx < s.opt.WindowSize {
				s.window[k] = struct{}{}
			}
		}
		idx++
	}

	stable := 0
	for k := range s.prev {
		if _, ok := s.resident[k]; ok {
			stable++
		}
	}

	snap := Snapshot{
		Tick:                      s.tick,
		Iteration:                 iteration,
		Elapsed:                   s.opt.Now().Sub(s.start),
		CacheLen:                  idx,
		HitRate:                   hitRate,
		ResidentCardinality:       len(s.resident),
		RecentResidentCardinality: len(s.window),
		StableResidentCardinality: stable,
	}
	s.tick++

	g, err := s.oracle.GlobalStats()
	if err == nil {
		err = g.Validate()
	}
	if err != nil {
		snap.OracleErr = err.Error()
		return snap
	}
	snap.Oracle = deriveOracleStats(g, snap.ResidentCardinality, s.opt.ObjectSize)
	return snap
}

// ResidentKeys iterates the keys found resident by the latest Sample.
func (s *Sampler[K, V]) ResidentKeys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range s.resident {
			if !yield(k) {
				return
			}
		}
	}
}
