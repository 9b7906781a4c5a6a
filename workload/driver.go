package workload

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/IvanBrykalov/lrutier/cache"
	"github.com/IvanBrykalov/lrutier/residency"
)

// Payload is the opaque value the workload caches.
type Payload = []byte

// Result summarizes a finished run.
type Result struct {
	Hits    int
	Misses  int
	Ticks   int
	Elapsed time.Duration
}

// HitRate returns Hits / (Hits + Misses), or 0 before any access.
func (r Result) HitRate() float64 {
	total := r.Hits + r.Misses
	if total == 0 {
		return 0
	}
	return float64(r.Hits) / float64(total)
}

// Option customizes a Driver.
type Option func(*Driver)

// WithFabricator overrides how payloads are created on a miss.
// The default is make([]byte, size).
func WithFabricator(f func(size int) Payload) Option {
	return func(d *Driver) { d.fabricator = f }
}

// WithConsumer overrides the function every accessed value is passed to.
func WithConsumer(f func(Payload)) Option {
	return func(d *Driver) { d.consume = f }
}

// WithOracle sets the residency oracle the sampler queries.
func WithOracle(o residency.Oracle[Payload]) Option {
	return func(d *Driver) { d.oracle = o }
}

// WithSink sets where snapshots are reported.
func WithSink(s residency.Sink) Option {
	return func(d *Driver) { d.sink = s }
}

// WithMetrics attaches cache metrics hooks.
func WithMetrics(m cache.Metrics) Option {
	return func(d *Driver) { d.metrics = m }
}

// WithLogger sets the logger used for run lifecycle and sink failures.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.log = l }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(d *Driver) { d.now = now }
}

// Driver issues Config.Iterations accesses against an LRU cache.
// It runs on the caller's goroutine; nothing inside it blocks or retries.
type Driver struct {
	cfg   Config
	keys  *KeyGen
	cache *cache.LRU[int, Payload]

	sampler *residency.Sampler[int, Payload]
	oracle  residency.Oracle[Payload]
	sink    residency.Sink
	metrics cache.Metrics

	fabricator func(size int) Payload
	fabricate  func(int) Payload
	consume    func(Payload)
	log        *slog.Logger
	now        func() time.Time

	hits, misses int
}

// NewDriver validates cfg and builds the key generator, cache and sampler.
// Construction errors (invalid capacity, degenerate key space) are returned
// and must be treated as fatal.
func NewDriver(cfg Config, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bh := &blackhole{}
	d := &Driver{
		cfg:        cfg,
		fabricator: func(size int) Payload { return make(Payload, size) },
		consume:    bh.consume,
		log:        slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}

	c, err := cache.New[int, Payload](cache.Options[int, Payload]{
		Capacity: cfg.CacheCapacity,
		Metrics:  d.metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("workload: build cache: %w", err)
	}
	keys, err := NewKeyGen(cfg.CacheCapacity, cfg.TargetHitRate, cfg.Seed)
	if err != nil {
		return nil, err
	}
	d.cache = c
	d.keys = keys
	d.fabricate = func(int) Payload { return d.fabricator(cfg.ObjectSize) }
	d.sampler = residency.NewSampler[int, Payload](d.oracle, residency.Options{
		WindowSize: cfg.WindowSize,
		WindowRule: cfg.WindowRule,
		ObjectSize: cfg.ObjectSize,
		Now:        d.now,
	})
	return d, nil
}

// Cache exposes the driven cache for inspection between runs.
func (d *Driver) Cache() *cache.LRU[int, Payload] { return d.cache }

// KeySpace returns the size of the key space accesses are drawn from.
func (d *Driver) KeySpace() int { return d.keys.KeySpace() }

// Run issues the configured number of accesses. A sample is taken before
// the access at every iteration that is a multiple of SampleInterval,
// starting with the cold cache at iteration 0.
func (d *Driver) Run() Result {
	d.log.Info("workload starting",
		slog.Int("capacity", d.cfg.CacheCapacity),
		slog.Int("key_space", d.keys.KeySpace()),
		slog.Int("object_size", d.cfg.ObjectSize),
		slog.Float64("target_hit_rate", d.cfg.TargetHitRate),
		slog.Int("iterations", d.cfg.Iterations),
		slog.Int("sample_interval", d.cfg.SampleInterval),
	)

	start := d.now()
	ticks := 0
	interval := d.cfg.SampleInterval
	for i := 0; i < d.cfg.Iterations; i++ {
		if interval > 0 && i%interval == 0 {
			d.sample(i)
			ticks++
		}

		v, hit := d.cache.Load(d.keys.Next(), d.fabricate)
		if hit {
			d.hits++
		} else {
			d.misses++
		}
		d.consume(v)
	}

	res := Result{
		Hits:    d.hits,
		Misses:  d.misses,
		Ticks:   ticks,
		Elapsed: d.now().Sub(start),
	}
	d.log.Info("workload finished",
		slog.Int("hits", res.Hits),
		slog.Int("misses", res.Misses),
		slog.Float64("hit_rate", res.HitRate()),
		slog.Int("ticks", res.Ticks),
		slog.Duration("elapsed", res.Elapsed),
	)
	return res
}

func (d *Driver) sample(iteration int) {
	hitRate := Result{Hits: d.hits, Misses: d.misses}.HitRate()
	snap := d.sampler.Sample(d.cache, iteration, hitRate)
	if d.sink == nil {
		return
	}
	if err := d.sink.Report(snap); err != nil {
		d.log.Warn("report snapshot", slog.Int("tick", snap.Tick), slog.Any("err", err))
	}
}

// blackhole folds every consumed payload into a field so the compiler
// cannot drop the access.
type blackhole struct{ sum byte }

func (b *blackhole) consume(v Payload) {
	if len(v) > 0 {
		b.sum ^= v[0]
	}
}
