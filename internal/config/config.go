// Package config loads lrusim settings from YAML, the environment and
// defaults, and converts them into a workload.Config.
package config

import (
	"fmt"
	"math"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/IvanBrykalov/lrutier/residency"
	"github.com/IvanBrykalov/lrutier/workload"
)

// Configuration is the complete command configuration.
type Configuration struct {
	Global   GlobalConfig   `yaml:"global"`
	Workload WorkloadConfig `yaml:"workload"`
	Memory   MemoryConfig   `yaml:"memory"`
	Sampling SamplingConfig `yaml:"sampling"`
	Report   ReportConfig   `yaml:"report"`
}

// GlobalConfig holds logging and endpoint settings.
type GlobalConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	MetricsAddr string `yaml:"metrics_addr"`
	PprofAddr   string `yaml:"pprof_addr"`
}

// WorkloadConfig describes the access stream.
type WorkloadConfig struct {
	ObjectSize string  `yaml:"object_size"`
	HitRate    float64 `yaml:"hit_rate"`
	// CacheCapacity in entries; 0 derives it from Memory.
	CacheCapacity int   `yaml:"cache_capacity"`
	Iterations    int   `yaml:"iterations"`
	Seed          int64 `yaml:"seed"`
}

// MemoryConfig holds the memory budget and host GC knobs.
type MemoryConfig struct {
	// Budget is the memory the cache may assume; empty uses the runtime
	// memory limit (GOMEMLIMIT).
	Budget           string  `yaml:"budget"`
	LiveDataFraction float64 `yaml:"live_data_fraction"`
	// GCPercent: 0 leaves the host default, -1 disables the collector.
	GCPercent int `yaml:"gc_percent"`
	// MemoryLimit, when set, is applied with debug.SetMemoryLimit.
	MemoryLimit string `yaml:"memory_limit"`
}

// SamplingConfig configures the residency sampler and oracle.
type SamplingConfig struct {
	Interval     int    `yaml:"interval"`
	WindowSize   int    `yaml:"window_size"`
	WindowRule   string `yaml:"window_rule"`
	TenureCycles int    `yaml:"tenure_cycles"`
}

// ReportConfig configures snapshot sinks beyond the log.
type ReportConfig struct {
	S3 S3Config `yaml:"s3"`
}

// S3Config enables the S3 upload sink when Bucket is set.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Key             string `yaml:"key"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	ForcePathStyle  bool   `yaml:"force_path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// NewDefault returns the reference workload: 4KB payloads, 90% target hit
// rate, a cache sized to 60% of a 1GB budget, sampled every 100k accesses.
func NewDefault() *Configuration {
	return &Configuration{
		Global: GlobalConfig{
			LogLevel:    "INFO",
			LogFormat:   "json",
			MetricsAddr: ":8080",
		},
		Workload: WorkloadConfig{
			ObjectSize: "4KB",
			HitRate:    0.9,
			Iterations: 50_000_000,
			Seed:       1,
		},
		Memory: MemoryConfig{
			Budget:           "1GB",
			LiveDataFraction: 0.6,
		},
		Sampling: SamplingConfig{
			Interval:     100_000,
			WindowSize:   residency.DefaultWindowSize,
			WindowRule:   residency.WindowMostRecent.String(),
			TenureCycles: 2,
		},
	}
}

// LoadFromFile overlays the YAML file onto c.
func (c *Configuration) LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// SaveToFile writes c as YAML.
func (c *Configuration) SaveToFile(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// LoadFromEnv overlays LRUTIER_* environment variables onto c.
// Malformed numeric values are reported, not ignored.
func (c *Configuration) LoadFromEnv() error {
	str := func(name string, dst *string) {
		if val := os.Getenv(name); val != "" {
			*dst = val
		}
	}
	var errs []string
	num := func(name string, set func(string) error) {
		if val := os.Getenv(name); val != "" {
			if err := set(val); err != nil {
				errs = append(errs, fmt.Sprintf("%s=%q", name, val))
			}
		}
	}
	atoi := func(dst *int) func(string) error {
		return func(s string) (err error) { *dst, err = strconv.Atoi(s); return }
	}

	str("LRUTIER_LOG_LEVEL", &c.Global.LogLevel)
	str("LRUTIER_LOG_FORMAT", &c.Global.LogFormat)
	str("LRUTIER_METRICS_ADDR", &c.Global.MetricsAddr)
	str("LRUTIER_PPROF_ADDR", &c.Global.PprofAddr)

	str("LRUTIER_OBJECT_SIZE", &c.Workload.ObjectSize)
	num("LRUTIER_HIT_RATE", func(s string) (err error) {
		c.Workload.HitRate, err = strconv.ParseFloat(s, 64)
		return
	})
	num("LRUTIER_CACHE_CAPACITY", atoi(&c.Workload.CacheCapacity))
	num("LRUTIER_ITERATIONS", atoi(&c.Workload.Iterations))
	num("LRUTIER_SEED", func(s string) (err error) {
		c.Workload.Seed, err = strconv.ParseInt(s, 10, 64)
		return
	})

	str("LRUTIER_MEMORY_BUDGET", &c.Memory.Budget)
	num("LRUTIER_LIVE_DATA_FRACTION", func(s string) (err error) {
		c.Memory.LiveDataFraction, err = strconv.ParseFloat(s, 64)
		return
	})
	num("LRUTIER_GC_PERCENT", atoi(&c.Memory.GCPercent))
	str("LRUTIER_MEMORY_LIMIT", &c.Memory.MemoryLimit)

	num("LRUTIER_SAMPLE_INTERVAL", atoi(&c.Sampling.Interval))
	num("LRUTIER_WINDOW_SIZE", atoi(&c.Sampling.WindowSize))
	str("LRUTIER_WINDOW_RULE", &c.Sampling.WindowRule)
	num("LRUTIER_TENURE_CYCLES", atoi(&c.Sampling.TenureCycles))

	str("LRUTIER_S3_BUCKET", &c.Report.S3.Bucket)
	str("LRUTIER_S3_KEY", &c.Report.S3.Key)
	str("LRUTIER_S3_REGION", &c.Report.S3.Region)
	str("LRUTIER_S3_ENDPOINT", &c.Report.S3.Endpoint)

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment values: %s", strings.Join(errs, ", "))
	}
	return nil
}

// Validate checks settings that do not depend on the host.
func (c *Configuration) Validate() error {
	validLogLevels := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	if !contains(validLogLevels, strings.ToUpper(c.Global.LogLevel)) {
		return fmt.Errorf("invalid log_level: %s (must be one of: %s)",
			c.Global.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if f := strings.ToLower(c.Global.LogFormat); f != "json" && f != "text" {
		return fmt.Errorf("invalid log_format: %s (must be json or text)", c.Global.LogFormat)
	}
	if _, err := ParseSize(c.Workload.ObjectSize); err != nil {
		return fmt.Errorf("invalid object_size: %w", err)
	}
	if c.Workload.HitRate <= 0 || c.Workload.HitRate > 1 {
		return fmt.Errorf("hit_rate must be in (0,1], got %v", c.Workload.HitRate)
	}
	if c.Workload.CacheCapacity < 0 {
		return fmt.Errorf("cache_capacity must be >= 0")
	}
	if c.Workload.Iterations < 0 {
		return fmt.Errorf("iterations must be >= 0")
	}
	if c.Workload.CacheCapacity == 0 &&
		(c.Memory.LiveDataFraction <= 0 || c.Memory.LiveDataFraction > 1) {
		return fmt.Errorf("live_data_fraction must be in (0,1], got %v", c.Memory.LiveDataFraction)
	}
	if c.Memory.GCPercent < -1 {
		return fmt.Errorf("gc_percent must be >= -1")
	}
	if c.Memory.MemoryLimit != "" {
		if _, err := ParseSize(c.Memory.MemoryLimit); err != nil {
			return fmt.Errorf("invalid memory_limit: %w", err)
		}
	}
	if c.Sampling.Interval < 0 || c.Sampling.WindowSize < 0 {
		return fmt.Errorf("sampling interval and window_size must be >= 0")
	}
	if _, err := residency.ParseWindowRule(c.Sampling.WindowRule); err != nil {
		return err
	}
	if c.Report.S3.Bucket != "" && c.Report.S3.Key == "" {
		return fmt.Errorf("report.s3.key is required when report.s3.bucket is set")
	}
	return nil
}

// CacheCapacity returns the configured capacity, or derives it as
// budget / objectSize * liveDataFraction.
func (c *Configuration) CacheCapacity() (int, error) {
	if c.Workload.CacheCapacity > 0 {
		return c.Workload.CacheCapacity, nil
	}
	objectSize, err := ParseSize(c.Workload.ObjectSize)
	if err != nil {
		return 0, err
	}
	var budget int64
	if c.Memory.Budget != "" {
		if budget, err = ParseSize(c.Memory.Budget); err != nil {
			return 0, fmt.Errorf("invalid memory budget: %w", err)
		}
	} else {
		budget = debug.SetMemoryLimit(-1)
		if budget == math.MaxInt64 {
			return 0, fmt.Errorf("no memory budget: set memory.budget or GOMEMLIMIT")
		}
	}
	capacity := int(float64(budget/objectSize) * c.Memory.LiveDataFraction)
	if capacity <= 0 {
		return 0, fmt.Errorf("budget %d with object size %d yields capacity %d", budget, objectSize, capacity)
	}
	return capacity, nil
}

// WorkloadConfig converts c into the driver's configuration.
func (c *Configuration) WorkloadConfig() (workload.Config, error) {
	objectSize, err := ParseSize(c.Workload.ObjectSize)
	if err != nil {
		return workload.Config{}, err
	}
	capacity, err := c.CacheCapacity()
	if err != nil {
		return workload.Config{}, err
	}
	rule, err := residency.ParseWindowRule(c.Sampling.WindowRule)
	if err != nil {
		return workload.Config{}, err
	}
	return workload.Config{
		ObjectSize:     int(objectSize),
		TargetHitRate:  c.Workload.HitRate,
		CacheCapacity:  capacity,
		Iterations:     c.Workload.Iterations,
		SampleInterval: c.Sampling.Interval,
		Seed:           c.Workload.Seed,
		WindowSize:     c.Sampling.WindowSize,
		WindowRule:     rule,
	}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
