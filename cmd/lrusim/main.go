// Command lrusim drives a bounded LRU cache with a synthetic workload and
// periodically reports which cached payloads the Go runtime has tenured.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/lrutier/internal/config"
	pmet "github.com/IvanBrykalov/lrutier/metrics/prom"
	"github.com/IvanBrykalov/lrutier/oracle/gcage"
	"github.com/IvanBrykalov/lrutier/report"
	"github.com/IvanBrykalov/lrutier/residency"
	"github.com/IvanBrykalov/lrutier/workload"
)

func main() {
	if err := run(); err != nil {
		slog.Error("lrusim failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		return err
	}
	log := newLogger(cfg.Global)
	slog.SetDefault(log)

	applyHostSettings(cfg.Memory, log)

	wc, err := cfg.WorkloadConfig()
	if err != nil {
		return fmt.Errorf("workload config: %w", err)
	}

	metrics := pmet.New(nil, "lrutier", "sim", nil)
	oracle := gcage.New(cfg.Sampling.TenureCycles)

	sinks := []residency.Sink{report.NewLogSink(log), metrics}
	var s3sink *report.S3Sink
	if cfg.Report.S3.Bucket != "" {
		s3sink, err = newS3Sink(context.Background(), cfg.Report.S3)
		if err != nil {
			return err
		}
		sinks = append(sinks, s3sink)
	}

	d, err := workload.NewDriver(wc,
		workload.WithOracle(oracle),
		workload.WithFabricator(oracle.Fabricate),
		workload.WithSink(report.Multi(sinks...)),
		workload.WithMetrics(metrics),
		workload.WithLogger(log),
	)
	if err != nil {
		return err
	}

	servers := newServers(cfg.Global)
	g, ctx := errgroup.WithContext(context.Background())
	for _, srv := range servers {
		g.Go(func() error {
			log.Info("http: serving", slog.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		defer shutdown(servers)
		done := make(chan struct{})
		go func() {
			defer close(done)
			d.Run()
		}()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			// A server failed; the run cannot be interrupted, so report it
			// and let the process exit.
			return ctx.Err()
		}
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if s3sink != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := s3sink.Close(ctx); err != nil {
			return err
		}
		log.Info("report uploaded", slog.String("bucket", cfg.Report.S3.Bucket), slog.String("key", cfg.Report.S3.Key))
	}
	return nil
}

// loadConfig layers defaults, the optional YAML file, the environment and
// explicitly set flags, in that order.
func loadConfig(args []string) (*config.Configuration, error) {
	cfg := config.NewDefault()
	fs := flag.NewFlagSet("lrusim", flag.ContinueOnError)
	var (
		file       = fs.String("config", "", "YAML config file")
		objectSize = fs.String("object-size", cfg.Workload.ObjectSize, "payload size (e.g. 4KB)")
		hitRate    = fs.Float64("hit-rate", cfg.Workload.HitRate, "target hit rate (0,1]")
		capacity   = fs.Int("cap", cfg.Workload.CacheCapacity, "cache capacity in entries (0 = derive from memory budget)")
		iterations = fs.Int("iterations", cfg.Workload.Iterations, "number of accesses")
		seed       = fs.Int64("seed", cfg.Workload.Seed, "random seed")
		budget     = fs.String("budget", cfg.Memory.Budget, "memory budget used to derive capacity")
		interval   = fs.Int("interval", cfg.Sampling.Interval, "accesses between residency samples (0 = off)")
		window     = fs.Int("window", cfg.Sampling.WindowSize, "recent window size")
		windowRule = fs.String("window-rule", cfg.Sampling.WindowRule, "recent window: most_recent | least_recent")
		tenure     = fs.Int("tenure", cfg.Sampling.TenureCycles, "GC cycles before a payload counts as slow tier")
		metricsAdr = fs.String("http", cfg.Global.MetricsAddr, "serve Prometheus metrics at addr (empty = disabled)")
		pprofAddr  = fs.String("pprof", cfg.Global.PprofAddr, "serve pprof at addr (empty = disabled)")
		logLevel   = fs.String("log-level", cfg.Global.LogLevel, "DEBUG | INFO | WARN | ERROR")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *file != "" {
		if err := cfg.LoadFromFile(*file); err != nil {
			return nil, err
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "object-size":
			cfg.Workload.ObjectSize = *objectSize
		case "hit-rate":
			cfg.Workload.HitRate = *hitRate
		case "cap":
			cfg.Workload.CacheCapacity = *capacity
		case "iterations":
			cfg.Workload.Iterations = *iterations
		case "seed":
			cfg.Workload.Seed = *seed
		case "budget":
			cfg.Memory.Budget = *budget
		case "interval":
			cfg.Sampling.Interval = *interval
		case "window":
			cfg.Sampling.WindowSize = *window
		case "window-rule":
			cfg.Sampling.WindowRule = *windowRule
		case "tenure":
			cfg.Sampling.TenureCycles = *tenure
		case "http":
			cfg.Global.MetricsAddr = *metricsAdr
		case "pprof":
			cfg.Global.PprofAddr = *pprofAddr
		case "log-level":
			cfg.Global.LogLevel = *logLevel
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(g config.GlobalConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(g.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(g.LogFormat, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// applyHostSettings configures the collector the harness observes.
// The harness itself stays neutral; these only mirror the host knobs.
func applyHostSettings(m config.MemoryConfig, log *slog.Logger) {
	if m.GCPercent != 0 {
		prev := debug.SetGCPercent(m.GCPercent)
		log.Info("gc percent set", slog.Int("gc_percent", m.GCPercent), slog.Int("previous", prev))
	}
	if m.MemoryLimit != "" {
		// Validated by config.Validate.
		limit, _ := config.ParseSize(m.MemoryLimit)
		debug.SetMemoryLimit(limit)
		log.Info("memory limit set", slog.Int64("bytes", limit))
	}
}

// newServers builds the metrics and pprof servers. When both share an
// address a single server handles both.
func newServers(g config.GlobalConfig) []*http.Server {
	var servers []*http.Server
	if g.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if g.PprofAddr == g.MetricsAddr {
			mux.Handle("/debug/pprof/", http.DefaultServeMux)
		}
		servers = append(servers, &http.Server{Addr: g.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second})
	}
	if g.PprofAddr != "" && g.PprofAddr != g.MetricsAddr {
		// pprof handlers live on DefaultServeMux.
		servers = append(servers, &http.Server{Addr: g.PprofAddr, ReadHeaderTimeout: 5 * time.Second})
	}
	return servers
}

func shutdown(servers []*http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, srv := range servers {
		_ = srv.Shutdown(ctx)
	}
}

func newS3Sink(ctx context.Context, c config.S3Config) (*report.S3Sink, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if c.Region != "" {
		opts = append(opts, awsconfig.WithRegion(c.Region))
	}
	if c.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
		if c.ForcePathStyle {
			o.UsePathStyle = true
		}
	})
	return report.NewS3Sink(client, c.Bucket, c.Key)
}
