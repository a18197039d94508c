package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/streamrail/ua-classifier/internal/cache"
	"github.com/streamrail/ua-classifier/internal/config"
	"github.com/streamrail/ua-classifier/internal/logger"
	"github.com/streamrail/ua-classifier/internal/metrics"
	"github.com/streamrail/ua-classifier/internal/server"
	"github.com/streamrail/ua-classifier/uaparser"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "uaparser: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "serve" {
		return serve(args[1:], stderr)
	}
	return classify(args, stdin, stdout, stderr)
}

// classify reads one user agent per line and writes one JSON result per line.
func classify(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("uaparser", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: uaparser [flags] < uas\n       uaparser serve [-addr addr]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	var (
		file    = fs.String("f", "-", "file with one user agent per line, - for stdin")
		mode    = fs.String("mode", "all", "comma separated categories to classify")
		rules   = fs.String("rules", "", "extension rules evaluated ahead of the built-in ones")
		pretty  = fs.Bool("pretty", false, "indent JSON output")
		stats   = fs.Bool("stats", false, "print totals and the mobile/desktop split instead of results")
		version = fs.Bool("version", false, "print the version and exit")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *version {
		fmt.Fprintln(stdout, uaparser.Version)
		return nil
	}

	m, err := uaparser.ParseMode(*mode)
	if err != nil {
		return err
	}
	if *stats {
		m |= uaparser.EDeviceLookUpMode
	}

	opts := []uaparser.Option{uaparser.WithUserAgent(""), uaparser.WithMode(m)}
	if *rules != "" {
		data, err := os.ReadFile(*rules)
		if err != nil {
			return fmt.Errorf("read rules: %w", err)
		}
		opts = append(opts, uaparser.WithExtensionsYAML(data))
	}
	p, err := uaparser.New(opts...)
	if err != nil {
		return err
	}

	in := stdin
	if *file != "-" {
		f, err := os.Open(*file)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	if *stats {
		return runStats(p, in, stdout)
	}

	enc := json.NewEncoder(stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := enc.Encode(p.Parse(scanner.Text())); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	return scanner.Err()
}

func runStats(p *uaparser.Parser, in io.Reader, stdout io.Writer) error {
	lines := 0
	platforms := map[string]int{"mobile": 0, "desktop": 0}
	var totalTime time.Duration

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		str := scanner.Text()
		lines++
		start := time.Now()
		if p.Parse(str).Device.IsMobile() {
			platforms["mobile"]++
		} else {
			platforms["desktop"]++
		}
		totalTime += time.Since(start)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Processed lines: %d. Took %s\nResult: %+v\n", lines, totalTime, platforms)
	return nil
}

// serve runs the HTTP service configured from UAP_* variables.
func serve(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("uaparser serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", "", "listen address, overrides UAP_HTTP_ADDR")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := newParser(cfg, log)
	if err != nil {
		return err
	}
	metrics.RecordRuleSet(p.Rules())

	c, err := newCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	log.Info("starting uaparser",
		zap.String("version", uaparser.Version),
		zap.String("addr", cfg.HTTPAddr),
		zap.String("mode", cfg.Mode),
		zap.Bool("redis", cfg.RedisURL != ""),
	)

	return server.New(p,
		server.WithCache(c),
		server.WithLogger(log),
		server.WithMaxBatch(cfg.MaxBatch),
		server.WithShutdownTimeout(cfg.ShutdownTimeout),
	).Run(ctx, cfg.HTTPAddr)
}

func newParser(cfg config.Config, log *zap.Logger) (*uaparser.Parser, error) {
	mode, err := cfg.LookUpMode()
	if err != nil {
		return nil, err
	}

	rules := uaparser.Default()
	if cfg.MatchTimeout != uaparser.DefaultMatchTimeout {
		rules, err = uaparser.NewFromBytes(uaparser.DefaultRules(),
			uaparser.WithLoadLogger(log),
			uaparser.WithMatchTimeout(cfg.MatchTimeout),
		)
		if err != nil {
			return nil, err
		}
	}

	opts := []uaparser.Option{
		uaparser.WithUserAgent(""),
		uaparser.WithRuleSet(rules),
		uaparser.WithMode(mode),
		uaparser.WithLogger(log),
		uaparser.WithObserver(metrics.Observe),
	}
	if cfg.RulesFile != "" {
		data, err := os.ReadFile(cfg.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("read rules: %w", err)
		}
		opts = append(opts, uaparser.WithExtensionsYAML(data))
	}
	return uaparser.New(opts...)
}

func newCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	switch {
	case cfg.RedisURL != "":
		c, err := cache.Connect(ctx, cfg.RedisURL, cfg.CachePrefix, cfg.CacheTTL)
		if err != nil {
			return nil, err
		}
		return c, nil
	case cfg.CacheSize > 0:
		return cache.NewMemory(cfg.CacheSize, cfg.CacheTTL), nil
	}
	return cache.Nop{}, nil
}
