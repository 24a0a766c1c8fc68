package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/labstack/gommon/log"

	"github.com/jeffypooo/sysstat/internal/config"
	"github.com/jeffypooo/sysstat/internal/metrics"
	"github.com/jeffypooo/sysstat/internal/web"
)

type options struct {
	count  int
	every  time.Duration
	human  bool
	config string
}

func main() {
	var opts options
	flag.IntVar(&opts.count, "count", 1, "number of samples to take")
	flag.DurationVar(&opts.every, "every", time.Second, "delay between samples")
	flag.BoolVar(&opts.human, "human", false, "print a one-line summary instead of JSON")
	flag.StringVar(&opts.config, "config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(opts.config)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	logger := log.New("metrics")
	logger.SetLevel(cfg.Level())

	sampler := metrics.NewSampler(metrics.SamplerConfig{CPUWindow: cfg.CPUWindow, Logger: logger})
	if err := run(context.Background(), sampler, opts, os.Stdout); err != nil {
		log.Fatalf("Error getting stats: %v", err)
	}
}

func run(ctx context.Context, sampler *metrics.Sampler, opts options, out io.Writer) error {
	if opts.count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", opts.count)
	}
	for i := 0; i < opts.count; i++ {
		if i > 0 {
			time.Sleep(opts.every)
		}
		sample, err := sampler.Sample(ctx)
		if err != nil {
			return err
		}
		if err := printSample(out, sample, opts.human); err != nil {
			return err
		}
	}
	return nil
}

func printSample(out io.Writer, s metrics.Sample, human bool) error {
	if human {
		_, err := fmt.Fprintf(out, "cpu %5.1f%%  mem %s/%s (%.1f%%)  down %s  up %s\n",
			s.CpuUsage,
			humanize.IBytes(s.MemoryUsed), humanize.IBytes(s.MemoryTotal), s.MemoryPercent,
			web.Rate(s.DownloadSpeed), web.Rate(s.UploadSpeed))
		return err
	}
	data, err := json.MarshalIndent(s, "", " ")
	if err != nil {
		return fmt.Errorf("error marshalling stats: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
