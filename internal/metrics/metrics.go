package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultCPUWindow is the delay between the two CPU time snapshots.
	DefaultCPUWindow = 100 * time.Millisecond
	// DefaultStreamInterval is used by Stream when no positive interval is given.
	DefaultStreamInterval = time.Second
)

type SamplerConfig struct {
	CPUWindow time.Duration
	CPU       CPUSource
	Memory    MemorySource
	Network   NetSource
	// Tracker is shared by every Sample call. A new one is created if nil.
	Tracker *RateTracker
	Logger  *log.Logger
}

// Sampler reads CPU, memory and network usage for the host.
type Sampler struct {
	window  time.Duration
	cpu     CPUSource
	mem     MemorySource
	net     NetSource
	tracker *RateTracker
	log     *log.Logger
}

// NewSampler builds a Sampler, filling unset fields with the host sources.
func NewSampler(cfg SamplerConfig) *Sampler {
	s := &Sampler{
		window:  cfg.CPUWindow,
		cpu:     cfg.CPU,
		mem:     cfg.Memory,
		net:     cfg.Network,
		tracker: cfg.Tracker,
		log:     cfg.Logger,
	}
	if s.window <= 0 {
		s.window = DefaultCPUWindow
	}
	if s.cpu == nil {
		s.cpu = hostCPU{}
	}
	if s.mem == nil {
		s.mem = hostMemory{}
	}
	if s.net == nil {
		s.net = hostNet{}
	}
	if s.tracker == nil {
		s.tracker = NewRateTracker()
	}
	if s.log == nil {
		s.log = log.New("metrics")
	}
	return s
}

func (s *Sampler) Tracker() *RateTracker {
	return s.tracker
}

// Sample takes one reading. It blocks for at least the CPU window. It is
// thread-safe; concurrent calls share the network baseline.
func (s *Sampler) Sample(ctx context.Context) (Sample, error) {
	var (
		cpuPct float64
		memUse memUsage
		rates  Rates
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pct, err := measureCPU(gctx, s.cpu, s.window)
		if err != nil {
			return err
		}
		cpuPct = pct
		return nil
	})
	g.Go(func() error {
		vm, err := s.mem.VirtualMemory(gctx)
		if err != nil {
			return err
		}
		memUse = newMemUsage(vm.Used, vm.Total)

		rates, err = s.tracker.Advance(gctx, s.net)
		return err
	})
	if err := g.Wait(); err != nil {
		return Sample{}, err
	}

	switch {
	case rates.First:
		s.log.Debug("first network observation, rates start at zero")
	case rates.Elapsed <= 0:
		s.log.Debugf("clock did not advance since last sample (%s), reporting zero rates", rates.Elapsed)
	case rates.Regressed:
		s.log.Debugf("network counters went backwards over %s, clamping delta to zero", rates.Elapsed)
	}

	return Sample{
		CpuUsage:      cpuPct,
		MemoryUsed:    memUse.Used,
		MemoryTotal:   memUse.Total,
		MemoryPercent: memUse.UsagePct,
		DownloadSpeed: rates.RxRate,
		UploadSpeed:   rates.TxRate,
	}, nil
}

func newMemUsage(used, total uint64) memUsage {
	return memUsage{
		Used:     used,
		Total:    total,
		UsagePct: float64(used) / float64(max(total, 1)) * 100,
	}
}

// Update is one stream tick: a sample, or the error that prevented it.
type Update struct {
	Sample Sample
	Err    error
}

// Stream samples every interval until ctx is done, delivering failures as
// updates rather than ending the stream. A non-positive interval falls back
// to DefaultStreamInterval. The channel is closed when the stream stops.
func (s *Sampler) Stream(ctx context.Context, interval time.Duration) <-chan Update {
	if interval <= 0 {
		interval = DefaultStreamInterval
	}
	ch := make(chan Update)
	go func() {
		defer close(ch)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			sample, err := s.Sample(ctx)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				s.log.Errorf("error getting sample: %v", err)
			}
			select {
			case ch <- Update{Sample: sample, Err: err}:
			case <-ctx.Done():
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return ch
}

// String formats the sample for logs.
func (s Sample) String() string {
	return fmt.Sprintf("cpu=%.1f%% mem=%d/%d (%.1f%%) down=%.0fB/s up=%.0fB/s",
		s.CpuUsage, s.MemoryUsed, s.MemoryTotal, s.MemoryPercent, s.DownloadSpeed, s.UploadSpeed)
}
