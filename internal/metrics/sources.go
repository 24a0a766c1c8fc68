package metrics

import (
	"context"
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
)

// ErrUnavailable wraps every failure to read the OS counters.
var ErrUnavailable = errors.New("system introspection unavailable")

// CPUSource returns cumulative per-core CPU times.
type CPUSource interface {
	Times(ctx context.Context) ([]cpu.TimesStat, error)
}

// MemorySource returns a virtual memory snapshot.
type MemorySource interface {
	VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error)
}

// NetSource returns cumulative byte counters summed over all interfaces.
type NetSource interface {
	Counters(ctx context.Context) (Counters, error)
}

type hostCPU struct{}

func (hostCPU) Times(ctx context.Context) ([]cpu.TimesStat, error) {
	times, err := cpu.TimesWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("%w: error getting CPU times: %w", ErrUnavailable, err)
	}
	return times, nil
}

type hostMemory struct{}

func (hostMemory) VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: error getting memory usage: %w", ErrUnavailable, err)
	}
	return vm, nil
}

type hostNet struct{}

func (hostNet) Counters(ctx context.Context) (Counters, error) {
	stats, err := net.IOCountersWithContext(ctx, true) // true = per interface
	if err != nil {
		return Counters{}, fmt.Errorf("%w: error getting network usage: %w", ErrUnavailable, err)
	}
	return SumCounters(stats), nil
}

// SumCounters adds up the cumulative byte counters of every interface.
func SumCounters(stats []net.IOCountersStat) Counters {
	var c Counters
	for _, s := range stats {
		c.BytesRecv += s.BytesRecv
		c.BytesSent += s.BytesSent
	}
	return c
}
