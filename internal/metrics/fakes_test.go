package metrics

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fakeCPU returns snapshots in order, repeating the last one.
type fakeCPU struct {
	mu    sync.Mutex
	snaps [][]cpu.TimesStat
	calls int
	err   error
}

func (f *fakeCPU) Times(context.Context) ([]cpu.TimesStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	i := min(f.calls, len(f.snaps)-1)
	f.calls++
	return f.snaps[i], nil
}

type fakeMemory struct {
	used, total uint64
	err         error
}

func (f *fakeMemory) VirtualMemory(context.Context) (*mem.VirtualMemoryStat, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &mem.VirtualMemoryStat{Used: f.used, Total: f.total}, nil
}

// fakeNet returns counters in order, repeating the last one.
type fakeNet struct {
	mu    sync.Mutex
	seq   []Counters
	calls int
	err   error
}

func (f *fakeNet) Counters(context.Context) (Counters, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return Counters{}, f.err
	}
	i := min(f.calls, len(f.seq)-1)
	f.calls++
	return f.seq[i], nil
}

// growingNet adds step bytes in each direction on every read.
type growingNet struct {
	mu   sync.Mutex
	c    Counters
	step uint64
}

func (g *growingNet) Counters(context.Context) (Counters, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.c.BytesRecv += g.step
	g.c.BytesSent += g.step / 2
	return g.c, nil
}

func quietLogger() *log.Logger {
	l := log.New("test")
	l.SetOutput(io.Discard)
	return l
}

func trackerWithClock(clk *fakeClock) *RateTracker {
	t := NewRateTracker()
	t.now = clk.Now
	return t
}

func idleCores(n int) []cpu.TimesStat {
	out := make([]cpu.TimesStat, n)
	for i := range out {
		out[i] = cpu.TimesStat{CPU: "cpu", Idle: 100}
	}
	return out
}
