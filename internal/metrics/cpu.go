package metrics

import (
	"context"
	"math"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
)

// goos selects the guest-time accounting used by busyTotal.
var goos = runtime.GOOS

// busyTotal splits a TimesStat into total and busy time. On Linux the kernel
// already counts guest time inside user and nice, so it is taken back out.
func busyTotal(t cpu.TimesStat) (total, busy float64) {
	total = t.Total()
	if goos == "linux" {
		total -= t.Guest + t.GuestNice
	}
	busy = total - t.Idle - t.Iowait
	return total, busy
}

// corePercent returns the utilization of one core between two snapshots.
func corePercent(before, after cpu.TimesStat) float64 {
	t1, b1 := busyTotal(before)
	t2, b2 := busyTotal(after)
	if b2 <= b1 {
		return 0
	}
	if t2 <= t1 {
		return 100
	}
	return math.Min(100, math.Max(0, (b2-b1)/(t2-t1)*100))
}

// MeanUtilization averages per-core utilization between two snapshots.
// Cores are paired by position; a core missing from either snapshot is
// skipped. With no cores the result is 0.
func MeanUtilization(before, after []cpu.TimesStat) float64 {
	n := min(len(before), len(after))
	var sum float64
	for i := 0; i < n; i++ {
		sum += corePercent(before[i], after[i])
	}
	return sum / float64(max(n, 1))
}

// measureCPU snapshots CPU times, waits for window, and snapshots again.
func measureCPU(ctx context.Context, src CPUSource, window time.Duration) (float64, error) {
	before, err := src.Times(ctx)
	if err != nil {
		return 0, err
	}
	if err := sleep(ctx, window); err != nil {
		return 0, err
	}
	after, err := src.Times(ctx)
	if err != nil {
		return 0, err
	}
	return MeanUtilization(before, after), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
