package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanUtilization(t *testing.T) {
	half := struct{ before, after cpu.TimesStat }{
		before: cpu.TimesStat{CPU: "cpu0", User: 10, Idle: 90},
		after:  cpu.TimesStat{CPU: "cpu0", User: 60, Idle: 140},
	}
	idle := struct{ before, after cpu.TimesStat }{
		before: cpu.TimesStat{CPU: "cpu1", Idle: 100},
		after:  cpu.TimesStat{CPU: "cpu1", Idle: 200},
	}

	tests := []struct {
		name   string
		before []cpu.TimesStat
		after  []cpu.TimesStat
		want   float64
	}{
		{
			name:   "single core at half load",
			before: []cpu.TimesStat{half.before},
			after:  []cpu.TimesStat{half.after},
			want:   50,
		},
		{
			name:   "mean over two cores",
			before: []cpu.TimesStat{half.before, idle.before},
			after:  []cpu.TimesStat{half.after, idle.after},
			want:   25,
		},
		{
			name: "zero cores reports zero",
			want: 0,
		},
		{
			name:   "extra core in one snapshot is ignored",
			before: []cpu.TimesStat{half.before},
			after:  []cpu.TimesStat{half.after, idle.after},
			want:   50,
		},
		{
			name:   "iowait counts as idle",
			before: []cpu.TimesStat{{System: 10, Iowait: 10, Idle: 80}},
			after:  []cpu.TimesStat{{System: 30, Iowait: 50, Idle: 120}},
			want:   20,
		},
		{
			name:   "counters going backwards report zero",
			before: []cpu.TimesStat{half.after},
			after:  []cpu.TimesStat{half.before},
			want:   0,
		},
		{
			name:   "busy time advancing without total advancing is capped",
			before: []cpu.TimesStat{{User: 10, Idle: 90}},
			after:  []cpu.TimesStat{{User: 20, Idle: 80}},
			want:   100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MeanUtilization(tt.before, tt.after)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
		})
	}
}

func TestBusyTotal_GuestTime(t *testing.T) {
	defer func(prev string) { goos = prev }(goos)

	// 40 of the 60 user ticks were spent running a guest.
	before := cpu.TimesStat{User: 0, Guest: 0, Idle: 0}
	after := cpu.TimesStat{User: 60, Guest: 30, GuestNice: 10, Idle: 40}

	goos = "linux"
	total, busy := busyTotal(after)
	assert.InDelta(t, 100.0, total, 1e-9, "guest time is already inside user on linux")
	assert.InDelta(t, 60.0, busy, 1e-9)
	assert.InDelta(t, 60.0, corePercent(before, after), 1e-9)

	goos = "freebsd"
	total, busy = busyTotal(after)
	assert.InDelta(t, 140.0, total, 1e-9)
	assert.InDelta(t, 100.0, busy, 1e-9)
	assert.InDelta(t, after.Total(), total, 1e-9)
}

func TestMeasureCPU_WaitsBetweenSnapshots(t *testing.T) {
	src := &fakeCPU{snaps: [][]cpu.TimesStat{
		{{User: 0, Idle: 100}},
		{{User: 75, Idle: 125}},
	}}

	start := time.Now()
	pct, err := measureCPU(context.Background(), src, 20*time.Millisecond)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Equal(t, 2, src.calls)
	assert.InDelta(t, 75.0, pct, 1e-9)
}

func TestMeasureCPU_Cancelled(t *testing.T) {
	src := &fakeCPU{snaps: [][]cpu.TimesStat{idleCores(2)}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := measureCPU(ctx, src, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, src.calls)
}

func TestMeasureCPU_SourceError(t *testing.T) {
	boom := errors.New("no /proc")
	_, err := measureCPU(context.Background(), &fakeCPU{err: boom}, time.Millisecond)
	require.ErrorIs(t, err, boom)
}
