package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffypooo/sysstat/internal/metrics"
)

type stubCPU struct{}

func (stubCPU) Times(context.Context) ([]cpu.TimesStat, error) {
	return []cpu.TimesStat{{Idle: 100}}, nil
}

type stubMemory struct{}

func (stubMemory) VirtualMemory(context.Context) (*mem.VirtualMemoryStat, error) {
	return &mem.VirtualMemoryStat{Used: 2 << 30, Total: 8 << 30}, nil
}

type stubNet struct{}

func (stubNet) Counters(context.Context) (metrics.Counters, error) {
	return metrics.Counters{}, nil
}

func testSampler() *metrics.Sampler {
	l := log.New("test")
	l.SetOutput(io.Discard)
	return metrics.NewSampler(metrics.SamplerConfig{
		CPUWindow: time.Millisecond,
		CPU:       stubCPU{},
		Memory:    stubMemory{},
		Network:   stubNet{},
		Logger:    l,
	})
}

func TestRun_JSON(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), testSampler(), options{count: 1}, &out)
	require.NoError(t, err)

	var got metrics.Sample
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.InDelta(t, 25.0, got.MemoryPercent, 1e-9)
}

func TestRun_HumanRepeated(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), testSampler(), options{count: 3, every: time.Millisecond, human: true}, &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "cpu   0.0%  mem 2.0 GiB/8.0 GiB (25.0%)  down 0 B/s  up 0 B/s", lines[0])
}

func TestRun_InvalidCount(t *testing.T) {
	err := run(context.Background(), testSampler(), options{count: 0}, io.Discard)
	assert.ErrorContains(t, err, "count must be at least 1")
}
