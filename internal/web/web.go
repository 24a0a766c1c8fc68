// Package web renders the status page and the live stats fragment.
//
// The components live in the .templ files; run `templ generate` after
// editing them.
package web

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/jeffypooo/sysstat/internal/metrics"
)

// Rate formats a bytes/second value.
func Rate(bytesPerSec float64) string {
	if bytesPerSec <= 0 || math.IsNaN(bytesPerSec) {
		return "0 B/s"
	}
	return humanize.IBytes(uint64(bytesPerSec)) + "/s"
}

func cpuText(s metrics.Sample) string {
	return fmt.Sprintf("%.1f%%", s.CpuUsage)
}

func memoryText(s metrics.Sample) string {
	return fmt.Sprintf("%s / %s (%.1f%%)",
		humanize.IBytes(s.MemoryUsed), humanize.IBytes(s.MemoryTotal), s.MemoryPercent)
}

// barValue is the progress value for a percentage, clamped to the bar's range.
func barValue(pct float64) string {
	return fmt.Sprintf("%.1f", clampPct(pct))
}

func clampPct(p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}
	return math.Min(100, math.Max(0, p))
}
