package metrics

import "time"

// Sample is one complete reading produced by Sampler.Sample.
type Sample struct {
	CpuUsage      float64 `json:"cpu_usage"`      // percent, mean over logical cores
	MemoryUsed    uint64  `json:"memory_used"`    // bytes
	MemoryTotal   uint64  `json:"memory_total"`   // bytes
	MemoryPercent float64 `json:"memory_percent"` // percent
	DownloadSpeed float64 `json:"download_speed"` // bytes/sec
	UploadSpeed   float64 `json:"upload_speed"`   // bytes/sec
}

type memUsage struct {
	Used     uint64
	Total    uint64
	UsagePct float64
}

// Counters are cumulative network byte counters summed over every interface.
type Counters struct {
	BytesRecv uint64
	BytesSent uint64
}

// Rates is the result of advancing a RateTracker by one observation.
type Rates struct {
	RxRate  float64 // bytes/sec
	TxRate  float64 // bytes/sec
	RxDelta uint64
	TxDelta uint64
	Elapsed time.Duration

	// First is set when there was no baseline to compare against.
	First bool
	// Regressed is set when either counter went backwards since the baseline.
	Regressed bool
}
