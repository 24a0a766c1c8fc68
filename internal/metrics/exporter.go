package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sysstat"

var (
	cpuUsageDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "cpu_usage_percent"),
		"Mean CPU utilization across logical cores.", nil, nil)
	memUsedDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "memory", "used_bytes"),
		"Used memory in bytes.", nil, nil)
	memTotalDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "memory", "total_bytes"),
		"Total memory in bytes.", nil, nil)
	memPercentDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "memory", "usage_percent"),
		"Used memory as a percentage of total.", nil, nil)
	downloadDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "network", "download_bytes_per_second"),
		"Bytes received per second since the previous sample.", nil, nil)
	uploadDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "network", "upload_bytes_per_second"),
		"Bytes sent per second since the previous sample.", nil, nil)
)

// Exporter is a prometheus.Collector that takes a sample on every scrape.
type Exporter struct {
	sampler *Sampler
	timeout time.Duration
	errors  prometheus.Counter
}

func NewExporter(s *Sampler, timeout time.Duration) *Exporter {
	return &Exporter{
		sampler: s,
		timeout: timeout,
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sample_errors_total",
			Help:      "Number of scrapes whose sample failed.",
		}),
	}
}

func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- cpuUsageDesc
	ch <- memUsedDesc
	ch <- memTotalDesc
	ch <- memPercentDesc
	ch <- downloadDesc
	ch <- uploadDesc
	e.errors.Describe(ch)
}

func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	ctx := context.Background()
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	s, err := e.sampler.Sample(ctx)
	if err != nil {
		e.sampler.log.Errorf("scrape sample failed: %v", err)
		e.errors.Inc()
		e.errors.Collect(ch)
		return
	}

	ch <- prometheus.MustNewConstMetric(cpuUsageDesc, prometheus.GaugeValue, s.CpuUsage)
	ch <- prometheus.MustNewConstMetric(memUsedDesc, prometheus.GaugeValue, float64(s.MemoryUsed))
	ch <- prometheus.MustNewConstMetric(memTotalDesc, prometheus.GaugeValue, float64(s.MemoryTotal))
	ch <- prometheus.MustNewConstMetric(memPercentDesc, prometheus.GaugeValue, s.MemoryPercent)
	ch <- prometheus.MustNewConstMetric(downloadDesc, prometheus.GaugeValue, s.DownloadSpeed)
	ch <- prometheus.MustNewConstMetric(uploadDesc, prometheus.GaugeValue, s.UploadSpeed)
	e.errors.Collect(ch)
}
