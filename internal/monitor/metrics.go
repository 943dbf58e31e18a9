package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cpuTemperature = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "retromgr_cpu_temperature_celsius",
		Help: "CPU temperature of the appliance",
	})

	loadAverage = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "retromgr_load_average",
		Help: "System load average by period",
	}, []string{"period"})

	memoryBytes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "retromgr_memory_bytes",
		Help: "Memory by state (total, available)",
	}, []string{"state"})

	diskBytes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "retromgr_share_disk_bytes",
		Help: "Share partition size by state (total, free)",
	}, []string{"state"})

	uptimeSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "retromgr_uptime_seconds",
		Help: "Seconds since the appliance booted",
	})

	temperatureAlerts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "retromgr_temperature_alerts_total",
		Help: "Number of high temperature alerts raised",
	})
)

// observe publishes a sample on the gauges.
func observe(s Sample) {
	cpuTemperature.Set(s.CPUTempC)
	loadAverage.WithLabelValues("1m").Set(s.Load1)
	loadAverage.WithLabelValues("5m").Set(s.Load5)
	loadAverage.WithLabelValues("15m").Set(s.Load15)
	memoryBytes.WithLabelValues("total").Set(float64(s.MemTotalKB * 1024))
	memoryBytes.WithLabelValues("available").Set(float64(s.MemAvailableKB * 1024))
	diskBytes.WithLabelValues("total").Set(float64(s.DiskTotalBytes))
	diskBytes.WithLabelValues("free").Set(float64(s.DiskFreeBytes))
	uptimeSeconds.Set(s.Uptime.Seconds())
}
