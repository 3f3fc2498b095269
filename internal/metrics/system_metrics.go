package metrics

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

var (
	systemCPUUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "system_cpu_usage_percent",
			Help: "Current CPU usage percentage",
		},
		[]string{"core"},
	)

	systemMemoryUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "system_memory_usage_bytes",
			Help: "Current memory usage in bytes",
		},
		[]string{"type"},
	)

	goHeapAllocBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "api_go_heap_alloc_bytes",
			Help: "Heap memory in use by the service",
		},
		[]string{"service"},
	)
)

// StartSystemMetrics samples host CPU and memory every interval until ctx
// is cancelled
func StartSystemMetrics(ctx context.Context, serviceName string, interval time.Duration) {
	log.Info().
		Str("service", serviceName).
		Dur("interval", interval).
		Msg("Starting system metrics collection")

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				collectSystemMetrics(serviceName)
			}
		}
	}()
}

func collectSystemMetrics(serviceName string) {
	if cpuPercentages, err := cpu.Percent(0, true); err == nil {
		for i, percentage := range cpuPercentages {
			systemCPUUsage.WithLabelValues(fmt.Sprintf("cpu%d", i)).Set(percentage)
		}
	} else {
		log.Debug().Err(err).Msg("CPU sample failed")
	}

	if vmstat, err := mem.VirtualMemory(); err == nil {
		systemMemoryUsage.WithLabelValues("total").Set(float64(vmstat.Total))
		systemMemoryUsage.WithLabelValues("available").Set(float64(vmstat.Available))
		systemMemoryUsage.WithLabelValues("used").Set(float64(vmstat.Used))
	} else {
		log.Debug().Err(err).Msg("Memory sample failed")
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	goHeapAllocBytes.WithLabelValues(serviceName).Set(float64(m.HeapAlloc))
}
