package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/san-kum/isingsim/internal/sweep"
)

const namespace = "isingsim"

// Collector tracks sweep progress in a private Prometheus registry. It
// implements sweep.Observer.
type Collector struct {
	registry  *prometheus.Registry
	completed prometheus.Counter
	progress  prometheus.Gauge
	workers   prometheus.Gauge
	duration  prometheus.Histogram
	lastTemp  prometheus.Gauge
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "temperatures_completed_total",
			Help:      "Ladder temperatures whose ensemble average has finished.",
		}),
		progress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sweep_progress_ratio",
			Help:      "Fraction of the ladder completed.",
		}),
		workers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sweep_workers",
			Help:      "Workers in the sweep pool.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "temperature_seconds",
			Help:      "Wall time of one ensemble average.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		lastTemp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_temperature",
			Help:      "Temperature of the most recent completion.",
		}),
	}
	c.registry.MustRegister(c.completed, c.progress, c.workers, c.duration, c.lastTemp)
	return c
}

func (c *Collector) SetWorkers(n int) { c.workers.Set(float64(n)) }

func (c *Collector) OnResult(r sweep.Result, done, total int) {
	c.completed.Inc()
	if total > 0 {
		c.progress.Set(float64(done) / float64(total))
	}
	c.duration.Observe(r.Elapsed.Seconds())
	c.lastTemp.Set(r.Temperature)
}

// WriteTextfile writes the current values in text exposition format, for
// the node_exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
