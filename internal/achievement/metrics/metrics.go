package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the achievement registry module.
// Tracks issuance volume, registry growth, and lookup durations.
type Metrics struct {
	AchievementsIssued prometheus.Counter
	RegistrySize       prometheus.Gauge
	IssueDuration      prometheus.Histogram
	VerifyDuration     prometheus.Histogram
	ListDuration       prometheus.Histogram
}

// New creates a new Metrics instance with all registry metrics registered.
func New() *Metrics {
	return &Metrics{
		AchievementsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "laurel_achievements_issued_total",
			Help: "Total number of achievements issued",
		}),
		RegistrySize: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "laurel_registry_records",
			Help: "Current number of records in the registry sequence",
		}),
		IssueDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "laurel_issue_duration_seconds",
			Help:    "Duration of Issue operations (full sequence rewrite path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		VerifyDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "laurel_verify_duration_seconds",
			Help:    "Duration of Verify operations (linear scan path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ListDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "laurel_list_user_achievements_duration_seconds",
			Help:    "Duration of user achievement listing operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementIssued records a successful issuance and the resulting registry
// size, which also tracks the cost of the next full rewrite.
func (m *Metrics) IncrementIssued(registrySize int) {
	m.AchievementsIssued.Inc()
	m.RegistrySize.Set(float64(registrySize))
}

// ObserveIssue records the duration of an Issue operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveIssue(start time.Time) {
	m.IssueDuration.Observe(time.Since(start).Seconds())
}

// ObserveVerify records the duration of a Verify operation.
func (m *Metrics) ObserveVerify(start time.Time) {
	m.VerifyDuration.Observe(time.Since(start).Seconds())
}

// ObserveList records the duration of a listing operation.
func (m *Metrics) ObserveList(start time.Time) {
	m.ListDuration.Observe(time.Since(start).Seconds())
}
