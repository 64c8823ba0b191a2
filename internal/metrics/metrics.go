// Package metrics exposes Prometheus collectors describing rental activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bikeshare"

// Recorder records rental lifecycle events.
type Recorder struct {
	rentsStarted  prometheus.Counter
	rentsReturned prometheus.Counter
	rejections    *prometheus.CounterVec
	rentAmount    prometheus.Histogram
	rentDuration  prometheus.Histogram
	bikesMoved    prometheus.Counter
}

// NewRecorder creates a Recorder and registers its collectors with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		rentsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rents_started_total",
			Help:      "Number of bikes rented.",
		}),
		rentsReturned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rents_returned_total",
			Help:      "Number of bikes returned.",
		}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_rejections_total",
			Help:      "Operations rejected by the rental service, by operation and reason.",
		}, []string{"operation", "reason"}),
		rentAmount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rent_amount",
			Help:      "Amount charged per returned rent.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		rentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rent_duration_seconds",
			Help:      "Duration of returned rents.",
			Buckets:   prometheus.ExponentialBuckets(60, 2, 10),
		}),
		bikesMoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bikes_moved_total",
			Help:      "Number of bike relocations.",
		}),
	}

	for _, c := range []prometheus.Collector{
		r.rentsStarted, r.rentsReturned, r.rejections, r.rentAmount, r.rentDuration, r.bikesMoved,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// RentStarted counts a new rent.
func (r *Recorder) RentStarted() {
	r.rentsStarted.Inc()
}

// RentReturned counts a returned rent with its charged amount and duration.
func (r *Recorder) RentReturned(amount float64, d time.Duration) {
	r.rentsReturned.Inc()
	r.rentAmount.Observe(amount)
	r.rentDuration.Observe(d.Seconds())
}

// BikeMoved counts a bike relocation.
func (r *Recorder) BikeMoved() {
	r.bikesMoved.Inc()
}

// Rejected counts an operation refused with the given reason.
func (r *Recorder) Rejected(operation, reason string) {
	r.rejections.WithLabelValues(operation, reason).Inc()
}

// Totals gathers g and sums every counter family by name, across labels.
func Totals(g prometheus.Gatherer) (map[string]float64, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}

	totals := make(map[string]float64)
	for _, f := range families {
		for _, m := range f.GetMetric() {
			if c := m.GetCounter(); c != nil {
				totals[f.GetName()] += c.GetValue()
			}
		}
	}
	return totals, nil
}
