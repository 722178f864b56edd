package notifications

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds fan-out counters. A nil *Metrics records nothing.
type Metrics struct {
	sendsTotal  *prometheus.CounterVec
	runsTotal   *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		sendsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relay",
			Name:      "sms_sends_total",
			Help:      "Total number of SMS send attempts by kind and status.",
		}, []string{"kind", "status"}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relay",
			Name:      "fanout_runs_total",
			Help:      "Total number of completed fan-out runs by direction.",
		}, []string{"direction"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "relay",
			Name:      "fanout_run_duration_seconds",
			Help:      "Wall time of completed fan-out runs.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"direction"}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.sendsTotal, m.runsTotal, m.runDuration} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) recordSend(kind string, status Status) {
	if m == nil {
		return
	}
	m.sendsTotal.WithLabelValues(kind, string(status)).Inc()
}

func (m *Metrics) recordRun(r *Result) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(string(r.Direction)).Inc()
	m.runDuration.WithLabelValues(string(r.Direction)).Observe(r.Duration.Seconds())
}
