package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tu-usuario/stock-ledger/internal/application/engine"
)

var _ engine.Metrics = (*Recorder)(nil)

// Recorder métricas Prometheus del motor de saldos.
type Recorder struct {
	movements     *prometheus.CounterVec
	conflicts     prometheus.Counter
	replays       prometheus.Counter
	applyDuration prometheus.Histogram
}

// NewRecorder registra los colectores en el registry dado (nil = el default).
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Recorder{
		movements: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stockledger_movements_total",
			Help: "Movimientos aplicados al ledger, por tipo.",
		}, []string{"kind"}),
		conflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "stockledger_concurrency_conflicts_total",
			Help: "Conflictos de versión detectados al escribir saldos.",
		}),
		replays: factory.NewCounter(prometheus.CounterOpts{
			Name: "stockledger_idempotency_replays_total",
			Help: "Requests respondidos desde el cache de idempotencia.",
		}),
		applyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockledger_apply_duration_seconds",
			Help:    "Duración de la aplicación de un delta de saldo.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (r *Recorder) MovementApplied(kind string) {
	r.movements.WithLabelValues(kind).Inc()
}

func (r *Recorder) ConcurrencyConflict() {
	r.conflicts.Inc()
}

func (r *Recorder) IdempotencyReplay() {
	r.replays.Inc()
}

func (r *Recorder) ApplyDuration(d time.Duration) {
	r.applyDuration.Observe(d.Seconds())
}
