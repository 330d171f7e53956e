package runtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the runtime's Prometheus collectors.
type Metrics struct {
	Transactions *prometheus.CounterVec
	Accounts     prometheus.Gauge
	Airdrops     prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transactions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bountylist",
			Name:      "transactions_total",
			Help:      "Transactions executed, by instruction, status and error code.",
		}, []string{"instruction", "status", "code"}),
		Accounts: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "bountylist",
			Name:      "accounts",
			Help:      "Accounts currently held by the runtime.",
		}),
		Airdrops: f.NewCounter(prometheus.CounterOpts{
			Namespace: "bountylist",
			Name:      "airdrop_lamports_total",
			Help:      "Lamports credited by the faucet.",
		}),
	}
}

func (m *Metrics) observe(rec *Receipt) {
	m.Transactions.WithLabelValues(rec.Instruction, string(rec.Status), rec.ErrorCode).Inc()
}
