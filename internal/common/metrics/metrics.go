package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the application collectors.
type Metrics struct {
	HTTPRequestTotal    *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Gift admission outcomes per entry path (add, claim, download, bot)
	GiftAdmissionTotal *prometheus.CounterVec

	// Share token lifecycle: issued, accepted, rejected, burned
	ShareTokenTotal *prometheus.CounterVec

	// Webhook updates by kind and outcome
	WebhookUpdateTotal *prometheus.CounterVec
}

// New builds the collectors and registers them with reg. Collectors that are
// already registered (e.g. in tests sharing the default registry) are reused.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),

		GiftAdmissionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gift_admissions_total",
			Help: "Gift ledger add attempts by entry path and outcome",
		}, []string{"source", "outcome"}),

		ShareTokenTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gift_share_tokens_total",
			Help: "Share token transitions",
		}, []string{"event"}),

		WebhookUpdateTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_webhook_updates_total",
			Help: "Telegram updates received by kind and outcome",
		}, []string{"kind", "outcome"}),
	}

	m.HTTPRequestTotal = registerOrGet(reg, m.HTTPRequestTotal).(*prometheus.CounterVec)
	m.HTTPRequestDuration = registerOrGet(reg, m.HTTPRequestDuration).(*prometheus.HistogramVec)
	m.GiftAdmissionTotal = registerOrGet(reg, m.GiftAdmissionTotal).(*prometheus.CounterVec)
	m.ShareTokenTotal = registerOrGet(reg, m.ShareTokenTotal).(*prometheus.CounterVec)
	m.WebhookUpdateTotal = registerOrGet(reg, m.WebhookUpdateTotal).(*prometheus.CounterVec)

	return m
}

// NewNop returns collectors registered nowhere; handy for tests.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

func registerOrGet(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}
