package monitoring

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	redemptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_redemptions_total",
			Help: "Redemption attempts per event and outcome",
		},
		[]string{"event_id", "outcome"},
	)

	transfers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_transfers_total",
			Help: "Direct transfers per event and outcome",
		},
		[]string{"event_id", "outcome"},
	)

	settlements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resale_settlements_total",
			Help: "Resale settlements per event and outcome",
		},
		[]string{"event_id", "outcome"},
	)

	qrParseFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qr_parse_failures_total",
			Help: "Scanned payloads that failed to parse",
		},
	)

	openListings = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "resale_open_listings_total",
			Help: "Currently open resale listings per event",
		},
		[]string{"event_id"},
	)

	redemptionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ticket_redemption_duration_seconds",
			Help:    "End to end duration of scan redemptions",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"event_id"},
	)
)

// Monitor samples gauge metrics from the Redis mirror on a ticker.
type Monitor struct {
	redis *redis.Client
}

func NewMonitor(redisClient *redis.Client) *Monitor {
	monitor := &Monitor{redis: redisClient}

	go monitor.collectMetrics()

	return monitor
}

func (m *Monitor) collectMetrics() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.collectListingMetrics(context.Background())
	}
}

func (m *Monitor) collectListingMetrics(ctx context.Context) {
	keys, _ := m.redis.Keys(ctx, "listings:event:*").Result()
	for _, key := range keys {
		eventID := key[len("listings:event:"):]
		count, _ := m.redis.SCard(ctx, key).Result()
		openListings.WithLabelValues(eventID).Set(float64(count))
	}
}

// TrackRedemption counts one redemption attempt.
func TrackRedemption(eventID, outcome string) {
	redemptions.WithLabelValues(eventID, outcome).Inc()
}

// TrackTransfer counts one direct transfer attempt.
func TrackTransfer(eventID, outcome string) {
	transfers.WithLabelValues(eventID, outcome).Inc()
}

// TrackSettlement counts one resale settlement attempt.
func TrackSettlement(eventID, outcome string) {
	settlements.WithLabelValues(eventID, outcome).Inc()
}

// TrackQrParseFailure counts an unparseable scanned payload.
func TrackQrParseFailure() {
	qrParseFailures.Inc()
}

// TrackRedemptionDuration observes the scan-to-commit latency.
func TrackRedemptionDuration(eventID string, duration time.Duration) {
	redemptionDuration.WithLabelValues(eventID).Observe(duration.Seconds())
}
