package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Contributions by outcome: accepted, goal_reached, rejected.
	ContributionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crowdfund_contributions_total",
			Help: "Total number of payment notifications applied to items",
		},
		[]string{"outcome"},
	)

	// Accepted funds split into net and fee parts, in smallest coin units.
	ContributedAmount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crowdfund_contributed_amount_total",
			Help: "Accepted contribution amount in smallest coin units",
		},
		[]string{"part"}, // part: net, fee, leftover
	)

	// Mint dispatches by result: sent, publish_failed.
	MintDispatchCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crowdfund_mint_dispatch_total",
			Help: "Total number of mint requests handed to the minting service",
		},
		[]string{"result"},
	)

	// Mint outcomes by result: confirmed, failed, expired, ignored.
	MintResultCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crowdfund_mint_result_total",
			Help: "Total number of mint confirmations processed",
		},
		[]string{"result"},
	)

	// HTTP request latency by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)
)

// RecordContribution counts an applied contribution. net and fee are the
// accepted parts, leftover is what goes back to the contributor.
func RecordContribution(net, fee, leftover int64, goalReached bool) {
	outcome := "accepted"
	if goalReached {
		outcome = "goal_reached"
	}
	ContributionCount.WithLabelValues(outcome).Inc()
	ContributedAmount.WithLabelValues("net").Add(float64(net))
	ContributedAmount.WithLabelValues("fee").Add(float64(fee))
	ContributedAmount.WithLabelValues("leftover").Add(float64(leftover))
}

// IncrementRejectedContribution counts a notification that changed nothing.
func IncrementRejectedContribution() {
	ContributionCount.WithLabelValues("rejected").Inc()
}

// IncrementMintDispatch counts a mint hand-off.
func IncrementMintDispatch(result string) {
	MintDispatchCount.WithLabelValues(result).Inc()
}

// IncrementMintResult counts a processed mint outcome.
func IncrementMintResult(result string) {
	MintResultCount.WithLabelValues(result).Inc()
}

// RecordHTTPRequestDuration observes one served request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
