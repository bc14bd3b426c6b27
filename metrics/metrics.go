package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PaymentVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "life_academy_payment_verifications_total",
			Help: "Payment verification attempts by outcome",
		},
		[]string{"outcome"},
	)

	GrantsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "life_academy_grants_applied_total",
			Help: "Enrollment grants created or merged by item type",
		},
		[]string{"item_type"},
	)

	GrantsRevoked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "life_academy_grants_revoked_total",
			Help: "Enrollment grants deactivated by refunds",
		},
	)

	ExpiredGrantsSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "life_academy_expired_grants_swept_total",
			Help: "Grants deactivated by the expiration sweep",
		},
	)

	Refunds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "life_academy_refunds_total",
			Help: "Refunds by path (customer or admin)",
		},
		[]string{"path"},
	)
)
