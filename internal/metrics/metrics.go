package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PurchasesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "purchases_created_total",
		Help: "Purchases created (pending).",
	})

	ReceiptsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "receipts_accepted_total",
		Help: "Receipts attached to a pending purchase.",
	})

	DuplicateReceipts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "receipts_duplicate_total",
		Help: "Receipt submissions refused because the fingerprint was already ledgered.",
	})

	Decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "purchase_decisions_total",
		Help: "Operator decisions applied, by outcome.",
	}, []string{"decision"})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rate_limited_events_total",
		Help: "Inbound events rejected by the per-actor cooldown.",
	})

	NotifyFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notify_failures_total",
		Help: "Outbound notifications that could not be delivered.",
	})

	BroadcastDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "broadcast_deliveries_total",
		Help: "Broadcast fan-out results, by outcome.",
	}, []string{"result"})
)
