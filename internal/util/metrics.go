package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DaysAdvancedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "simulation_days_advanced_total",
		Help: "Total number of simulated days advanced",
	})

	AdvanceDayLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "simulation_advance_day_latency_seconds",
		Help:    "Latency of advancing one simulated day",
		Buckets: prometheus.DefBuckets,
	})

	PurchaseOrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "purchase_orders_created_total",
		Help: "Total number of purchase orders enqueued",
	})

	PurchasesReceivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "purchase_orders_received_total",
		Help: "Total number of purchase orders received into inventory",
	})

	ManufacturingOrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "manufacturing_orders_created_total",
		Help: "Total number of manufacturing orders enqueued",
	})

	ManufacturingOrdersGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "manufacturing_orders_generated_total",
		Help: "Total number of manufacturing orders produced by the arrival model",
	})

	ManufacturingStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "manufacturing_orders_started_total",
		Help: "Total number of manufacturing orders that entered production",
	})

	ManufacturingCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "manufacturing_orders_completed_total",
		Help: "Total number of manufacturing orders completed",
	})

	ManufacturingBlockedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "manufacturing_orders_blocked_total",
		Help: "Total number of start attempts blocked by missing materials",
	})

	OrderRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_rejections_total",
		Help: "Total number of rejected order creations",
	}, []string{"reason"})

	SuggestionsEmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "purchase_suggestions_emitted_total",
		Help: "Total number of purchase suggestions emitted",
	})

	InventoryInvariantViolationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_invariant_violations_total",
		Help: "Total number of debits that exceeded available inventory",
	})

	SnapshotOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "simulation_snapshot_ops_total",
		Help: "Total number of snapshot operations",
	}, []string{"op"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
