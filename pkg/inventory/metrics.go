package inventory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	buildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "patchinv_inventory_build_duration_seconds",
			Help:    "Time taken to filter, resolve, and group retrieved records",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
	)

	recordsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "patchinv_inventory_records_dropped_total",
			Help: "Total number of records left out of the inventory",
		},
		[]string{"reason"}, // ignored-host, ignored-group, missing-group, unresolvable
	)

	lookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "patchinv_lookup_duration_seconds",
			Help:    "Time taken by individual hostname lookups",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	lookupTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "patchinv_lookup_total",
			Help: "Total number of hostname lookups",
		},
		[]string{"result"}, // success or failure
	)

	inventoryHosts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "patchinv_inventory_hosts",
			Help: "Number of hosts in the last built inventory",
		},
	)

	inventoryGroups = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "patchinv_inventory_groups",
			Help: "Number of groups in the last built inventory, excluding all",
		},
	)
)
