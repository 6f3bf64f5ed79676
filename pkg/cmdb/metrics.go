package cmdb

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cmdbRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "patchinv_cmdb_request_duration_seconds",
			Help:    "Time taken by the CMDB table API request",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	cmdbRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "patchinv_cmdb_request_total",
			Help: "Total number of CMDB table API requests",
		},
		[]string{"status"}, // success or error code
	)

	cmdbRecordsRetrieved = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "patchinv_cmdb_records_retrieved",
			Help: "Number of records returned by the last CMDB query",
		},
	)
)
