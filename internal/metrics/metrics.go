package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CatalogLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibesphere_catalog_loads_total",
			Help: "Catalog load attempts by source kind and outcome",
		},
		[]string{"source", "status"},
	)

	TogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibesphere_toggles_total",
			Help: "Item toggles by result (added, removed, ignored, rejected)",
		},
		[]string{"result"},
	)

	BuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibesphere_builds_total",
			Help: "Spheres built, split by empty or filled selection",
		},
		[]string{"kind"},
	)

	SharesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vibesphere_shares_total",
			Help: "Share links generated",
		},
	)

	UnknownIDsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vibesphere_unknown_ids_dropped_total",
			Help: "Unknown or repeated ids dropped while decoding selections",
		},
	)

	ImageRenderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vibesphere_image_render_seconds",
			Help:    "PNG render latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"image"},
	)
)

// BuildKind labels a build by whether the selection was empty.
func BuildKind(empty bool) string {
	if empty {
		return "empty"
	}
	return "filled"
}
