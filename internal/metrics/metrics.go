package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPRequests counts served requests by method, route pattern and status class.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "heritage",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "HTTP requests served.",
}, []string{"method", "path", "status"})

// VideoJobs counts finished generation pipeline runs by outcome (ready, failed).
var VideoJobs = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "heritage",
	Subsystem: "video",
	Name:      "jobs_total",
	Help:      "Video generation pipeline outcomes.",
}, []string{"outcome"})

// VideoJobsInFlight tracks currently running generation pipelines.
var VideoJobsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "heritage",
	Subsystem: "video",
	Name:      "jobs_in_flight",
	Help:      "Video generation pipelines currently running.",
})
