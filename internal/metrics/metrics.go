package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "feed_events_total", Help: "Feed events ingested by type"},
		[]string{"symbol", "type"},
	)
	ReconnectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "feed_reconnects_total", Help: "Feed reconnect attempts by outcome"},
		[]string{"outcome"},
	)
	WindowsClosedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "windows_closed_total", Help: "Aggregation windows finalized"},
	)
)

func init() {
	prometheus.MustRegister(EventsTotal, ReconnectsTotal, WindowsClosedTotal)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
