package main

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// probes — служебные эндпойнты процесса.
//   - /livez — процесс жив;
//   - /healthz — готов принимать трафик (после Listen и до начала shutdown);
//   - /metrics — prometheus.
type probes struct {
	ready atomic.Bool
}

func (p *probes) livez(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (p *probes) healthz(w http.ResponseWriter, _ *http.Request) {
	if !p.ready.Load() {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// mux монтирует пробы рядом с API view-слоя.
func (p *probes) mux(api http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", p.livez)
	mux.HandleFunc("/healthz", p.healthz)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", api)

	return mux
}
