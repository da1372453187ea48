// Package metrics keeps in-process request counters for the admin surface.
package metrics

import (
	"sort"
	"sync"
	"time"
)

type EndpointMetrics struct {
	Endpoint      string  `json:"endpoint"`
	Count         int64   `json:"count"`
	Errors        int64   `json:"errors"`
	TotalMillis   int64   `json:"-"`
	AvgMillis     float64 `json:"avg_ms"`
	LastStatus    int     `json:"last_status"`
	LastRequested string  `json:"last_requested"`
}

type Snapshot struct {
	TotalRequests int64             `json:"total_requests"`
	TotalErrors   int64             `json:"total_errors"`
	UpstreamCalls int64             `json:"upstream_calls"`
	Endpoints     []EndpointMetrics `json:"endpoints"`
}

// Registry counts requests per endpoint plus calls made to the external
// file-search API. Safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	endpoints map[string]*EndpointMetrics
	upstream  int64
}

func NewRegistry() *Registry {
	return &Registry{endpoints: make(map[string]*EndpointMetrics)}
}

// RecordRequest registers one handled request for an endpoint label such as
// "POST /api/v1/channels".
func (r *Registry) RecordRequest(endpoint string, status int, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.endpoints[endpoint]
	if !ok {
		m = &EndpointMetrics{Endpoint: endpoint}
		r.endpoints[endpoint] = m
	}
	m.Count++
	if status >= 400 {
		m.Errors++
	}
	m.TotalMillis += elapsed.Milliseconds()
	m.LastStatus = status
	m.LastRequested = time.Now().UTC().Format(time.RFC3339)
}

// RecordUpstreamCall registers one call to the external API. Satisfies
// filesearch.CallRecorder.
func (r *Registry) RecordUpstreamCall() {
	r.mu.Lock()
	r.upstream++
	r.mu.Unlock()
}

// Snapshot returns current totals with the ten busiest endpoints.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		UpstreamCalls: r.upstream,
		Endpoints:     make([]EndpointMetrics, 0, len(r.endpoints)),
	}
	for _, m := range r.endpoints {
		copied := *m
		if copied.Count > 0 {
			copied.AvgMillis = float64(copied.TotalMillis) / float64(copied.Count)
		}
		snap.TotalRequests += copied.Count
		snap.TotalErrors += copied.Errors
		snap.Endpoints = append(snap.Endpoints, copied)
	}
	sort.Slice(snap.Endpoints, func(i, j int) bool {
		if snap.Endpoints[i].Count != snap.Endpoints[j].Count {
			return snap.Endpoints[i].Count > snap.Endpoints[j].Count
		}
		return snap.Endpoints[i].Endpoint < snap.Endpoints[j].Endpoint
	})
	if len(snap.Endpoints) > 10 {
		snap.Endpoints = snap.Endpoints[:10]
	}
	return snap
}
