package domain

import "time"

// ProbeID identifies one declared probe within a run.
type ProbeID string

// ProbeKind selects which runner executes a spec.
type ProbeKind string

const (
	KindDNSResolution  ProbeKind = "dns_resolution"
	KindHTTPGet        ProbeKind = "http_get"
	KindBrowserTrigger ProbeKind = "browser_layer_trigger"
)

// Status is the normalized outcome of a single probe.
//
// Failure, Timeout and Error stay distinct on purpose: the verdict
// rules need "endpoint reachable but rejecting" (FAILURE with an HTTP
// status) kept apart from "endpoint unreachable" (ERROR) and "no
// answer within budget" (TIMEOUT).
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusTimeout Status = "timeout"
	StatusError   Status = "error"
	// StatusSkipped marks probes never started because the global run
	// deadline expired first.
	StatusSkipped Status = "skipped"
)

// ProbeSpec declares one probe. Specs are immutable values created at
// startup; the registry owns their ordering.
type ProbeSpec struct {
	ID      ProbeID       `json:"id"`
	Target  string        `json:"target"` // hostname for DNS, URL otherwise
	Kind    ProbeKind     `json:"kind"`
	Timeout time.Duration `json:"timeout"`
	// ExpectStatus optionally names the HTTP status codes or ranges the
	// investigator considers normal for this endpoint, e.g. "2xx" or
	// "200,403". Empty means 2xx/3xx.
	ExpectStatus string `json:"expect_status,omitempty"`
	// Provider marks specs that point at a third-party AIS data
	// provider, as opposed to the service's own infrastructure. The
	// verdict rules key on this.
	Provider bool `json:"provider,omitempty"`
}

// ProbeResult is the outcome of exactly one ProbeSpec. Created once
// per spec per run, never mutated afterwards.
type ProbeResult struct {
	ProbeID    ProbeID   `json:"probe_id"`
	Status     Status    `json:"status"`
	HTTPStatus int       `json:"http_status,omitempty"` // 0 when not applicable
	LatencyMS  float64   `json:"latency_ms,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	CheckedAt  time.Time `json:"checked_at"`
}

// NetworkEvent is one request observed during the browser session that
// matched the tracked-host allowlist. Status is 0 when the request
// never completed before the settle window closed.
type NetworkEvent struct {
	URL       string        `json:"url"`
	Method    string        `json:"method"`
	Status    int           `json:"status,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns,omitempty"`
	Failed    bool          `json:"failed"`
	ErrorText string        `json:"error_text,omitempty"`
}

// Completed2xx reports whether the event finished with a 2xx status.
func (e NetworkEvent) Completed2xx() bool {
	return !e.Failed && e.Status >= 200 && e.Status < 300
}
