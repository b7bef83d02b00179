package domain

import "time"

// Verdict is the single best-supported classification of why the
// overlay shows no data, chosen by first-match rule evaluation.
type Verdict string

const (
	VerdictProviderAccessRestricted Verdict = "provider_access_restricted"
	VerdictProviderEndpointRemoved  Verdict = "provider_endpoint_removed"
	VerdictClientNeverRequests      Verdict = "client_layer_never_triggers_request"
	VerdictClientRequestsFail       Verdict = "client_requests_fail_despite_reachable_endpoint"
	VerdictClientScriptError        Verdict = "client_side_script_error"
	VerdictInconclusive             Verdict = "inconclusive"
)

// RunStatus is the aggregate outcome the shell layer maps to an exit
// code. Setup errors never carry a report.
type RunStatus int

const (
	RunHealthy RunStatus = iota
	RunIssues
	RunSetupError
)

// DiagnosticReport is the single artifact of a run. It is built once,
// after all probes and the browser session have finished, and is a
// pure function of their outputs.
type DiagnosticReport struct {
	RunID         string         `json:"run_id"`
	GeneratedAt   time.Time      `json:"generated_at"`
	Results       []ProbeResult  `json:"results"`
	Events        []NetworkEvent `json:"network_events"`
	ConsoleErrors []string       `json:"console_errors,omitempty"`
	Verdict       Verdict        `json:"verdict"`
	Rationale     []string       `json:"rationale"`
}

// Clone returns a deep copy so callers can hand the report across an
// API boundary without sharing slices with the run that built it.
func (r *DiagnosticReport) Clone() *DiagnosticReport {
	cp := *r
	cp.Results = append([]ProbeResult(nil), r.Results...)
	cp.Events = append([]NetworkEvent(nil), r.Events...)
	cp.ConsoleErrors = append([]string(nil), r.ConsoleErrors...)
	cp.Rationale = append([]string(nil), r.Rationale...)
	return &cp
}
