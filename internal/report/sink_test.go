package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"aisdiag/internal/domain"
)

func sampleReport() *domain.DiagnosticReport {
	return &domain.DiagnosticReport{
		RunID:       "run-1",
		GeneratedAt: time.Date(2025, 12, 9, 10, 36, 0, 0, time.UTC),
		Results: []domain.ProbeResult{
			{ProbeID: "dns_marinetraffic_tiles", Status: domain.StatusFailure, Detail: "NXDOMAIN (name not found)"},
			{ProbeID: "http_openseamap_main", Status: domain.StatusSuccess, HTTPStatus: 200, LatencyMS: 87.2, Detail: "200 OK"},
		},
		Events: []domain.NetworkEvent{
			{URL: "https://tiles.marinetraffic.com/tile", Method: "GET", Failed: true, ErrorText: "net::ERR_NAME_NOT_RESOLVED", StartedAt: time.Now()},
		},
		ConsoleErrors: []string{"TypeError: aisLayer is undefined"},
		Verdict:       domain.VerdictProviderEndpointRemoved,
		Rationale:     []string{"probe dns_marinetraffic_tiles: tiles.marinetraffic.com — NXDOMAIN (name not found)"},
	}
}

func TestJSONSink_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONSink{Out: &buf}).Write(sampleReport()); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got domain.DiagnosticReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got.RunID != "run-1" || got.Verdict != domain.VerdictProviderEndpointRemoved {
		t.Fatalf("round-trip lost fields: %+v", got)
	}
	if len(got.Results) != 2 || len(got.Rationale) != 1 {
		t.Fatalf("round-trip lost evidence: %+v", got)
	}
}

func TestTextSink_CitesEvidence(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextSink{Out: &buf}).Write(sampleReport()); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Verdict: provider_endpoint_removed",
		"dns_marinetraffic_tiles",
		"net::ERR_NAME_NOT_RESOLVED",
		"TypeError: aisLayer is undefined",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("text report missing %q:\n%s", want, out)
		}
	}
}
