package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestProbeResult_JSONRoundTrip(t *testing.T) {
	want := ProbeResult{
		ProbeID:    ProbeID("http_marinetraffic_tiles"),
		Status:     StatusFailure,
		HTTPStatus: 403,
		LatencyMS:  87.5,
		Detail:     "403 Forbidden",
		CheckedAt:  time.Date(2025, 12, 9, 10, 36, 0, 0, time.UTC),
	}
	b, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got ProbeResult
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ProbeID != want.ProbeID || got.Status != want.Status ||
		got.HTTPStatus != want.HTTPStatus || got.Detail != want.Detail ||
		!got.CheckedAt.Equal(want.CheckedAt) {
		t.Fatalf("mismatch after round-trip:\nwant=%+v\ngot =%+v", want, got)
	}
}

func TestNetworkEvent_Completed2xx(t *testing.T) {
	cases := []struct {
		name string
		ev   NetworkEvent
		want bool
	}{
		{"ok", NetworkEvent{Status: 200}, true},
		{"forbidden", NetworkEvent{Status: 403}, false},
		{"never completed", NetworkEvent{Status: 0}, false},
		{"failed transport", NetworkEvent{Status: 200, Failed: true}, false},
	}
	for _, c := range cases {
		if got := c.ev.Completed2xx(); got != c.want {
			t.Fatalf("%s: Completed2xx()=%v want %v", c.name, got, c.want)
		}
	}
}

func TestDiagnosticReport_CloneIsIndependent(t *testing.T) {
	orig := &DiagnosticReport{
		RunID:         "r1",
		GeneratedAt:   time.Now().UTC(),
		Results:       []ProbeResult{{ProbeID: "p1", Status: StatusSuccess}},
		Events:        []NetworkEvent{{URL: "https://data.aishub.net/ws.php"}},
		ConsoleErrors: []string{"TypeError: x is undefined"},
		Verdict:       VerdictInconclusive,
		Rationale:     []string{"no rule matched"},
	}
	cp := orig.Clone()

	cp.Results[0].Status = StatusFailure
	cp.Events[0].URL = "mutated"
	cp.ConsoleErrors[0] = "mutated"
	cp.Rationale[0] = "mutated"

	if orig.Results[0].Status != StatusSuccess {
		t.Fatalf("clone mutation leaked into original results")
	}
	if orig.Events[0].URL != "https://data.aishub.net/ws.php" {
		t.Fatalf("clone mutation leaked into original events")
	}
	if orig.ConsoleErrors[0] != "TypeError: x is undefined" {
		t.Fatalf("clone mutation leaked into original console errors")
	}
	if orig.Rationale[0] != "no rule matched" {
		t.Fatalf("clone mutation leaked into original rationale")
	}
}
