package browser

import (
	"testing"
	"time"
)

var hosts = []string{"tiles.marinetraffic.com", "data.aishub.net", "map.openseamap.org"}

func TestCollector_FiltersByAllowlist(t *testing.T) {
	c := newCollector(hosts)
	t0 := time.Now().UTC()

	c.onRequest("1", "https://tiles.marinetraffic.com/ais_helpers/shiptilesingle.aspx?zoom=10", "GET", t0)
	c.onRequest("2", "https://fonts.googleapis.com/css", "GET", t0)
	c.onRequest("3", "https://sub.data.aishub.net/ws.php", "GET", t0)

	evs := c.events()
	if len(evs) != 2 {
		t.Fatalf("want 2 tracked events, got %d: %+v", len(evs), evs)
	}
	// Untracked responses must not resurrect filtered requests.
	c.onResponse("2", 200, t0)
	if len(c.events()) != 2 {
		t.Fatalf("untracked request leaked in after response")
	}
}

func TestCollector_CorrelatesResponseAndFailure(t *testing.T) {
	c := newCollector(hosts)
	t0 := time.Now().UTC()

	c.onRequest("a", "https://tiles.marinetraffic.com/tile", "GET", t0)
	c.onResponse("a", 403, t0.Add(120*time.Millisecond))

	c.onRequest("b", "https://data.aishub.net/ws.php", "GET", t0.Add(10*time.Millisecond))
	c.onFailure("b", "net::ERR_NAME_NOT_RESOLVED", t0.Add(50*time.Millisecond))

	evs := c.events()
	if len(evs) != 2 {
		t.Fatalf("want 2 events, got %d", len(evs))
	}
	if evs[0].Status != 403 || evs[0].Failed {
		t.Fatalf("first event: want completed 403, got %+v", evs[0])
	}
	if evs[0].Duration != 120*time.Millisecond {
		t.Fatalf("first event duration: want 120ms, got %s", evs[0].Duration)
	}
	if !evs[1].Failed || evs[1].ErrorText != "net::ERR_NAME_NOT_RESOLVED" {
		t.Fatalf("second event: want transport failure, got %+v", evs[1])
	}
}

func TestCollector_EventsOrderedByStartTime(t *testing.T) {
	c := newCollector(hosts)
	base := time.Now().UTC()

	c.onRequest("late", "https://map.openseamap.org/api/getAIS.php", "GET", base.Add(time.Second))
	c.onRequest("early", "https://tiles.marinetraffic.com/tile", "GET", base)

	evs := c.events()
	if !evs[0].StartedAt.Before(evs[1].StartedAt) && !evs[0].StartedAt.Equal(evs[1].StartedAt) {
		t.Fatalf("events not monotonic by start time: %+v", evs)
	}
	if evs[0].URL != "https://tiles.marinetraffic.com/tile" {
		t.Fatalf("want earliest event first, got %q", evs[0].URL)
	}
}

func TestCollector_ZeroEventsIsValid(t *testing.T) {
	c := newCollector(hosts)
	if evs := c.events(); len(evs) != 0 {
		t.Fatalf("want zero events, got %d", len(evs))
	}
}

func TestCollector_ConsoleErrorsVerbatim(t *testing.T) {
	c := newCollector(hosts)
	c.onConsoleError("TypeError: aisLayer is undefined")
	c.onConsoleError("") // dropped
	c.onConsoleError("ReferenceError: MarineTraffic is not defined")

	errs := c.consoleErrors()
	if len(errs) != 2 {
		t.Fatalf("want 2 console errors, got %d: %v", len(errs), errs)
	}
	if errs[0] != "TypeError: aisLayer is undefined" {
		t.Fatalf("console error not captured verbatim: %q", errs[0])
	}
}

func TestCollector_DuplicateRequestIDIgnored(t *testing.T) {
	c := newCollector(hosts)
	t0 := time.Now().UTC()
	c.onRequest("x", "https://tiles.marinetraffic.com/a", "GET", t0)
	c.onRequest("x", "https://tiles.marinetraffic.com/b", "GET", t0.Add(time.Millisecond))
	if evs := c.events(); len(evs) != 1 || evs[0].URL != "https://tiles.marinetraffic.com/a" {
		t.Fatalf("duplicate request id not ignored: %+v", evs)
	}
}
