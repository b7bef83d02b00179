// Package verdict turns the collected probe results and browser
// observations into a single classification. The rules form an
// explicit ordered table, most specific first; ties break on rule
// order, never on confidence, so appending a new failure signature
// can never disturb existing precedence.
package verdict

import (
	"fmt"
	"net/url"
	"strings"

	"aisdiag/internal/domain"
)

// Evidence is the full, immutable input to classification. Specs ride
// along so rules can tell provider probes from own-infrastructure
// probes; the verdict is a pure function of this value.
type Evidence struct {
	Specs         []domain.ProbeSpec
	Results       []domain.ProbeResult
	Events        []domain.NetworkEvent
	ConsoleErrors []string
}

type rule struct {
	verdict domain.Verdict
	match   func(ev *Evidence) (bool, []string)
}

var rules = []rule{
	{domain.VerdictProviderAccessRestricted, matchProviderAccessRestricted},
	{domain.VerdictProviderEndpointRemoved, matchProviderEndpointRemoved},
	{domain.VerdictClientNeverRequests, matchClientNeverRequests},
	{domain.VerdictClientRequestsFail, matchClientRequestsFail},
	{domain.VerdictClientScriptError, matchClientScriptError},
}

// Classify evaluates the rule table in order and returns the first
// matching verdict with its evidence-citing rationale. Lower-priority
// rules that also match are appended as secondary findings so
// simultaneous conditions stay visible in the report.
func Classify(ev Evidence) (domain.Verdict, []string) {
	var (
		verdict   domain.Verdict
		rationale []string
	)
	for _, r := range rules {
		ok, cites := r.match(&ev)
		if !ok {
			continue
		}
		if verdict == "" {
			verdict = r.verdict
			rationale = cites
			continue
		}
		rationale = append(rationale, fmt.Sprintf("also observed (%s):", r.verdict))
		rationale = append(rationale, cites...)
	}
	if verdict == "" {
		return domain.VerdictInconclusive, inconclusiveRationale(&ev)
	}
	return verdict, rationale
}

// Rule 1: a provider answered but rejected the request outright.
func matchProviderAccessRestricted(ev *Evidence) (bool, []string) {
	var cites []string
	for _, r := range ev.Results {
		spec, ok := ev.spec(r.ProbeID)
		if !ok || !spec.Provider || spec.Kind != domain.KindHTTPGet {
			continue
		}
		if r.Status == domain.StatusFailure && (r.HTTPStatus == 401 || r.HTTPStatus == 403) {
			cites = append(cites, fmt.Sprintf(
				"probe %s: %s answered HTTP %d — endpoint reachable but access restricted",
				r.ProbeID, spec.Target, r.HTTPStatus))
		}
	}
	return len(cites) > 0, cites
}

// Rule 2: a provider hostname no longer exists in DNS.
func matchProviderEndpointRemoved(ev *Evidence) (bool, []string) {
	var cites []string
	for _, r := range ev.Results {
		spec, ok := ev.spec(r.ProbeID)
		if !ok || !spec.Provider || spec.Kind != domain.KindDNSResolution {
			continue
		}
		if r.Status == domain.StatusFailure {
			cites = append(cites, fmt.Sprintf(
				"probe %s: %s — %s", r.ProbeID, spec.Target, r.Detail))
		}
	}
	return len(cites) > 0, cites
}

// Rule 3: everything upstream is healthy yet the page never asked for
// data — the client layer is not issuing requests at all. Requires the
// overlay trigger to have actually fired: zero events after a failed
// trigger indict the session, not the page.
func matchClientNeverRequests(ev *Evidence) (bool, []string) {
	if len(ev.Events) > 0 {
		return false, nil
	}
	var cited int
	for _, r := range ev.Results {
		spec, ok := ev.spec(r.ProbeID)
		if !ok {
			continue
		}
		if spec.Kind == domain.KindBrowserTrigger && r.Status != domain.StatusSuccess {
			return false, nil
		}
		if !spec.Provider {
			continue
		}
		if r.Status != domain.StatusSuccess {
			return false, nil
		}
		cited++
	}
	if cited == 0 {
		return false, nil
	}
	return true, []string{fmt.Sprintf(
		"all %d data-provider probes succeeded, yet the browser session recorded zero requests to tracked hosts after the overlay trigger",
		cited)}
}

// Rule 4: the client does issue requests, and every one of them fails,
// while direct probes to the same hosts succeed — a browser-context
// problem (request shape, CORS, credentials), not reachability.
func matchClientRequestsFail(ev *Evidence) (bool, []string) {
	if len(ev.Events) == 0 {
		return false, nil
	}
	var cites []string
	sameHostOK := false
	for _, e := range ev.Events {
		if e.Completed2xx() {
			return false, nil
		}
		switch {
		case e.Failed:
			cites = append(cites, fmt.Sprintf("browser request %s %s failed: %s", e.Method, e.URL, e.ErrorText))
		case e.Status == 0:
			cites = append(cites, fmt.Sprintf("browser request %s %s never completed within the settle window", e.Method, e.URL))
		default:
			cites = append(cites, fmt.Sprintf("browser request %s %s answered HTTP %d", e.Method, e.URL, e.Status))
		}
		if ev.directProbeSucceeded(hostOf(e.URL)) {
			sameHostOK = true
		}
	}
	if !sameHostOK {
		return false, nil
	}
	cites = append(cites, "direct probes to the same hosts succeeded, so the endpoint is reachable outside the browser context")
	return true, cites
}

// Rule 5: the page itself is throwing.
func matchClientScriptError(ev *Evidence) (bool, []string) {
	if len(ev.ConsoleErrors) == 0 {
		return false, nil
	}
	cites := make([]string, 0, len(ev.ConsoleErrors))
	for _, msg := range ev.ConsoleErrors {
		cites = append(cites, "console error: "+msg)
	}
	return true, cites
}

func inconclusiveRationale(ev *Evidence) []string {
	out := []string{fmt.Sprintf(
		"no failure signature matched; raw evidence: %d probe results, %d browser network events, %d console errors",
		len(ev.Results), len(ev.Events), len(ev.ConsoleErrors))}
	for _, r := range ev.Results {
		if r.Status != domain.StatusSuccess {
			out = append(out, fmt.Sprintf("probe %s: %s — %s", r.ProbeID, r.Status, r.Detail))
		}
	}
	return out
}

func (ev *Evidence) spec(id domain.ProbeID) (domain.ProbeSpec, bool) {
	for _, s := range ev.Specs {
		if s.ID == id {
			return s, true
		}
	}
	return domain.ProbeSpec{}, false
}

// directProbeSucceeded reports whether any HTTP probe against the
// given host came back SUCCESS.
func (ev *Evidence) directProbeSucceeded(host string) bool {
	if host == "" {
		return false
	}
	for _, r := range ev.Results {
		spec, ok := ev.spec(r.ProbeID)
		if !ok || spec.Kind != domain.KindHTTPGet {
			continue
		}
		if strings.EqualFold(hostOf(spec.Target), host) && r.Status == domain.StatusSuccess {
			return true
		}
	}
	return false
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
