package browser

import (
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"aisdiag/internal/domain"
)

// collector accumulates network activity and console errors reported
// by the devtools event stream. chromedp delivers events from its own
// goroutine, so all state is mutex-guarded.
type collector struct {
	mu      sync.Mutex
	hosts   []string
	order   []string // request IDs in arrival order
	pending map[string]*domain.NetworkEvent
	console []string
}

func newCollector(trackedHosts []string) *collector {
	return &collector{
		hosts:   trackedHosts,
		pending: map[string]*domain.NetworkEvent{},
	}
}

// tracked reports whether the request URL points at one of the
// allowlisted data-provider hosts (exact match or subdomain).
func (c *collector) tracked(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	for _, h := range c.hosts {
		if strings.EqualFold(host, h) || strings.HasSuffix(strings.ToLower(host), "."+strings.ToLower(h)) {
			return true
		}
	}
	return false
}

func (c *collector) onRequest(id, rawURL, method string, at time.Time) {
	if !c.tracked(rawURL) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pending[id]; ok {
		return
	}
	c.pending[id] = &domain.NetworkEvent{URL: rawURL, Method: method, StartedAt: at}
	c.order = append(c.order, id)
}

func (c *collector) onResponse(id string, status int, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ev, ok := c.pending[id]
	if !ok {
		return
	}
	ev.Status = status
	ev.Duration = at.Sub(ev.StartedAt)
}

func (c *collector) onFailure(id, errorText string, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ev, ok := c.pending[id]
	if !ok {
		return
	}
	ev.Failed = true
	ev.ErrorText = errorText
	ev.Duration = at.Sub(ev.StartedAt)
}

func (c *collector) onConsoleError(text string) {
	if text == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.console = append(c.console, text)
}

// events returns the captured events ordered by start time. Zero
// events is a legitimate observation: the client never issued a
// request to any tracked host.
func (c *collector) events() []domain.NetworkEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.NetworkEvent, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.pending[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}

func (c *collector) consoleErrors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.console...)
}
