// Package browser drives one controlled browser session against the
// live map page: navigate, activate the vessel overlay, then watch
// outbound traffic and script errors for a settle window.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"aisdiag/internal/domain"
)

// Session-level fault classes. Only ErrLaunch is fatal to a run; the
// others are evidence and travel inside the Observation.
var (
	ErrLaunch            = errors.New("browser launch failed")
	ErrNavigationTimeout = errors.New("page navigation timed out")
	ErrTriggerNotFound   = errors.New("overlay trigger could not be activated")
	ErrTeardown          = errors.New("browser session teardown failed")
)

// Observation is everything one session saw. SessionError carries a
// navigation or trigger fault; the events captured up to that point
// are still valid evidence.
type Observation struct {
	Events        []domain.NetworkEvent
	ConsoleErrors []string
	Triggered     bool
	SessionError  error
}

// Monitor runs browser observations. It drives one real rendering
// engine instance per Observe call and is not safe for concurrent use.
type Monitor struct {
	Logger          *zap.Logger
	Headless        bool
	TrackedHosts    []string
	ReadySelector   string
	TriggerSelector string
	// NavTimeout bounds the navigate-and-ready phase so a dead page
	// cannot hold the session open indefinitely.
	NavTimeout time.Duration
}

func NewMonitor(logger *zap.Logger, headless bool, trackedHosts []string, readySel, triggerSel string) *Monitor {
	return &Monitor{
		Logger:          logger,
		Headless:        headless,
		TrackedHosts:    trackedHosts,
		ReadySelector:   readySel,
		TriggerSelector: triggerSel,
		NavTimeout:      20 * time.Second,
	}
}

// Observe launches one browser, loads the page, activates the overlay
// control and keeps recording tracked network events and console
// errors for the settle window. Teardown is guaranteed on every path:
// the allocator and browser contexts are cancelled via defers even
// when the run deadline fires mid-session.
func (m *Monitor) Observe(ctx context.Context, pageURL string, settle time.Duration) (obs Observation, err error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", m.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	actx, acancel := chromedp.NewExecAllocator(ctx, opts...)
	defer acancel()

	bctx, bcancel := chromedp.NewContext(actx)
	defer bcancel()

	// Graceful close of the rendering engine; a teardown fault rides
	// along on the error return but never invalidates what was seen.
	defer func() {
		if cerr := chromedp.Cancel(bctx); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("%w: %v", ErrTeardown, cerr))
		}
	}()

	col := newCollector(m.TrackedHosts)
	chromedp.ListenTarget(bctx, func(ev interface{}) { m.handleEvent(col, ev) })

	// Starting the browser and enabling network capture is the only
	// fatal phase: without it there is nothing to observe.
	if err := chromedp.Run(bctx, network.Enable()); err != nil {
		return Observation{}, fmt.Errorf("%w: %v", ErrLaunch, err)
	}

	if err := m.navigate(bctx, pageURL); err != nil {
		obs.SessionError = err
		obs.Events = col.events()
		obs.ConsoleErrors = col.consoleErrors()
		return obs, nil
	}

	if err := m.trigger(bctx); err != nil {
		obs.SessionError = err
		m.Logger.Warn("browser_trigger_failed", zap.Error(err))
		// Keep observing: some pages re-enable the layer themselves,
		// and zero events after the window is itself diagnostic.
	} else {
		obs.Triggered = true
	}

	m.Logger.Info("browser_settle_window", zap.Duration("settle", settle))
	select {
	case <-time.After(settle):
	case <-bctx.Done():
	}

	obs.Events = col.events()
	obs.ConsoleErrors = col.consoleErrors()
	m.Logger.Info("browser_observed",
		zap.Int("network_events", len(obs.Events)),
		zap.Int("console_errors", len(obs.ConsoleErrors)),
		zap.Bool("triggered", obs.Triggered),
	)
	return obs, nil
}

func (m *Monitor) navigate(bctx context.Context, pageURL string) error {
	navCtx, cancel := context.WithTimeout(bctx, m.NavTimeout)
	defer cancel()

	err := chromedp.Run(navCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady(m.ReadySelector, chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s not ready within %s", ErrNavigationTimeout, m.ReadySelector, m.NavTimeout)
		}
		return fmt.Errorf("%w: %v", ErrNavigationTimeout, err)
	}
	return nil
}

// trigger activates the overlay control. A direct click needs the
// element visible; the JS fallback covers controls hidden inside a
// collapsed layer menu.
func (m *Monitor) trigger(bctx context.Context) error {
	clickCtx, cancel := context.WithTimeout(bctx, 10*time.Second)
	defer cancel()

	err := chromedp.Run(clickCtx,
		chromedp.Click(m.TriggerSelector, chromedp.ByQuery, chromedp.NodeVisible),
	)
	if err == nil {
		return nil
	}

	var clicked bool
	script := fmt.Sprintf(
		`(function() { var el = document.querySelector(%q); if (!el) { return false; } el.click(); return true; })()`,
		m.TriggerSelector,
	)
	evalCtx, evalCancel := context.WithTimeout(bctx, 5*time.Second)
	defer evalCancel()
	if err := chromedp.Run(evalCtx, chromedp.Evaluate(script, &clicked)); err != nil || !clicked {
		return fmt.Errorf("%w: selector %q", ErrTriggerNotFound, m.TriggerSelector)
	}
	return nil
}

func (m *Monitor) handleEvent(col *collector, ev interface{}) {
	now := time.Now().UTC()
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		col.onRequest(string(e.RequestID), e.Request.URL, e.Request.Method, now)
	case *network.EventResponseReceived:
		col.onResponse(string(e.RequestID), int(e.Response.Status), now)
	case *network.EventLoadingFailed:
		col.onFailure(string(e.RequestID), e.ErrorText, now)
	case *runtime.EventExceptionThrown:
		col.onConsoleError(exceptionText(e))
	case *runtime.EventConsoleAPICalled:
		if e.Type == runtime.APITypeError {
			col.onConsoleError(consoleArgsText(e))
		}
	}
}

func exceptionText(e *runtime.EventExceptionThrown) string {
	d := e.ExceptionDetails
	if d == nil {
		return ""
	}
	if d.Exception != nil && d.Exception.Description != "" {
		return d.Exception.Description
	}
	return d.Text
}

func consoleArgsText(e *runtime.EventConsoleAPICalled) string {
	parts := make([]string, 0, len(e.Args))
	for _, arg := range e.Args {
		switch {
		case arg.Description != "":
			parts = append(parts, arg.Description)
		case len(arg.Value) > 0:
			parts = append(parts, string(arg.Value))
		}
	}
	return strings.Join(parts, " ")
}
