// Package browser defines the browser session capability the cause-list workflow drives,
// plus a headless Chrome implementation built on chromedp.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultPollInterval is how often WaitUntil re-checks its condition.
const DefaultPollInterval = 250 * time.Millisecond

// Option is one <option> of a <select> element.
type Option struct {
	Text     string `json:"text"`
	Value    string `json:"value"`
	Disabled bool   `json:"disabled"`
}

// Session is a single browser tab. Selectors are CSS selectors. A Session is owned by
// exactly one goroutine at a time and must be closed by its owner.
type Session interface {
	// Navigate loads url and waits for the document body.
	Navigate(ctx context.Context, url string) error
	// Exists reports whether sel currently matches an element.
	Exists(ctx context.Context, sel string) (bool, error)
	// Options returns the options of the <select> matched by sel.
	Options(ctx context.Context, sel string) ([]Option, error)
	// SelectOption picks value in the <select> matched by sel and fires change events.
	SelectOption(ctx context.Context, sel, value string) error
	// SetValue assigns value to the input matched by sel and fires input/change/blur.
	SetValue(ctx context.Context, sel, value string) error
	// SendKeys types text into the element matched by sel.
	SendKeys(ctx context.Context, sel, text string) error
	// Value reads back the value of the input matched by sel.
	Value(ctx context.Context, sel string) (string, error)
	// Click clicks the element matched by sel.
	Click(ctx context.Context, sel string) error
	// Evaluate runs script in the page and decodes its JSON result into res (which may be nil).
	Evaluate(ctx context.Context, script string, res any) error
	// Screenshot captures the element matched by sel as PNG.
	Screenshot(ctx context.Context, sel string) ([]byte, error)
	// PageSource returns the rendered document markup.
	PageSource(ctx context.Context) (string, error)
	// Close releases the tab and its browser process.
	Close() error
}

// Factory creates fresh, isolated sessions.
type Factory interface {
	New(ctx context.Context) (Session, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(ctx context.Context) (Session, error)

// New calls f.
func (f FactoryFunc) New(ctx context.Context) (Session, error) {
	return f(ctx)
}

// WaitError is returned when a bounded wait runs out of time.
type WaitError struct {
	What    string
	Timeout time.Duration
	Cause   error
}

func (e *WaitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("timed out after %s waiting for %s: %v", e.Timeout, e.What, e.Cause)
	}
	return fmt.Sprintf("timed out after %s waiting for %s", e.Timeout, e.What)
}

func (e *WaitError) Unwrap() error {
	return e.Cause
}

// Condition is polled by WaitUntil. Errors are treated as "not yet".
type Condition func(ctx context.Context) (bool, error)

// WaitUntil polls cond every interval until it holds, the timeout elapses or ctx ends.
// The condition is always checked at least once.
func WaitUntil(ctx context.Context, what string, timeout, interval time.Duration, cond Condition) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	deadline := time.Now().Add(timeout)
	var last error

	for {
		ok, err := cond(ctx)
		if err == nil && ok {
			return nil
		}
		if err != nil {
			last = err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !time.Now().Before(deadline) {
			return &WaitError{What: what, Timeout: timeout, Cause: last}
		}

		wait := min(interval, time.Until(deadline))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// WaitForElement waits until sel matches an element.
func WaitForElement(ctx context.Context, s Session, sel string, timeout, interval time.Duration) error {
	return WaitUntil(ctx, sel, timeout, interval, func(ctx context.Context) (bool, error) {
		return s.Exists(ctx, sel)
	})
}

// WaitForOptions waits until the <select> matched by sel holds more than min options.
func WaitForOptions(ctx context.Context, s Session, sel string, minOptions int, timeout, interval time.Duration) error {
	return WaitUntil(ctx, sel+" options", timeout, interval, func(ctx context.Context) (bool, error) {
		opts, err := s.Options(ctx, sel)
		if err != nil {
			return false, err
		}
		return len(opts) > minOptions, nil
	})
}

// WaitForDocumentReady waits until document.readyState is "complete".
func WaitForDocumentReady(ctx context.Context, s Session, timeout, interval time.Duration) error {
	return WaitUntil(ctx, "document ready", timeout, interval, func(ctx context.Context) (bool, error) {
		var state string
		if err := s.Evaluate(ctx, `document.readyState`, &state); err != nil {
			return false, err
		}
		return state == "complete", nil
	})
}

// Pause sleeps for d unless ctx ends first. It is used for the portal's fixed settle
// delays, where no readiness signal exists to poll.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// JSString quotes s as a JavaScript string literal.
func JSString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
