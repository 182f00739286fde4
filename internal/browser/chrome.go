package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ChromeOptions configures the headless Chrome sessions created by ChromeFactory.
type ChromeOptions struct {
	Headless        bool
	WindowWidth     int
	WindowHeight    int
	UserAgent       string
	ExecPath        string
	PageLoadTimeout time.Duration
	// ActionTimeout bounds every single browser action so a missing node can never
	// pin a session until the task deadline.
	ActionTimeout time.Duration
}

// DefaultChromeOptions returns the settings the portal is known to work with.
func DefaultChromeOptions() ChromeOptions {
	return ChromeOptions{
		Headless:        true,
		WindowWidth:     1920,
		WindowHeight:    1080,
		PageLoadTimeout: 15 * time.Second,
		ActionTimeout:   20 * time.Second,
	}
}

// ChromeFactory launches one Chrome process per session.
type ChromeFactory struct {
	opts   ChromeOptions
	logger *zap.Logger
}

// NewChromeFactory creates a factory. A nil logger disables logging.
func NewChromeFactory(opts ChromeOptions, logger *zap.Logger) *ChromeFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultChromeOptions()
	if opts.WindowWidth == 0 || opts.WindowHeight == 0 {
		opts.WindowWidth, opts.WindowHeight = defaults.WindowWidth, defaults.WindowHeight
	}
	if opts.PageLoadTimeout == 0 {
		opts.PageLoadTimeout = defaults.PageLoadTimeout
	}
	if opts.ActionTimeout == 0 {
		opts.ActionTimeout = defaults.ActionTimeout
	}
	return &ChromeFactory{opts: opts, logger: logger}
}

func (f *ChromeFactory) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", f.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(f.opts.WindowWidth, f.opts.WindowHeight),
	)
	if f.opts.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(f.opts.UserAgent))
	}
	if f.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(f.opts.ExecPath))
	}
	return opts
}

// New starts a browser and returns a session bound to its first tab. The browser's
// lifetime is independent of ctx; ctx only bounds the start-up.
func (f *ChromeFactory) New(ctx context.Context) (Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), f.allocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// The first Run allocates the browser; it must run on the undecorated context or
	// the browser would die with the first derived timeout.
	stop := context.AfterFunc(ctx, browserCancel)
	err := chromedp.Run(browserCtx)
	stop()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("browser start failed: %w", err)
	}

	f.logger.Debug("browser session started")
	return &ChromeSession{
		ctx:    browserCtx,
		opts:   f.opts,
		logger: f.logger,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
	}, nil
}

// ChromeSession is a Session backed by a chromedp tab.
type ChromeSession struct {
	ctx       context.Context
	opts      ChromeOptions
	logger    *zap.Logger
	cancel    func()
	closeOnce sync.Once
}

// run executes actions on the tab, bounded by both ctx and the per-action timeout.
func (s *ChromeSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

// Navigate loads url and waits for the body element.
func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("navigating", zap.String("url", url))
	err := s.run(ctx, s.opts.PageLoadTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// Exists reports whether sel matches an element right now.
func (s *ChromeSession) Exists(ctx context.Context, sel string) (bool, error) {
	var found bool
	err := s.run(ctx, s.opts.ActionTimeout,
		chromedp.Evaluate(fmt.Sprintf(`document.querySelector(%s) !== null`, JSString(sel)), &found))
	return found, err
}

// Options reads the options of a <select>.
func (s *ChromeSession) Options(ctx context.Context, sel string) ([]Option, error) {
	script := fmt.Sprintf(`(() => {
		const el = document.querySelector(%[1]s);
		if (!el || !el.options) { throw new Error("select not found: " + %[1]s); }
		return Array.from(el.options).map(o => ({text: o.text.trim(), value: o.value, disabled: o.disabled}));
	})()`, JSString(sel))

	var opts []Option
	if err := s.run(ctx, s.opts.ActionTimeout, chromedp.Evaluate(script, &opts)); err != nil {
		return nil, err
	}
	return opts, nil
}

// assignScript sets the element's value and fires the events the portal listens to.
func assignScript(sel, value string) string {
	return fmt.Sprintf(`(() => {
		const el = document.querySelector(%[1]s);
		if (!el) { throw new Error("element not found: " + %[1]s); }
		el.value = %[2]s;
		for (const t of ["input", "change", "blur"]) {
			el.dispatchEvent(new Event(t, {bubbles: true}));
		}
		return el.value;
	})()`, JSString(sel), JSString(value))
}

// SelectOption picks value in a <select>. It fails if the option does not exist.
func (s *ChromeSession) SelectOption(ctx context.Context, sel, value string) error {
	var got string
	if err := s.run(ctx, s.opts.ActionTimeout, chromedp.Evaluate(assignScript(sel, value), &got)); err != nil {
		return fmt.Errorf("select %s=%s: %w", sel, value, err)
	}
	if got != value {
		return fmt.Errorf("select %s: option %q not available", sel, value)
	}
	return nil
}

// SetValue assigns value to an input.
func (s *ChromeSession) SetValue(ctx context.Context, sel, value string) error {
	if err := s.run(ctx, s.opts.ActionTimeout, chromedp.Evaluate(assignScript(sel, value), nil)); err != nil {
		return fmt.Errorf("set %s: %w", sel, err)
	}
	return nil
}

// SendKeys types text into an element.
func (s *ChromeSession) SendKeys(ctx context.Context, sel, text string) error {
	return s.run(ctx, s.opts.ActionTimeout, chromedp.SendKeys(sel, text, chromedp.ByQuery))
}

// Value reads an input's current value.
func (s *ChromeSession) Value(ctx context.Context, sel string) (string, error) {
	script := fmt.Sprintf(`(() => {
		const el = document.querySelector(%[1]s);
		if (!el) { throw new Error("element not found: " + %[1]s); }
		return el.value;
	})()`, JSString(sel))

	var v string
	err := s.run(ctx, s.opts.ActionTimeout, chromedp.Evaluate(script, &v))
	return v, err
}

// Click clicks an element once it is visible.
func (s *ChromeSession) Click(ctx context.Context, sel string) error {
	return s.run(ctx, s.opts.ActionTimeout, chromedp.Click(sel, chromedp.ByQuery))
}

// Evaluate runs script and decodes the result into res.
func (s *ChromeSession) Evaluate(ctx context.Context, script string, res any) error {
	return s.run(ctx, s.opts.ActionTimeout, chromedp.Evaluate(script, res))
}

// Screenshot captures a visible element as PNG.
func (s *ChromeSession) Screenshot(ctx context.Context, sel string) ([]byte, error) {
	var buf []byte
	err := s.run(ctx, s.opts.ActionTimeout, chromedp.Screenshot(sel, &buf, chromedp.NodeVisible, chromedp.ByQuery))
	return buf, err
}

// PageSource returns the outer HTML of the document.
func (s *ChromeSession) PageSource(ctx context.Context) (string, error) {
	var html string
	err := s.run(ctx, s.opts.ActionTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

// Close shuts the tab and the browser process. It is safe to call more than once.
func (s *ChromeSession) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.logger.Debug("browser session closed")
	})
	return nil
}
