// Package captcha solves the cause-list form's image CAPTCHA and submits the form.
package captcha

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/browser"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/ocr"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/retry"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/types"
)

// Form elements involved in the challenge.
const (
	ImageSelector = "#captcha_image"
	InputSelector = "#cause_list_captcha_code"
)

// MinLength is the shortest recognition accepted; anything shorter is an OCR miss.
const MinLength = 3

var (
	// ErrUnreadable means OCR produced too few characters to be worth submitting.
	ErrUnreadable = errors.New("captcha text unreadable")
	// ErrEntryMismatch means the input did not hold the typed text after entry.
	ErrEntryMismatch = errors.New("captcha entry mismatch")
	// ErrRejected means the portal answered with its invalid-CAPTCHA alert.
	ErrRejected = errors.New("captcha rejected by portal")
)

const clearModalsScript = `(() => {
	let cleared = false;
	const err = document.getElementById('validateError');
	if (err && err.style.display !== 'none') { err.style.display = 'none'; cleared = true; }
	document.querySelectorAll('.modal-backdrop').forEach(el => { el.remove(); cleared = true; });
	if (document.body.classList.contains('modal-open')) { document.body.classList.remove('modal-open'); cleared = true; }
	document.body.style.overflow = 'auto';
	return cleared;
})()`

const rejectedScript = `Array.from(document.querySelectorAll('.alert-danger-cust'))
	.some(el => el.offsetParent !== null && el.textContent.includes('Invalid Captcha'))`

func submitScript(category types.Category) string {
	return fmt.Sprintf("submit_causelist(%s)", browser.JSString(string(category)))
}

// Options tunes the solve loop.
type Options struct {
	Attempts     int
	RetryPause   time.Duration
	ImageWait    time.Duration
	PollInterval time.Duration
	ShortPause   time.Duration // between small UI actions
	EntryPause   time.Duration // after typing, before reading back
	SubmitWait   time.Duration // for the portal to answer a submit
}

// DefaultOptions returns the pacing the portal tolerates.
func DefaultOptions() Options {
	return Options{
		Attempts:     3,
		RetryPause:   time.Second,
		ImageWait:    10 * time.Second,
		PollInterval: browser.DefaultPollInterval,
		ShortPause:   300 * time.Millisecond,
		EntryPause:   500 * time.Millisecond,
		SubmitWait:   3 * time.Second,
	}
}

// Solver runs the read-type-submit loop on one session.
type Solver struct {
	session    browser.Session
	recognizer ocr.Recognizer
	opts       Options
	logger     *zap.Logger
}

// NewSolver creates a solver. A nil logger disables logging.
func NewSolver(session browser.Session, recognizer ocr.Recognizer, opts Options, logger *zap.Logger) *Solver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Solver{session: session, recognizer: recognizer, opts: opts, logger: logger}
}

// SolveAndSubmit reports whether a submission for category was accepted. It never
// returns an error; callers treat false as "no document for this category".
func (s *Solver) SolveAndSubmit(ctx context.Context, category types.Category) bool {
	err := s.Solve(ctx, category)
	if err != nil {
		s.logger.Warn("captcha not solved",
			zap.String("category", string(category)),
			zap.Error(err))
		return false
	}
	return true
}

// Solve is SolveAndSubmit with the failure reason kept.
func (s *Solver) Solve(ctx context.Context, category types.Category) error {
	policy := retry.Policy{MaxAttempts: s.opts.Attempts, Backoff: s.opts.RetryPause}
	_, err := policy.Run(ctx, func(ctx context.Context, attempt int) error {
		return s.attempt(ctx, category, attempt)
	}, func(attempt int, err error, _ time.Duration) {
		s.logger.Debug("captcha attempt failed",
			zap.String("category", string(category)),
			zap.Int("attempt", attempt),
			zap.Error(err))
	})
	return err
}

func (s *Solver) attempt(ctx context.Context, category types.Category, attempt int) error {
	if s.clearModals(ctx) {
		s.logger.Debug("cleared stale modal", zap.Int("attempt", attempt))
	}

	if err := browser.WaitForElement(ctx, s.session, ImageSelector, s.opts.ImageWait, s.opts.PollInterval); err != nil {
		return err
	}
	img, err := s.session.Screenshot(ctx, ImageSelector)
	if err != nil {
		return fmt.Errorf("capture captcha: %w", err)
	}
	text, err := s.recognizer.Recognize(ctx, img)
	if err != nil {
		return fmt.Errorf("recognize captcha: %w", err)
	}
	if utf8.RuneCountInString(text) < MinLength {
		return fmt.Errorf("%w: got %q", ErrUnreadable, text)
	}

	s.clearModals(ctx)
	if err := browser.Pause(ctx, s.opts.ShortPause); err != nil {
		return err
	}
	if err := s.session.SetValue(ctx, InputSelector, ""); err != nil {
		return fmt.Errorf("clear captcha input: %w", err)
	}
	if err := s.session.SendKeys(ctx, InputSelector, text); err != nil {
		return fmt.Errorf("type captcha: %w", err)
	}
	if err := browser.Pause(ctx, s.opts.EntryPause); err != nil {
		return err
	}
	entered, err := s.session.Value(ctx, InputSelector)
	if err != nil {
		return fmt.Errorf("read captcha input: %w", err)
	}
	if entered != text {
		return fmt.Errorf("%w: typed %q, field holds %q", ErrEntryMismatch, text, entered)
	}

	if err := browser.Pause(ctx, s.opts.ShortPause); err != nil {
		return err
	}
	s.clearModals(ctx)
	if err := s.session.Evaluate(ctx, submitScript(category), nil); err != nil {
		return fmt.Errorf("submit %s: %w", category, err)
	}
	if err := browser.Pause(ctx, s.opts.SubmitWait); err != nil {
		return err
	}

	var rejected bool
	if err := s.session.Evaluate(ctx, rejectedScript, &rejected); err != nil {
		return fmt.Errorf("check captcha result: %w", err)
	}
	if rejected {
		return ErrRejected
	}
	s.logger.Debug("captcha accepted", zap.String("category", string(category)), zap.Int("attempt", attempt))
	return nil
}

// clearModals hides any error dialog left over from a previous submit and reports
// whether there was one.
func (s *Solver) clearModals(ctx context.Context) bool {
	var cleared bool
	if err := s.session.Evaluate(ctx, clearModalsScript, &cleared); err != nil {
		s.logger.Debug("clear modals failed", zap.Error(err))
		return false
	}
	return cleared
}
