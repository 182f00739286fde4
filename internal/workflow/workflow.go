// Package workflow runs one court through the portal on a single session: navigate,
// fetch the civil and criminal listings, and render the combined document.
package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/browser"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/captcha"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/extraction"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/navigation"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/ocr"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/rendering"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/types"
)

// DefaultPortalURL is the cause-list page of the eCourts services portal.
const DefaultPortalURL = "https://services.ecourts.gov.in/ecourtindia_v6/?p=cause_list/"

// State is a step of the per-court state machine.
type State string

const (
	StateStart             State = "start"
	StateNavigated         State = "navigated"
	StateCivilSubmitted    State = "civil_submitted"
	StateCivilExtracted    State = "civil_extracted"
	StateCriminalSubmitted State = "criminal_submitted"
	StateCriminalExtracted State = "criminal_extracted"
	StateRendered          State = "rendered"
	StateFailed            State = "failed"
)

var (
	submittedState = map[types.Category]State{
		types.CategoryCivil:    StateCivilSubmitted,
		types.CategoryCriminal: StateCriminalSubmitted,
	}
	extractedState = map[types.Category]State{
		types.CategoryCivil:    StateCivilExtracted,
		types.CategoryCriminal: StateCriminalExtracted,
	}
)

// Error reports the state the workflow was in when it failed.
type Error struct {
	State State
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("workflow failed after %s: %v", e.State, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures a Workflow.
type Options struct {
	PortalURL   string
	OutputDir   string
	SettlePause time.Duration // between the civil and criminal phases
	Navigation  navigation.Options
	Captcha     captcha.Options
	Extraction  extraction.Options
}

// DefaultOptions returns the live-portal settings.
func DefaultOptions() Options {
	return Options{
		PortalURL:   DefaultPortalURL,
		OutputDir:   ".",
		SettlePause: 2 * time.Second,
		Navigation:  navigation.DefaultOptions(),
		Captcha:     captcha.DefaultOptions(),
		Extraction:  extraction.DefaultOptions(),
	}
}

// Report describes one execution.
type Report struct {
	State        State
	Trail        []State
	Result       *types.CaseListingResult
	ArtifactPath string
}

func (r *Report) enter(s State) {
	r.State = s
	r.Trail = append(r.Trail, s)
}

// Workflow is stateless between runs and may be shared by concurrent tasks as long
// as each run gets its own session.
type Workflow struct {
	recognizer ocr.Recognizer
	renderer   rendering.Renderer
	opts       Options
	logger     *zap.Logger
}

// New creates a workflow. A nil logger disables logging.
func New(recognizer ocr.Recognizer, renderer rendering.Renderer, opts Options, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{recognizer: recognizer, renderer: renderer, opts: opts, logger: logger}
}

// ArtifactPath returns where the document for sel is written.
func (w *Workflow) ArtifactPath(sel types.LocationSelector) string {
	return filepath.Join(w.opts.OutputDir, sel.FileStem()+".pdf")
}

// Run executes the workflow and returns the artifact path.
func (w *Workflow) Run(ctx context.Context, session browser.Session, sel types.LocationSelector) (string, error) {
	report, err := w.Execute(ctx, session, sel)
	if err != nil {
		return "", err
	}
	return report.ArtifactPath, nil
}

// Execute drives the state machine. Navigation and rendering failures are fatal; a
// category that cannot be submitted or extracted is recorded as absent. The session
// is left open for the caller to close.
func (w *Workflow) Execute(ctx context.Context, session browser.Session, sel types.LocationSelector) (*Report, error) {
	logger := w.logger.With(zap.String("court", sel.CourtName), zap.String("date", sel.FormDate()))
	report := &Report{Result: &types.CaseListingResult{}}
	report.enter(StateStart)

	fail := func(err error) (*Report, error) {
		failed := report.State
		report.enter(StateFailed)
		logger.Warn("court failed", zap.String("state", string(failed)), zap.Error(err))
		return report, &Error{State: failed, Cause: err}
	}

	if err := session.Navigate(ctx, w.opts.PortalURL); err != nil {
		return fail(fmt.Errorf("load portal: %w", err))
	}
	if err := navigation.New(session, w.opts.Navigation, logger).Apply(ctx, sel); err != nil {
		return fail(err)
	}
	report.enter(StateNavigated)

	solver := captcha.NewSolver(session, w.recognizer, w.opts.Captcha, logger)
	adapter := extraction.NewAdapter(session, w.opts.Extraction, logger)

	for i, cat := range []types.Category{types.CategoryCivil, types.CategoryCriminal} {
		if i > 0 {
			if err := browser.Pause(ctx, w.opts.SettlePause); err != nil {
				return fail(err)
			}
		}
		if err := w.phase(ctx, report, solver, adapter, cat, logger); err != nil {
			return fail(err)
		}
	}

	path := w.ArtifactPath(sel)
	if err := w.renderer.Render(ctx, report.Result, path, sel.CourtName); err != nil {
		return fail(fmt.Errorf("render: %w", err))
	}
	report.ArtifactPath = path
	report.enter(StateRendered)
	logger.Info("court rendered",
		zap.String("file", path),
		zap.Int("civil_rows", report.Result.Civil.DataRows()),
		zap.Int("criminal_rows", report.Result.Criminal.DataRows()))
	return report, nil
}

// phase fills one half of the result. Only context errors escape.
func (w *Workflow) phase(ctx context.Context, report *Report, solver *captcha.Solver, adapter *extraction.Adapter, cat types.Category, logger *zap.Logger) error {
	logger = logger.With(zap.String("category", string(cat)))

	if !solver.SolveAndSubmit(ctx, cat) {
		if err := ctx.Err(); err != nil {
			return err
		}
		logger.Info("category not submitted, recording no cases")
		report.enter(extractedState[cat])
		return nil
	}
	report.enter(submittedState[cat])

	doc, err := adapter.Extract(ctx)
	switch {
	case err != nil:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		logger.Warn("extraction failed, recording no cases", zap.Error(err))
	case doc == nil:
		logger.Info("no cases listed")
	default:
		report.Result.Set(cat, doc)
	}
	report.enter(extractedState[cat])
	return nil
}
