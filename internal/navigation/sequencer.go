package navigation

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/browser"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/types"
)

// Form element selectors on the cause-list page.
const (
	StateSelect    = "#sess_state_code"
	DistrictSelect = "#sess_dist_code"
	ComplexSelect  = "#court_complex_code"
	CourtSelect    = "#CL_court_no"
	DateInput      = "#causelist_date"
)

// placeholderValue is the value of the "Select ..." option heading every list.
const placeholderValue = "0"

var levelSelect = map[types.Level]string{
	types.LevelState:    StateSelect,
	types.LevelDistrict: DistrictSelect,
	types.LevelComplex:  ComplexSelect,
	types.LevelCourt:    CourtSelect,
}

// Options holds the bounded waits used by the sequencer.
type Options struct {
	ShortWait    time.Duration // dependent list population
	LongWait     time.Duration // first element on a fresh page
	PollInterval time.Duration
	StepPause    time.Duration // fixed pause after each selection
}

// DefaultOptions mirrors the timings the portal needs in practice.
func DefaultOptions() Options {
	return Options{
		ShortWait:    10 * time.Second,
		LongWait:     15 * time.Second,
		PollInterval: browser.DefaultPollInterval,
		StepPause:    time.Second,
	}
}

// StepError reports which cascade step failed.
type StepError struct {
	Step  string
	Cause error
}

func (e *StepError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("navigation failed at %s: %v", e.Step, e.Cause)
	}
	return fmt.Sprintf("navigation failed at %s", e.Step)
}

func (e *StepError) Unwrap() error {
	return e.Cause
}

// NotFoundError is returned by ResolvePath when a display name is not listed.
type NotFoundError struct {
	Level types.Level
	Name  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Level, e.Name)
}

// Sequencer drives the cascade on one session. It is not safe for concurrent use;
// the session it wraps has a single owner.
type Sequencer struct {
	session browser.Session
	cache   *DropdownCache
	opts    Options
	logger  *zap.Logger
}

// New creates a sequencer with its own cache. A nil logger disables logging.
func New(session browser.Session, opts Options, logger *zap.Logger) *Sequencer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sequencer{
		session: session,
		cache:   NewDropdownCache(),
		opts:    opts,
		logger:  logger,
	}
}

// Cache exposes the sequencer's memo table.
func (s *Sequencer) Cache() *DropdownCache {
	return s.cache
}

// Resolve returns the {name -> id} options of level under parentID. The underlying
// fetch runs once per (level, parentID); later calls are served from the cache.
func (s *Sequencer) Resolve(ctx context.Context, level types.Level, parentID string) (map[string]string, error) {
	if cached, ok := s.cache.Get(level, parentID); ok {
		return cached, nil
	}

	options, err := s.fetch(ctx, level, parentID)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("dropdown resolved",
		zap.String("level", string(level)),
		zap.String("parent", parentID),
		zap.Int("options", len(options)))
	return s.cache.Put(level, parentID, options), nil
}

func (s *Sequencer) fetch(ctx context.Context, level types.Level, parentID string) (map[string]string, error) {
	sel, ok := levelSelect[level]
	if !ok {
		return nil, fmt.Errorf("unknown level %q", level)
	}

	if parent := level.Parent(); parent != "" {
		if err := s.session.SelectOption(ctx, levelSelect[parent], parentID); err != nil {
			return nil, &StepError{Step: "select " + string(parent), Cause: err}
		}
		if err := browser.Pause(ctx, s.opts.StepPause); err != nil {
			return nil, err
		}
		if err := browser.WaitForOptions(ctx, s.session, sel, 1, s.opts.ShortWait, s.opts.PollInterval); err != nil {
			return nil, &StepError{Step: "await " + string(level) + " list", Cause: err}
		}
	} else if err := browser.WaitForElement(ctx, s.session, sel, s.opts.LongWait, s.opts.PollInterval); err != nil {
		return nil, &StepError{Step: "await " + string(level) + " list", Cause: err}
	}

	opts, err := s.session.Options(ctx, sel)
	if err != nil {
		return nil, &StepError{Step: "read " + string(level) + " list", Cause: err}
	}
	return optionMap(level, opts), nil
}

func optionMap(level types.Level, opts []browser.Option) map[string]string {
	out := make(map[string]string, len(opts))
	for _, o := range opts {
		if o.Value == "" || o.Value == placeholderValue {
			continue
		}
		if level == types.LevelCourt && o.Disabled {
			continue
		}
		out[o.Text] = o.Value
	}
	return out
}

// Apply drives the full cascade for sel and sets the cause-list date. Any failed or
// timed-out step fails the whole call; retrying is the caller's job.
func (s *Sequencer) Apply(ctx context.Context, sel types.LocationSelector) error {
	steps := []struct {
		level types.Level
		value string
	}{
		{types.LevelState, sel.StateCode},
		{types.LevelDistrict, sel.DistrictCode},
		{types.LevelComplex, sel.ComplexCode},
		{types.LevelCourt, sel.CourtCode},
	}

	if err := sel.Validate(); err != nil {
		return &StepError{Step: "check selector", Cause: err}
	}
	if err := browser.WaitForElement(ctx, s.session, StateSelect, s.opts.LongWait, s.opts.PollInterval); err != nil {
		return &StepError{Step: "await state list", Cause: err}
	}

	for i, step := range steps {
		if i > 0 {
			if err := browser.WaitForOptions(ctx, s.session, levelSelect[step.level], 1, s.opts.ShortWait, s.opts.PollInterval); err != nil {
				return &StepError{Step: "await " + string(step.level) + " list", Cause: err}
			}
		}
		if err := s.session.SelectOption(ctx, levelSelect[step.level], step.value); err != nil {
			return &StepError{Step: "select " + string(step.level), Cause: err}
		}
		if err := browser.Pause(ctx, s.opts.StepPause); err != nil {
			return err
		}
	}

	if err := s.setDate(ctx, sel.FormDate()); err != nil {
		return err
	}
	s.logger.Debug("navigation applied", zap.String("court", sel.CourtName), zap.String("date", sel.FormDate()))
	return nil
}

// setDate writes the date and reads it back; a mismatch means the form reformatted
// or rejected the value.
func (s *Sequencer) setDate(ctx context.Context, date string) error {
	if err := browser.WaitForElement(ctx, s.session, DateInput, s.opts.LongWait, s.opts.PollInterval); err != nil {
		return &StepError{Step: "await date field", Cause: err}
	}
	if err := s.session.SetValue(ctx, DateInput, ""); err != nil {
		return &StepError{Step: "clear date", Cause: err}
	}
	if err := s.session.SetValue(ctx, DateInput, date); err != nil {
		return &StepError{Step: "set date", Cause: err}
	}
	if err := browser.Pause(ctx, s.opts.StepPause/2); err != nil {
		return err
	}

	got, err := s.session.Value(ctx, DateInput)
	if err != nil {
		return &StepError{Step: "verify date", Cause: err}
	}
	if got != date {
		s.logger.Warn("date mismatch", zap.String("expected", date), zap.String("actual", got))
		return &StepError{Step: "verify date", Cause: fmt.Errorf("expected %q, form holds %q", date, got)}
	}
	return nil
}

// ResolvePath looks up a complex by display names and returns its codes and courts.
func (s *Sequencer) ResolvePath(ctx context.Context, stateName, districtName, complexName string) (*types.Location, error) {
	loc := &types.Location{StateName: stateName, DistrictName: districtName, ComplexName: complexName}

	path := []struct {
		level  types.Level
		name   string
		parent *string
		code   *string
	}{
		{types.LevelState, stateName, nil, &loc.StateCode},
		{types.LevelDistrict, districtName, &loc.StateCode, &loc.DistrictCode},
		{types.LevelComplex, complexName, &loc.DistrictCode, &loc.ComplexCode},
	}

	for _, p := range path {
		parent := ""
		if p.parent != nil {
			parent = *p.parent
		}
		options, err := s.Resolve(ctx, p.level, parent)
		if err != nil {
			return nil, err
		}
		code, ok := options[p.name]
		if !ok {
			return nil, &NotFoundError{Level: p.level, Name: p.name}
		}
		*p.code = code
	}

	courts, err := s.Resolve(ctx, types.LevelCourt, loc.ComplexCode)
	if err != nil {
		return nil, err
	}
	loc.Courts = courts
	return loc, nil
}

// SortedNames returns the keys of an option map in display order.
func SortedNames(options map[string]string) []string {
	names := make([]string, 0, len(options))
	for name := range options {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
