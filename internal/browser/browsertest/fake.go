// Package browsertest provides an in-memory browser.Session for tests.
package browsertest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/browser"
)

// Selection records one SelectOption call.
type Selection struct {
	Selector string
	Value    string
}

// Session is a scriptable fake. Populate its maps before use; hooks run without the
// session lock held so they may call back into the session.
type Session struct {
	mu        sync.Mutex
	elements  map[string]bool
	selects   map[string][]browser.Option
	values    map[string]string
	shots     map[string][]byte
	source    string
	navigated []string
	selected  []Selection
	evaluated []string
	closed    atomic.Int32

	// OnSelect runs after a successful SelectOption, e.g. to populate a dependent list.
	OnSelect func(s *Session, sel, value string)
	// OnEval answers Evaluate calls. A nil hook answers document.readyState with
	// "complete" and everything else with null.
	OnEval func(script string) (any, error)
	// InputFilter rewrites text written by SetValue or SendKeys before it lands in
	// the field, e.g. to simulate a form that reformats dates.
	InputFilter func(sel, text string) string
}

// NewSession returns an empty fake session.
func NewSession() *Session {
	return &Session{
		elements: make(map[string]bool),
		selects:  make(map[string][]browser.Option),
		values:   make(map[string]string),
		shots:    make(map[string][]byte),
	}
}

// AddElement makes sel exist.
func (s *Session) AddElement(sel string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements[sel] = true
	return s
}

// RemoveElement makes sel disappear.
func (s *Session) RemoveElement(sel string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.elements, sel)
	delete(s.values, sel)
}

// SetOptions replaces the options of a select.
func (s *Session) SetOptions(sel string, opts ...browser.Option) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements[sel] = true
	s.selects[sel] = opts
	return s
}

// SetScreenshot sets the PNG returned for sel.
func (s *Session) SetScreenshot(sel string, png []byte) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements[sel] = true
	s.shots[sel] = png
	return s
}

// SetSource sets the markup returned by PageSource.
func (s *Session) SetSource(html string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = html
	return s
}

// Navigated returns the URLs passed to Navigate.
func (s *Session) Navigated() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.navigated...)
}

// Selected returns every SelectOption call in order.
func (s *Session) Selected() []Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Selection(nil), s.selected...)
}

// Evaluated returns every script passed to Evaluate in order.
func (s *Session) Evaluated() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.evaluated...)
}

// CloseCount returns how many times Close was called.
func (s *Session) CloseCount() int {
	return int(s.closed.Load())
}

func (s *Session) knownLocked(sel string) bool {
	if s.elements[sel] {
		return true
	}
	_, ok := s.values[sel]
	return ok
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navigated = append(s.navigated, url)
	return nil
}

func (s *Session) Exists(ctx context.Context, sel string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.knownLocked(sel), nil
}

func (s *Session) Options(ctx context.Context, sel string) ([]browser.Option, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	opts, ok := s.selects[sel]
	if !ok {
		return nil, fmt.Errorf("select not found: %s", sel)
	}
	return append([]browser.Option(nil), opts...), nil
}

func (s *Session) SelectOption(ctx context.Context, sel, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	opts, ok := s.selects[sel]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("select not found: %s", sel)
	}
	found := false
	for _, o := range opts {
		if o.Value == value {
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return fmt.Errorf("select %s: option %q not available", sel, value)
	}
	s.values[sel] = value
	s.selected = append(s.selected, Selection{Selector: sel, Value: value})
	hook := s.OnSelect
	s.mu.Unlock()

	if hook != nil {
		hook(s, sel, value)
	}
	return nil
}

func (s *Session) SetValue(ctx context.Context, sel, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.knownLocked(sel) {
		return fmt.Errorf("element not found: %s", sel)
	}
	if s.InputFilter != nil {
		value = s.InputFilter(sel, value)
	}
	s.values[sel] = value
	return nil
}

func (s *Session) SendKeys(ctx context.Context, sel, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.knownLocked(sel) {
		return fmt.Errorf("element not found: %s", sel)
	}
	if s.InputFilter != nil {
		text = s.InputFilter(sel, text)
	}
	s.values[sel] += text
	return nil
}

func (s *Session) Value(ctx context.Context, sel string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.knownLocked(sel) {
		return "", fmt.Errorf("element not found: %s", sel)
	}
	return s.values[sel], nil
}

func (s *Session) Click(ctx context.Context, sel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.knownLocked(sel) {
		return fmt.Errorf("element not found: %s", sel)
	}
	return nil
}

func (s *Session) Evaluate(ctx context.Context, script string, res any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.evaluated = append(s.evaluated, script)
	hook := s.OnEval
	s.mu.Unlock()

	var val any
	switch {
	case hook != nil:
		v, err := hook(script)
		if err != nil {
			return err
		}
		val = v
	case script == "document.readyState":
		val = "complete"
	}

	if res == nil {
		return nil
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, res)
}

func (s *Session) Screenshot(ctx context.Context, sel string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	png, ok := s.shots[sel]
	if !ok {
		return nil, fmt.Errorf("element not found: %s", sel)
	}
	return png, nil
}

func (s *Session) PageSource(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source, nil
}

func (s *Session) Close() error {
	s.closed.Add(1)
	return nil
}

var _ browser.Session = (*Session)(nil)
