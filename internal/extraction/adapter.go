package extraction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/browser"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/types"
)

// Options bounds the waits performed before parsing.
type Options struct {
	ReadyWait    time.Duration
	TableWait    time.Duration
	Settle       time.Duration // after the table appears, for late rows
	PollInterval time.Duration
}

// DefaultOptions returns the waits used against the live portal.
func DefaultOptions() Options {
	return Options{
		ReadyWait:    15 * time.Second,
		TableWait:    10 * time.Second,
		Settle:       2 * time.Second,
		PollInterval: browser.DefaultPollInterval,
	}
}

// Adapter reads the listing rendered on a session after a successful submit.
type Adapter struct {
	session browser.Session
	opts    Options
	logger  *zap.Logger
}

// NewAdapter creates an adapter. A nil logger disables logging.
func NewAdapter(session browser.Session, opts Options, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{session: session, opts: opts, logger: logger}
}

// Extract returns the current listing. It returns (nil, nil) when the page has no
// result table, which the portal does for a court with nothing listed, and
// (nil, err) when the page could not be read.
func (a *Adapter) Extract(ctx context.Context) (*types.CaseListingDocument, error) {
	if err := browser.WaitForDocumentReady(ctx, a.session, a.opts.ReadyWait, a.opts.PollInterval); err != nil {
		return nil, fmt.Errorf("page not ready: %w", err)
	}

	err := browser.WaitForElement(ctx, a.session, TableSelector, a.opts.TableWait, a.opts.PollInterval)
	if err != nil {
		var waitErr *browser.WaitError
		if errors.As(err, &waitErr) {
			a.logger.Debug("no result table")
			return nil, nil
		}
		return nil, err
	}

	if err := browser.Pause(ctx, a.opts.Settle); err != nil {
		return nil, err
	}

	html, err := a.session.PageSource(ctx)
	if err != nil {
		return nil, fmt.Errorf("read page source: %w", err)
	}
	doc, err := ParseDocument(html)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("listing extracted",
		zap.String("period", doc.Heading.PeriodLabel),
		zap.Int("rows", len(doc.Rows)))
	return doc, nil
}
