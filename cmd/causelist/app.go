package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/browser"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/bundle"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/config"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/navigation"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/ocr"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/orchestrator"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/rendering"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/throttle"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/types"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/workflow"
)

// openSequencer starts a lookup session on the cause-list page. The caller closes
// the returned session.
func openSequencer(ctx context.Context, factory browser.Factory, cfg config.Config) (*navigation.Sequencer, browser.Session, error) {
	session, err := factory.New(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := session.Navigate(ctx, cfg.WorkflowOptions().PortalURL); err != nil {
		_ = session.Close()
		return nil, nil, fmt.Errorf("failed to open portal: %w", err)
	}
	return navigation.New(session, navigation.DefaultOptions(), logger), session, nil
}

// lookup resolves a complex by display names on a short-lived session.
func lookup(ctx context.Context, factory browser.Factory, cfg config.Config, state, district, complexName string) (*types.Location, error) {
	seq, session, err := openSequencer(ctx, factory, cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = session.Close() }()

	return seq.ResolvePath(ctx, state, district, complexName)
}

// buildOrchestrator wires the production collaborators. The returned func releases
// the recognizer.
func buildOrchestrator(ctx context.Context, factory browser.Factory, cfg config.Config) (*orchestrator.Orchestrator, func(), error) {
	recognizer, err := ocr.New(ctx, cfg.OCRConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OCR engine: %w", err)
	}
	release := func() {
		if c, ok := recognizer.(io.Closer); ok {
			if err := c.Close(); err != nil {
				logger.Warn("closing OCR engine", zap.Error(err))
			}
		}
	}

	renderer := rendering.NewLaTeXRenderer(cfg.RenderingOptions(), logger)
	wf := workflow.New(recognizer, renderer, cfg.WorkflowOptions(), logger)

	orch := orchestrator.New(orchestrator.Deps{
		Factory:  factory,
		Runner:   wf,
		Packager: bundle.ZipPackager{},
		Launches: throttle.NewBucket(max(cfg.Concurrency, 1), cfg.LaunchRate),
		Logger:   logger,
	})
	return orch, release, nil
}

func newFactory(cfg config.Config) browser.Factory {
	return browser.NewChromeFactory(cfg.ChromeOptions(), logger)
}
