// Package orchestrator fans a set of court tasks out over a bounded pool of browser
// sessions and collects exactly one outcome per task.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/browser"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/bundle"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/retry"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/throttle"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/types"
)

// Runner processes one court on a session it does not own and returns the artifact
// path.
type Runner interface {
	Run(ctx context.Context, session browser.Session, sel types.LocationSelector) (string, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, session browser.Session, sel types.LocationSelector) (string, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, session browser.Session, sel types.LocationSelector) (string, error) {
	return f(ctx, session, sel)
}

// ProgressFunc is called once per finished task. Calls are serialized.
type ProgressFunc func(done, total int, outcome types.TaskOutcome)

// RunOptions bounds a bulk run.
type RunOptions struct {
	Concurrency int
	Retries     int           // attempts per task, each on a fresh session
	RetryPause  time.Duration // between attempts
	TaskTimeout time.Duration // whole task, all attempts; zero means none
	OutputDir   string
	BundleName  string // empty skips bundling
	Progress    ProgressFunc
}

// DefaultRunOptions matches the portal's tolerance for parallel sessions.
func DefaultRunOptions() RunOptions {
	return RunOptions{
		Concurrency: 3,
		Retries:     3,
		RetryPause:  time.Second,
		TaskTimeout: 180 * time.Second,
		OutputDir:   ".",
	}
}

// Deps are the collaborators of an Orchestrator. Packager and Launches are optional.
type Deps struct {
	Factory  browser.Factory
	Runner   Runner
	Packager bundle.Packager
	Launches *throttle.Bucket
	Logger   *zap.Logger
}

// Orchestrator runs tasks. It holds no per-run state and may be reused.
type Orchestrator struct {
	factory  browser.Factory
	runner   Runner
	packager bundle.Packager
	launches *throttle.Bucket
	logger   *zap.Logger
}

// New creates an orchestrator.
func New(deps Deps) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		factory:  deps.Factory,
		runner:   deps.Runner,
		packager: deps.Packager,
		launches: deps.Launches,
		logger:   logger,
	}
}

// Run processes every selector and returns the summary. Outcomes are reported in
// selector order whatever order tasks finish in.
func (o *Orchestrator) Run(ctx context.Context, selectors []types.LocationSelector, opts RunOptions) *types.RunSummary {
	summary := &types.RunSummary{RunID: uuid.New(), Total: len(selectors)}
	logger := o.logger.With(zap.String("run_id", summary.RunID.String()))
	logger.Info("run started",
		zap.Int("courts", len(selectors)),
		zap.Int("concurrency", opts.Concurrency),
		zap.Int("retries", opts.Retries))

	var (
		mu       sync.Mutex
		finished []types.TaskOutcome
	)

	var g errgroup.Group
	g.SetLimit(max(opts.Concurrency, 1))
	for _, sel := range selectors {
		g.Go(func() error {
			outcome := o.runTask(ctx, sel, opts, logger)

			mu.Lock()
			defer mu.Unlock()
			finished = append(finished, outcome)
			if opts.Progress != nil {
				opts.Progress(len(finished), len(selectors), outcome)
			}
			return nil
		})
	}
	_ = g.Wait()

	summary.Outcomes = reassemble(selectors, finished)
	for _, oc := range summary.Outcomes {
		if oc.Succeeded() {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	if summary.Succeeded > 0 && opts.BundleName != "" && o.packager != nil {
		path := filepath.Join(opts.OutputDir, opts.BundleName)
		if err := o.packager.Pack(ctx, summary.Artifacts(), path); err != nil {
			logger.Error("bundle failed", zap.String("path", path), zap.Error(err))
			summary.BundleError = err.Error()
		} else {
			summary.BundlePath = path
		}
	}

	logger.Info("run finished",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.String("bundle", summary.BundlePath))
	return summary
}

type taskResult struct {
	path     string
	attempts int
	err      error
}

// runTask always returns an outcome. When the task budget runs out it returns at
// once; the abandoned attempt sees its context cancelled and closes its own session.
func (o *Orchestrator) runTask(ctx context.Context, sel types.LocationSelector, opts RunOptions, logger *zap.Logger) types.TaskOutcome {
	logger = logger.With(zap.String("court", sel.CourtName))
	outcome := types.TaskOutcome{CourtName: sel.CourtName, Selector: sel, Status: types.StatusFailure}

	var (
		taskCtx context.Context
		cancel  context.CancelFunc
	)
	if opts.TaskTimeout > 0 {
		taskCtx, cancel = context.WithTimeout(ctx, opts.TaskTimeout)
	} else {
		taskCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	done := make(chan taskResult, 1)
	go func() {
		done <- o.attempts(taskCtx, sel, opts, logger)
	}()

	select {
	case res := <-done:
		outcome.Attempts = res.attempts
		if res.err != nil {
			logger.Warn("court failed", zap.Int("attempts", res.attempts), zap.Error(res.err))
			outcome.Message = types.FailureMessage
			return outcome
		}
		outcome.Status = types.StatusSuccess
		outcome.ArtifactPath = res.path
		logger.Info("court done", zap.Int("attempts", res.attempts), zap.String("file", res.path))
		return outcome
	case <-taskCtx.Done():
		if errors.Is(taskCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			logger.Warn("court timed out", zap.Duration("timeout", opts.TaskTimeout))
			outcome.Message = types.TimeoutMessage
			return outcome
		}
		logger.Warn("court cancelled", zap.Error(ctx.Err()))
		outcome.Message = types.FailureMessage
		return outcome
	}
}

func (o *Orchestrator) attempts(ctx context.Context, sel types.LocationSelector, opts RunOptions, logger *zap.Logger) taskResult {
	policy := retry.Policy{MaxAttempts: opts.Retries, Backoff: opts.RetryPause}

	var path string
	n, err := policy.Run(ctx, func(ctx context.Context, attempt int) error {
		p, err := o.attempt(ctx, sel, logger.With(zap.Int("attempt", attempt)))
		if err != nil {
			return err
		}
		path = p
		return nil
	}, func(attempt int, err error, wait time.Duration) {
		logger.Info("attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	})
	return taskResult{path: path, attempts: n, err: err}
}

// attempt owns one session from creation to close.
func (o *Orchestrator) attempt(ctx context.Context, sel types.LocationSelector, logger *zap.Logger) (string, error) {
	if err := o.launches.Wait(ctx); err != nil {
		return "", err
	}
	session, err := o.factory.New(ctx)
	if err != nil {
		return "", fmt.Errorf("start session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Debug("session close failed", zap.Error(err))
		}
	}()
	return o.runner.Run(ctx, session, sel)
}

// reassemble orders outcomes to match selectors, pairing duplicates first come first
// served.
func reassemble(selectors []types.LocationSelector, finished []types.TaskOutcome) []types.TaskOutcome {
	byKey := make(map[string][]types.TaskOutcome, len(finished))
	for _, oc := range finished {
		k := oc.Selector.Key()
		byKey[k] = append(byKey[k], oc)
	}
	out := make([]types.TaskOutcome, 0, len(selectors))
	for _, sel := range selectors {
		k := sel.Key()
		queue := byKey[k]
		if len(queue) == 0 {
			continue
		}
		out = append(out, queue[0])
		byKey[k] = queue[1:]
	}
	return out
}
