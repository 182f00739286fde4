package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/browser"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/browser/browsertest"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/bundle"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func courts(n int) []types.LocationSelector {
	date := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)
	out := make([]types.LocationSelector, n)
	for i := range out {
		out[i] = types.LocationSelector{
			StateCode:    "1",
			DistrictCode: "25",
			ComplexCode:  "1250001",
			CourtCode:    fmt.Sprintf("%d^1", i+1),
			CourtName:    fmt.Sprintf("Court %d", i+1),
			Date:         date,
		}
	}
	return out
}

// sessionPool hands out fresh fake sessions and remembers them. It tracks how many
// are open at once.
type sessionPool struct {
	mu       sync.Mutex
	sessions []*browsertest.Session
	fail     error
	open     int
	peak     int
}

func (p *sessionPool) New(context.Context) (browser.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return nil, p.fail
	}
	s := browsertest.NewSession()
	p.sessions = append(p.sessions, s)
	p.open++
	p.peak = max(p.peak, p.open)
	return &trackedSession{Session: s, pool: p}, nil
}

func (p *sessionPool) openSessions() (open, peak int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open, p.peak
}

// trackedSession reports its first Close back to the pool.
type trackedSession struct {
	*browsertest.Session
	pool   *sessionPool
	closed atomic.Bool
}

func (s *trackedSession) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.pool.mu.Lock()
		s.pool.open--
		s.pool.mu.Unlock()
	}
	return s.Session.Close()
}

func (p *sessionPool) all() []*browsertest.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*browsertest.Session(nil), p.sessions...)
}

func testOptions() RunOptions {
	return RunOptions{Concurrency: 3, Retries: 3, OutputDir: "."}
}

func TestRun_OneOutcomePerSelectorInInputOrder(t *testing.T) {
	pool := &sessionPool{}
	sels := courts(7)
	runner := RunnerFunc(func(_ context.Context, _ browser.Session, sel types.LocationSelector) (string, error) {
		if sel.CourtName == "Court 3" || sel.CourtName == "Court 6" {
			return "", errors.New("navigation failed")
		}
		// Later courts finish first.
		n := int(sel.CourtName[len(sel.CourtName)-1] - '0')
		time.Sleep(time.Duration(10-n) * 2 * time.Millisecond)
		return sel.CourtName + ".pdf", nil
	})

	summary := New(Deps{Factory: pool, Runner: runner}).Run(context.Background(), sels, testOptions())

	require.Len(t, summary.Outcomes, len(sels))
	for i, oc := range summary.Outcomes {
		assert.Equal(t, sels[i].CourtName, oc.CourtName)
		assert.Equal(t, sels[i], oc.Selector)
	}
	assert.Equal(t, 7, summary.Total)
	assert.Equal(t, 5, summary.Succeeded)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, summary.Total, summary.Succeeded+summary.Failed)
	assert.NotEmpty(t, summary.RunID.String())
}

func TestRun_FreshSessionPerAttempt(t *testing.T) {
	pool := &sessionPool{}
	var attempts atomic.Int32
	seen := make(map[browser.Session]bool)
	var mu sync.Mutex
	runner := RunnerFunc(func(_ context.Context, s browser.Session, sel types.LocationSelector) (string, error) {
		mu.Lock()
		assert.False(t, seen[s], "session reused across attempts")
		seen[s] = true
		mu.Unlock()
		if attempts.Add(1) < 3 {
			return "", errors.New("captcha page never loaded")
		}
		return "out.pdf", nil
	})

	summary := New(Deps{Factory: pool, Runner: runner}).Run(context.Background(), courts(1), testOptions())

	require.Len(t, summary.Outcomes, 1)
	oc := summary.Outcomes[0]
	assert.True(t, oc.Succeeded())
	assert.Equal(t, 3, oc.Attempts)
	assert.Equal(t, "out.pdf", oc.ArtifactPath)

	sessions := pool.all()
	require.Len(t, sessions, 3)
	for _, s := range sessions {
		assert.Equal(t, 1, s.CloseCount(), "every session is closed exactly once")
	}
}

func TestRun_ExhaustedRetriesUseFixedMessage(t *testing.T) {
	pool := &sessionPool{}
	runner := RunnerFunc(func(context.Context, browser.Session, types.LocationSelector) (string, error) {
		return "", errors.New("render failed")
	})

	summary := New(Deps{Factory: pool, Runner: runner}).Run(context.Background(), courts(1), testOptions())

	oc := summary.Outcomes[0]
	assert.False(t, oc.Succeeded())
	assert.Equal(t, types.FailureMessage, oc.Message)
	assert.Equal(t, 3, oc.Attempts)
	assert.Len(t, pool.all(), 3)
	assert.Empty(t, summary.BundlePath)
}

func TestRun_SessionStartFailure(t *testing.T) {
	pool := &sessionPool{fail: errors.New("chrome not found")}
	var runs atomic.Int32
	runner := RunnerFunc(func(context.Context, browser.Session, types.LocationSelector) (string, error) {
		runs.Add(1)
		return "x", nil
	})

	summary := New(Deps{Factory: pool, Runner: runner}).Run(context.Background(), courts(2), testOptions())

	assert.Equal(t, 2, summary.Failed)
	assert.Zero(t, runs.Load())
	for _, oc := range summary.Outcomes {
		assert.Equal(t, types.FailureMessage, oc.Message)
	}
}

func TestRun_OpenSessionsAreBounded(t *testing.T) {
	pool := &sessionPool{}
	runner := RunnerFunc(func(_ context.Context, _ browser.Session, sel types.LocationSelector) (string, error) {
		time.Sleep(15 * time.Millisecond)
		return sel.CourtName + ".pdf", nil
	})

	opts := testOptions()
	summary := New(Deps{Factory: pool, Runner: runner}).Run(context.Background(), courts(10), opts)

	assert.Equal(t, 10, summary.Succeeded)
	open, peak := pool.openSessions()
	assert.LessOrEqual(t, peak, 3)
	assert.Equal(t, 3, peak, "the pool is used")
	assert.Zero(t, open, "every session is closed")
	assert.Len(t, pool.all(), 10)
}

func TestRun_EndToEndSummaryAndBundle(t *testing.T) {
	dir := t.TempDir()
	pool := &sessionPool{}
	runner := RunnerFunc(func(_ context.Context, _ browser.Session, sel types.LocationSelector) (string, error) {
		if sel.CourtName == "Court 2" {
			return "", errors.New("invalid captcha")
		}
		path := filepath.Join(dir, sel.CourtName+"_20250307.pdf")
		return path, os.WriteFile(path, []byte("%PDF"), 0644)
	})
	opts := testOptions()
	opts.OutputDir = dir
	opts.BundleName = "ecourts_Pune_20250307.zip"

	summary := New(Deps{Factory: pool, Runner: runner, Packager: bundle.ZipPackager{}}).Run(context.Background(), courts(2), opts)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)

	failures := summary.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "Court 2", failures[0].CourtName)
	assert.Equal(t, types.FailureMessage, failures[0].Message)

	require.Equal(t, filepath.Join(dir, "ecourts_Pune_20250307.zip"), summary.BundlePath)
	zr, err := zip.OpenReader(summary.BundlePath)
	require.NoError(t, err)
	defer zr.Close()
	require.Len(t, zr.File, 1)
	assert.Equal(t, "Court 1_20250307.pdf", zr.File[0].Name)
}

func TestRun_CollidingCourtNamesKeepSeparateArtifacts(t *testing.T) {
	dir := t.TempDir()
	sels := courts(2)
	sels[0].CourtName, sels[0].CourtCode = "Court 1/A", "1^2"
	sels[1].CourtName, sels[1].CourtCode = "Court 1:A", "1^3"
	require.Equal(t, types.SanitizeFileName(sels[0].CourtName), types.SanitizeFileName(sels[1].CourtName))

	runner := RunnerFunc(func(_ context.Context, _ browser.Session, sel types.LocationSelector) (string, error) {
		path := filepath.Join(dir, sel.FileStem()+".pdf")
		return path, os.WriteFile(path, []byte(sel.CourtCode), 0644)
	})
	opts := testOptions()
	opts.OutputDir = dir
	opts.BundleName = "ecourts_Pune_20250307.zip"

	summary := New(Deps{Factory: &sessionPool{}, Runner: runner, Packager: bundle.ZipPackager{}}).Run(context.Background(), sels, opts)

	assert.Equal(t, 2, summary.Succeeded)
	assert.NotEqual(t, summary.Outcomes[0].ArtifactPath, summary.Outcomes[1].ArtifactPath)
	assert.Empty(t, summary.BundleError)

	zr, err := zip.OpenReader(summary.BundlePath)
	require.NoError(t, err)
	defer zr.Close()
	assert.Len(t, zr.File, 2)
}

type failingPackager struct{}

func (failingPackager) Pack(context.Context, []string, string) error {
	return errors.New("disk full")
}

func TestRun_BundleErrorIsReported(t *testing.T) {
	runner := RunnerFunc(func(context.Context, browser.Session, types.LocationSelector) (string, error) {
		return "a.pdf", nil
	})
	opts := testOptions()
	opts.BundleName = "b.zip"

	summary := New(Deps{Factory: &sessionPool{}, Runner: runner, Packager: failingPackager{}}).Run(context.Background(), courts(1), opts)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Empty(t, summary.BundlePath)
	assert.Equal(t, "disk full", summary.BundleError)
}

func TestRun_TimeoutFreesSlot(t *testing.T) {
	pool := &sessionPool{}
	release := make(chan struct{})
	var hung sync.WaitGroup
	hung.Add(1)
	runner := RunnerFunc(func(_ context.Context, _ browser.Session, sel types.LocationSelector) (string, error) {
		if sel.CourtName == "Court 1" {
			// A wedged driver that ignores cancellation.
			defer hung.Done()
			<-release
			return "", errors.New("driver gone")
		}
		return sel.CourtName + ".pdf", nil
	})
	opts := testOptions()
	opts.Concurrency = 1
	opts.TaskTimeout = 30 * time.Millisecond

	start := time.Now()
	summary := New(Deps{Factory: pool, Runner: runner}).Run(context.Background(), courts(2), opts)
	elapsed := time.Since(start)

	close(release)
	hung.Wait()

	require.Len(t, summary.Outcomes, 2)
	assert.False(t, summary.Outcomes[0].Succeeded())
	assert.Equal(t, types.TimeoutMessage, summary.Outcomes[0].Message)
	assert.True(t, summary.Outcomes[1].Succeeded(), "the slot was released for the next court")
	assert.Less(t, elapsed, 2*time.Second)

	require.Eventually(t, func() bool {
		for _, s := range pool.all() {
			if s.CloseCount() != 1 {
				return false
			}
		}
		return true
	}, time.Second, time.Millisecond, "the abandoned attempt still closes its session")
}

func TestRun_ProgressIsReportedPerTask(t *testing.T) {
	runner := RunnerFunc(func(_ context.Context, _ browser.Session, sel types.LocationSelector) (string, error) {
		return sel.CourtName + ".pdf", nil
	})
	var dones []int
	opts := testOptions()
	opts.Progress = func(done, total int, _ types.TaskOutcome) {
		assert.Equal(t, 4, total)
		dones = append(dones, done)
	}

	New(Deps{Factory: &sessionPool{}, Runner: runner}).Run(context.Background(), courts(4), opts)

	assert.Equal(t, []int{1, 2, 3, 4}, dones)
}

func TestRun_CancelledRunStillAccountsForEveryTask(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := RunnerFunc(func(ctx context.Context, _ browser.Session, _ types.LocationSelector) (string, error) {
		return "", ctx.Err()
	})

	summary := New(Deps{Factory: &sessionPool{}, Runner: runner}).Run(ctx, courts(3), testOptions())

	assert.Len(t, summary.Outcomes, 3)
	assert.Equal(t, 3, summary.Failed)
}

func TestReassemble_Duplicates(t *testing.T) {
	sels := courts(2)
	sels = append(sels, sels[0])
	finished := []types.TaskOutcome{
		{CourtName: "Court 1", Selector: sels[0], Status: types.StatusFailure},
		{CourtName: "Court 2", Selector: sels[1], Status: types.StatusSuccess},
		{CourtName: "Court 1", Selector: sels[0], Status: types.StatusSuccess},
	}

	out := reassemble(sels, finished)

	require.Len(t, out, 3)
	assert.Equal(t, types.StatusFailure, out[0].Status)
	assert.Equal(t, "Court 2", out[1].CourtName)
	assert.Equal(t, types.StatusSuccess, out[2].Status)
}
