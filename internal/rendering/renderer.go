package rendering

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/types"
)

// Renderer writes one document per court.
type Renderer interface {
	Render(ctx context.Context, result *types.CaseListingResult, outputPath, title string) error
}

// Options configures LaTeXRenderer.
type Options struct {
	TemplatePath string // empty selects the built-in template
	Pdflatex     string
	ScratchDir   string // parent of per-render work dirs; empty means os.TempDir
}

// LaTeXRenderer renders through the cause-list template and pdflatex. Each call uses
// its own work directory, so one renderer may serve concurrent tasks.
type LaTeXRenderer struct {
	opts   Options
	logger *zap.Logger
}

// NewLaTeXRenderer creates a renderer. A nil logger disables logging.
func NewLaTeXRenderer(opts Options, logger *zap.Logger) *LaTeXRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LaTeXRenderer{opts: opts, logger: logger}
}

// Render implements Renderer.
func (r *LaTeXRenderer) Render(ctx context.Context, result *types.CaseListingResult, outputPath, title string) error {
	tex, err := RenderLaTeX(result, title, r.opts.TemplatePath)
	if err != nil {
		return err
	}

	workDir := filepath.Join(r.scratchDir(), "causelist-"+uuid.NewString())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return &RenderError{Message: "failed to create work directory", Cause: err}
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			r.logger.Warn("failed to remove work directory", zap.String("dir", workDir), zap.Error(err))
		}
	}()

	texPath := filepath.Join(workDir, "causelist.tex")
	if err := os.WriteFile(texPath, []byte(tex), 0644); err != nil {
		return &RenderError{Message: "failed to write LaTeX source", Cause: err}
	}

	pdfPath, logOutput, err := CompileLaTeX(ctx, r.opts.Pdflatex, texPath, workDir)
	if err != nil {
		if pdfPath == "" {
			return err
		}
		r.logger.Warn("pdflatex reported errors",
			zap.String("title", title),
			zap.Int("log_bytes", len(logOutput)),
			zap.Error(err))
	}

	if err := copyFile(pdfPath, outputPath); err != nil {
		return &RenderError{Message: fmt.Sprintf("failed to write %s", outputPath), Cause: err}
	}
	r.logger.Debug("document rendered", zap.String("path", outputPath))
	return nil
}

func (r *LaTeXRenderer) scratchDir() string {
	if r.opts.ScratchDir != "" {
		return r.opts.ScratchDir
	}
	return os.TempDir()
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
