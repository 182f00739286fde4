// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/browser"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/captcha"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/ocr"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/orchestrator"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/rendering"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/workflow"
)

// DefaultOutputDir is where documents and bundles land when nothing else is set.
const DefaultOutputDir = "ecourts_pdfs"

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or CLI flags.
type Config struct {
	// Paths
	OutputDir  string `json:"output_dir,omitempty"` // Directory for PDFs and bundles
	Template   string `json:"template,omitempty"`   // Path to a LaTeX template overriding the built-in one
	Pdflatex   string `json:"pdflatex,omitempty"`   // pdflatex binary
	ChromePath string `json:"chrome_path,omitempty"`
	PortalURL  string `json:"portal_url,omitempty" validate:"omitempty,url"`

	// Pool
	Concurrency        int     `json:"concurrency,omitempty" validate:"gte=0,lte=16"`
	Retries            int     `json:"retries,omitempty" validate:"gte=0,lte=10"`
	TaskTimeoutSeconds int     `json:"task_timeout_seconds,omitempty" validate:"gte=0"`
	CaptchaAttempts    int     `json:"captcha_attempts,omitempty" validate:"gte=0,lte=10"`
	LaunchRate         float64 `json:"launch_rate,omitempty" validate:"gte=0"` // Session launches per second, 0 disables pacing

	// OCR
	OCREngine     string `json:"ocr_engine,omitempty" validate:"omitempty,oneof=tesseract gemini"`
	TesseractPath string `json:"tesseract_path,omitempty"`
	GeminiModel   string `json:"gemini_model,omitempty"`
	APIKey        string `json:"api_key,omitempty"` // Gemini API key

	// Behavior
	ShowBrowser bool `json:"show_browser,omitempty"` // Run Chrome with a window
	Verbose     bool `json:"verbose,omitempty"`      // Print detailed debug information
	Clean       bool `json:"clean,omitempty"`        // Delete old PDFs and bundles before a bulk run
}

// Defaults returns the settings the portal is known to tolerate.
func Defaults() Config {
	run := orchestrator.DefaultRunOptions()
	ocrCfg := ocr.DefaultConfig()
	return Config{
		OutputDir:          DefaultOutputDir,
		Pdflatex:           "pdflatex",
		PortalURL:          workflow.DefaultPortalURL,
		Concurrency:        run.Concurrency,
		Retries:            run.Retries,
		TaskTimeoutSeconds: int(run.TaskTimeout / time.Second),
		CaptchaAttempts:    captcha.DefaultOptions().Attempts,
		LaunchRate:         1,
		OCREngine:          string(ocrCfg.Engine),
		TesseractPath:      ocrCfg.TesseractPath,
		GeminiModel:        ocrCfg.GeminiModel,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.Template != "" {
		if _, err := os.Stat(c.Template); os.IsNotExist(err) {
			return fmt.Errorf("config error: template file not found: %s", c.Template)
		}
	}
	if c.OutputDir != "" {
		if info, err := os.Stat(c.OutputDir); err == nil && !info.IsDir() {
			return fmt.Errorf("config error: output_dir is a file: %s", c.OutputDir)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&result.OutputDir, defaults.OutputDir},
		{&result.Template, defaults.Template},
		{&result.Pdflatex, defaults.Pdflatex},
		{&result.ChromePath, defaults.ChromePath},
		{&result.PortalURL, defaults.PortalURL},
		{&result.OCREngine, defaults.OCREngine},
		{&result.TesseractPath, defaults.TesseractPath},
		{&result.GeminiModel, defaults.GeminiModel},
		{&result.APIKey, defaults.APIKey},
	} {
		if *f.dst == "" {
			*f.dst = f.src
		}
	}

	// Int fields: use default if zero
	for _, f := range []struct {
		dst *int
		src int
	}{
		{&result.Concurrency, defaults.Concurrency},
		{&result.Retries, defaults.Retries},
		{&result.TaskTimeoutSeconds, defaults.TaskTimeoutSeconds},
		{&result.CaptchaAttempts, defaults.CaptchaAttempts},
	} {
		if *f.dst == 0 {
			*f.dst = f.src
		}
	}

	if result.LaunchRate == 0 {
		result.LaunchRate = defaults.LaunchRate
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// RunOptions derives the orchestrator settings.
func (c *Config) RunOptions() orchestrator.RunOptions {
	opts := orchestrator.DefaultRunOptions()
	opts.Concurrency = c.Concurrency
	opts.Retries = c.Retries
	opts.TaskTimeout = time.Duration(c.TaskTimeoutSeconds) * time.Second
	opts.OutputDir = c.OutputDir
	return opts
}

// WorkflowOptions derives the per-court workflow settings.
func (c *Config) WorkflowOptions() workflow.Options {
	opts := workflow.DefaultOptions()
	if c.PortalURL != "" {
		opts.PortalURL = c.PortalURL
	}
	opts.OutputDir = c.OutputDir
	opts.Captcha.Attempts = c.CaptchaAttempts
	return opts
}

// OCRConfig derives the recognizer settings.
func (c *Config) OCRConfig() ocr.Config {
	cfg := ocr.DefaultConfig()
	cfg.Engine = ocr.Engine(c.OCREngine)
	if c.TesseractPath != "" {
		cfg.TesseractPath = c.TesseractPath
	}
	if c.GeminiModel != "" {
		cfg.GeminiModel = c.GeminiModel
	}
	cfg.GeminiAPIKey = c.APIKey
	return cfg
}

// RenderingOptions derives the renderer settings.
func (c *Config) RenderingOptions() rendering.Options {
	return rendering.Options{TemplatePath: c.Template, Pdflatex: c.Pdflatex}
}

// ChromeOptions derives the browser settings.
func (c *Config) ChromeOptions() browser.ChromeOptions {
	opts := browser.DefaultChromeOptions()
	opts.Headless = !c.ShowBrowser
	if c.ChromePath != "" {
		opts.ExecPath = c.ChromePath
	}
	return opts
}
