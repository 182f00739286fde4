package main

import (
	"os"

	"github.com/spf13/pflag"

	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/config"
)

// apiKeyEnv names the environment variable holding the Gemini API key.
const apiKeyEnv = "GEMINI_API_KEY"

// runFlags are the persistent flags that override config file values.
type runFlags struct {
	outputDir   string
	concurrency int
	retries     int
	ocrEngine   string
	template    string
	showBrowser bool
	verbose     bool
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	defaults := config.Defaults()
	fs.StringVarP(&f.outputDir, "output-dir", "o", defaults.OutputDir, "Directory for PDFs and the bundle")
	fs.IntVar(&f.concurrency, "concurrency", defaults.Concurrency, "Courts processed in parallel")
	fs.IntVar(&f.retries, "retries", defaults.Retries, "Attempts per court, each with a fresh browser")
	fs.StringVar(&f.ocrEngine, "ocr-engine", defaults.OCREngine, "CAPTCHA reader: tesseract or gemini")
	fs.StringVarP(&f.template, "template", "t", "", "LaTeX template overriding the built-in one")
	fs.BoolVar(&f.showBrowser, "show-browser", false, "Run Chrome with a visible window")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Print debug logs")
}

// apply copies the flags the user actually set onto cfg.
func (f *runFlags) apply(cfg *config.Config, fs *pflag.FlagSet) {
	if fs.Changed("output-dir") {
		cfg.OutputDir = f.outputDir
	}
	if fs.Changed("concurrency") {
		cfg.Concurrency = f.concurrency
	}
	if fs.Changed("retries") {
		cfg.Retries = f.retries
	}
	if fs.Changed("ocr-engine") {
		cfg.OCREngine = f.ocrEngine
	}
	if fs.Changed("template") {
		cfg.Template = f.template
	}
	if fs.Changed("show-browser") {
		cfg.ShowBrowser = f.showBrowser
	}
	if fs.Changed("verbose") {
		cfg.Verbose = f.verbose
	}
}

// loadSettings layers the config file, the flags the user set, the environment and
// the defaults, then validates the result.
func loadSettings(path string, f *runFlags, fs *pflag.FlagSet) (config.Config, error) {
	cfg := &config.Config{}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	f.apply(cfg, fs)
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(apiKeyEnv)
	}

	merged := cfg.MergeWithDefaults(config.Defaults())
	if err := merged.Validate(); err != nil {
		return config.Config{}, err
	}
	return merged, nil
}
