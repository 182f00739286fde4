// Package main implements the causelist CLI, which downloads eCourts cause lists as PDFs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/config"
	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "causelist",
	Short: "Download eCourts cause lists",
	Long: `causelist drives the eCourts cause-list form for one court or every court of a
complex, reads the CAPTCHA with OCR, and writes one PDF per court with the civil and
criminal listings. Bulk runs also produce a ZIP bundle of all PDFs.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
}

var (
	configFile string
	flags      runFlags

	// Set by setup before any command runs.
	settings config.Config
	logger   = zap.NewNop()
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "Path to JSON config file")
	flags.register(pf)
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(configFile, &flags, cmd.Flags())
	if err != nil {
		return err
	}
	settings = cfg

	logger, err = logging.New(cfg.Verbose)
	if err != nil {
		return err
	}
	logger.Debug("settings loaded",
		zap.String("output_dir", cfg.OutputDir),
		zap.String("ocr_engine", cfg.OCREngine),
		zap.Int("concurrency", cfg.Concurrency))
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
