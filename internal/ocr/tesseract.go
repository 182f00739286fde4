package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Tesseract runs the tesseract CLI, feeding the image on stdin.
type Tesseract struct {
	path      string
	psm       int
	oem       int
	whitelist string
}

// NewTesseract creates a tesseract recognizer from cfg.
func NewTesseract(cfg Config) *Tesseract {
	path := cfg.TesseractPath
	if path == "" {
		path = "tesseract"
	}
	return &Tesseract{path: path, psm: cfg.PageSegMode, oem: cfg.EngineMode, whitelist: cfg.CharWhitelist}
}

// Args returns the command-line arguments passed to tesseract.
func (t *Tesseract) Args() []string {
	args := []string{"stdin", "stdout"}
	if t.psm > 0 {
		args = append(args, "--psm", strconv.Itoa(t.psm))
	}
	if t.oem > 0 {
		args = append(args, "--oem", strconv.Itoa(t.oem))
	}
	if t.whitelist != "" {
		args = append(args, "-c", "tessedit_char_whitelist="+t.whitelist)
	}
	return args
}

// Recognize implements Recognizer.
func (t *Tesseract) Recognize(ctx context.Context, png []byte) (string, error) {
	if len(png) == 0 {
		return "", fmt.Errorf("empty image")
	}

	cmd := exec.CommandContext(ctx, t.path, t.Args()...)
	cmd.Stdin = bytes.NewReader(png)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("tesseract failed: %w", err)
		}
		return "", fmt.Errorf("tesseract failed: %w: %s", err, msg)
	}
	return Clean(stdout.String()), nil
}
