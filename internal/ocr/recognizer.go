// Package ocr turns CAPTCHA images into text. Two engines are available: a local
// tesseract binary and a Gemini vision model.
package ocr

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// Engine names a recognizer implementation.
type Engine string

const (
	// EngineTesseract shells out to the tesseract CLI.
	EngineTesseract Engine = "tesseract"
	// EngineGemini asks a Gemini model to read the image.
	EngineGemini Engine = "gemini"
)

// Recognizer reads the characters in a PNG image. Implementations return the
// cleaned text, which may be empty when nothing legible was found.
type Recognizer interface {
	Recognize(ctx context.Context, png []byte) (string, error)
}

// RecognizerFunc adapts a function to Recognizer.
type RecognizerFunc func(ctx context.Context, png []byte) (string, error)

// Recognize calls f.
func (f RecognizerFunc) Recognize(ctx context.Context, png []byte) (string, error) {
	return f(ctx, png)
}

// Config selects and configures an engine.
type Config struct {
	Engine        Engine
	TesseractPath string
	GeminiModel   string
	GeminiAPIKey  string
	PageSegMode   int
	EngineMode    int
	CharWhitelist string
}

// DefaultConfig returns the tesseract settings that read the portal's single-line
// CAPTCHA best.
func DefaultConfig() Config {
	return Config{
		Engine:        EngineTesseract,
		TesseractPath: "tesseract",
		GeminiModel:   DefaultGeminiModel,
		PageSegMode:   7,
		EngineMode:    3,
	}
}

// New builds the recognizer named by cfg.Engine.
func New(ctx context.Context, cfg Config) (Recognizer, error) {
	switch cfg.Engine {
	case EngineTesseract, "":
		return NewTesseract(cfg), nil
	case EngineGemini:
		return NewGemini(ctx, cfg.GeminiModel, cfg.GeminiAPIKey)
	default:
		return nil, fmt.Errorf("unknown OCR engine %q", cfg.Engine)
	}
}

// Clean strips whitespace and anything that is not a letter or digit, which is all
// the portal's CAPTCHA ever contains.
func Clean(text string) string {
	var b strings.Builder
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
