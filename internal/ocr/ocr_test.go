package ocr

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trailing newline", "aB3x9\n", "aB3x9"},
		{"inner spaces", " a B 3 \f", "aB3"},
		{"punctuation", "x.y-z|1", "xyz1"},
		{"empty", "\n\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestTesseractArgs(t *testing.T) {
	tess := NewTesseract(DefaultConfig())
	assert.Equal(t, []string{"stdin", "stdout", "--psm", "7", "--oem", "3"}, tess.Args())

	cfg := DefaultConfig()
	cfg.CharWhitelist = "abc123"
	tess = NewTesseract(cfg)
	assert.Contains(t, tess.Args(), "tessedit_char_whitelist=abc123")
}

func TestTesseract_EmptyImage(t *testing.T) {
	_, err := NewTesseract(DefaultConfig()).Recognize(context.Background(), nil)
	assert.Error(t, err)
}

func TestTesseract_MissingBinary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TesseractPath = "/nonexistent/tesseract"

	_, err := NewTesseract(cfg).Recognize(context.Background(), []byte{0x89, 'P', 'N', 'G'})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tesseract failed")
}

func TestNew(t *testing.T) {
	r, err := New(context.Background(), DefaultConfig())
	require.NoError(t, err)
	assert.IsType(t, &Tesseract{}, r)

	_, err = New(context.Background(), Config{Engine: EngineGemini})
	assert.ErrorContains(t, err, "API key is required")

	_, err = New(context.Background(), Config{Engine: "braille"})
	assert.Error(t, err)
}

func TestRecognizerFunc(t *testing.T) {
	r := RecognizerFunc(func(context.Context, []byte) (string, error) { return "ab12", nil })
	got, err := r.Recognize(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ab12", got)
}

func TestResponseText(t *testing.T) {
	_, err := responseText(&genai.GenerateContentResponse{})
	assert.Error(t, err)

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("x7"), genai.Text("Kq")}},
		}},
	}
	got, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, "x7Kq", got)
}
