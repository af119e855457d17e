package ocr

import (
	"log/slog"
	"time"

	"github.com/joseph-ayodele/docid/internal/common"
)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "pol+eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 300

	TessdataDir         string
	EnableTSVConfidence bool

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default

	Retries int           // extra attempts per command, 0 disables retry
	Timeout time.Duration // per command, 0 = none
}

// ConfigFromApp maps the application OCR section.
func ConfigFromApp(c common.OCRConfig) Config {
	return Config{
		Pdftoppm:            c.Pdftoppm,
		Tesseract:           c.Tesseract,
		TesseractLang:       c.Language,
		DPI:                 c.DPI,
		TessdataDir:         c.TessdataDir,
		EnableTSVConfidence: true,
		PSM:                 c.PSM,
		OEM:                 c.OEM,
		Retries:             c.Retries,
		Timeout:             c.Timeout,
	}
}

// Result is the outcome of recognizing one image.
type Result struct {
	Text       string
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

// Engine drives tesseract and pdftoppm.
type Engine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

type Option func(*Engine)

// WithRunner replaces the exec-based runner (tests).
func WithRunner(r Runner) Option {
	return func(e *Engine) {
		e.runner = r
	}
}

func NewEngine(cfg Config, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "pol+eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	e := &Engine{cfg: cfg, runner: execRunner{}, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	if cfg.Retries > 0 {
		e.runner = retryRunner{next: e.runner, retries: cfg.Retries}
	}
	return e
}
