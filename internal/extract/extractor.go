package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/joseph-ayodele/docid/constants"
	"github.com/joseph-ayodele/docid/internal/common"
)

// Extractor turns a file into RawContent. It holds no per-call state and is
// safe for concurrent use.
type Extractor struct {
	fs         afero.Fs
	recognizer Recognizer
	renderer   PageRenderer
	logger     *slog.Logger
}

type Option func(*Extractor)

// WithFs reads files from fs instead of the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(e *Extractor) {
		e.fs = fs
	}
}

// WithRecognizer enables OCR for images and text-less PDF pages.
func WithRecognizer(r Recognizer) Option {
	return func(e *Extractor) {
		e.recognizer = r
	}
}

// WithPageRenderer enables rasterization of text-less PDF pages.
func WithPageRenderer(r PageRenderer) Option {
	return func(e *Extractor) {
		e.renderer = r
	}
}

func New(logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Extractor{fs: afero.NewOsFs(), logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fs returns the filesystem the extractor reads from.
func (e *Extractor) Fs() afero.Fs { return e.fs }

// Extract reads path and produces its RawContent.
func (e *Extractor) Extract(ctx context.Context, path string) (RawContent, error) {
	data, err := afero.ReadFile(e.fs, path)
	if err != nil {
		e.logger.Error("failed to read document", "path", path, "error", err)
		return RawContent{}, common.ExtractionError(path, err)
	}
	return e.ExtractBytes(ctx, path, data)
}

// ExtractBytes is Extract for content already in memory. name is used for
// format detection and messages only.
func (e *Extractor) ExtractBytes(ctx context.Context, name string, data []byte) (RawContent, error) {
	start := time.Now()

	format, ok := detectFormat(name, data)
	if !ok {
		e.logger.Error("unsupported document format", "path", name)
		return RawContent{}, common.UnsupportedFormatError(name)
	}

	sum := sha256.Sum256(data)
	raw := RawContent{
		Format: format,
		Digest: hex.EncodeToString(sum[:]),
		Size:   int64(len(data)),
	}

	e.logger.Debug("starting extraction", "path", name, "format", format, "size", raw.Size)

	var err error
	switch {
	case format == constants.FormatPDF:
		err = e.extractPDF(ctx, data, &raw)
	case format.IsImage():
		raw.Data = data
		raw.Pages = 1
		err = e.extractImage(ctx, data, &raw)
	case format == constants.FormatXML:
		raw.Method = MethodMarkup
		raw.Text, raw.Structured, err = parseXML(data)
	case format == constants.FormatHTML:
		raw.Method = MethodMarkup
		raw.Text, raw.Structured, err = parseHTML(data)
	default:
		raw.Method = MethodText
		raw.Text = strings.TrimSpace(decodeText(data))
	}
	if err != nil {
		e.logger.Error("extraction failed", "path", name, "format", format, "error", err)
		return RawContent{}, common.ExtractionError(name, err)
	}

	e.logger.Debug("extraction done",
		"path", name,
		"method", raw.Method,
		"chars", len(raw.Text),
		"hints", len(raw.Structured),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return raw, nil
}

func (e *Extractor) extractImage(ctx context.Context, data []byte, raw *RawContent) error {
	if e.recognizer == nil {
		raw.Method = MethodNone
		return nil
	}
	rec, err := e.recognizer.Recognize(ctx, data, raw.Format)
	raw.Warnings = append(raw.Warnings, rec.Warnings...)
	if err != nil {
		return fmt.Errorf("ocr: %w", err)
	}
	raw.Method = MethodImageOCR
	raw.Text = strings.TrimSpace(rec.Text)
	raw.Confidence = rec.Confidence
	return nil
}
