package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/docid/constants"
	"github.com/joseph-ayodele/docid/internal/ocr"
)

// OCRAdapter exposes an ocr.Engine as both Recognizer and PageRenderer.
type OCRAdapter struct {
	engine *ocr.Engine
	logger *slog.Logger
}

func NewOCRAdapter(e *ocr.Engine, l *slog.Logger) *OCRAdapter {
	if l == nil {
		l = slog.Default()
	}
	return &OCRAdapter{
		engine: e,
		logger: l,
	}
}

func (a *OCRAdapter) Recognize(ctx context.Context, image []byte, format constants.SourceFormat) (Recognition, error) {
	r, err := a.engine.RecognizeImage(ctx, image, string(format))
	if err != nil {
		return Recognition{Warnings: r.Warnings}, err
	}
	a.logger.Debug("image recognized", "chars", len(r.Text), "confidence", r.Confidence, "duration_ms", r.Duration.Milliseconds())
	return Recognition{
		Text:       r.Text,
		Confidence: r.Confidence,
		Warnings:   r.Warnings,
	}, nil
}

func (a *OCRAdapter) RenderPage(ctx context.Context, pdf []byte, page int) ([]byte, error) {
	return a.engine.RenderPDFPage(ctx, pdf, page)
}
