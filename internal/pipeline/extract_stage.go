package pipeline

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/docid/internal/extract"
)

// LowConfidenceThreshold flags OCR output that is likely to miss fields.
const LowConfidenceThreshold = 0.60

type ExtractStage struct {
	Extractor *extract.Extractor
	Logger    *slog.Logger
}

func NewExtractStage(x *extract.Extractor, logger *slog.Logger) *ExtractStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStage{Extractor: x, Logger: logger}
}

// Run extracts content from bytes already read from name.
func (s *ExtractStage) Run(ctx context.Context, name string, data []byte) (extract.RawContent, error) {
	raw, err := s.Extractor.ExtractBytes(ctx, name, data)
	if err != nil {
		return raw, err
	}

	ocred := raw.Method == extract.MethodImageOCR || raw.Method == extract.MethodPDFOCR
	if ocred && raw.Confidence > 0 && raw.Confidence < LowConfidenceThreshold {
		s.Logger.Warn("ocr confidence low; fields may fall back to universal path",
			"path", name, "method", raw.Method, "conf", raw.Confidence)
		raw.Warnings = append(raw.Warnings, "low ocr confidence")
	}

	s.Logger.Debug("extract stage success",
		"path", name,
		"format", raw.Format,
		"method", raw.Method,
		"pages", raw.Pages,
		"confidence", raw.Confidence,
	)
	return raw, nil
}
