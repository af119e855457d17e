package extract

import (
	"context"

	"github.com/joseph-ayodele/docid/constants"
)

// RawContent is the per-call product of the extractor. It is never mutated
// after Extract returns.
type RawContent struct {
	Format     constants.SourceFormat `json:"format"`
	Text       string                 `json:"text"`
	Structured map[string]string      `json:"structured,omitempty"`
	Digest     string                 `json:"digest"` // hex SHA-256 of the file bytes
	Size       int64                  `json:"size"`
	Pages      int                    `json:"pages,omitempty"`
	Method     string                 `json:"method"`
	Confidence float32                `json:"confidence,omitempty"`
	Warnings   []string               `json:"warnings,omitempty"`

	// Data holds the original bytes for image formats; Raster the first
	// rendered page of a PDF without text. Both feed the visual fingerprint.
	Data   []byte `json:"-"`
	Raster []byte `json:"-"`
}

// Extraction methods.
const (
	MethodText     = "text"
	MethodMarkup   = "markup"
	MethodPDFText  = "pdf-text"
	MethodPDFOCR   = "pdf-ocr"
	MethodPDFMixed = "pdf-mixed"
	MethodImageOCR = "image-ocr"
	MethodNone     = "none"
)

// Recognizer is the OCR capability: image bytes -> text.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, format constants.SourceFormat) (Recognition, error)
}

type Recognition struct {
	Text       string
	Confidence float32
	Warnings   []string
}

// PageRenderer rasterizes a single 1-based PDF page into PNG bytes.
type PageRenderer interface {
	RenderPage(ctx context.Context, pdf []byte, page int) ([]byte, error)
}
