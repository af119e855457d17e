package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/docid/constants"
)

var disablePDFConfigDir sync.Once

// extractPDF reads the text layer page by page. Pages without usable text
// are rendered and recognized when OCR collaborators are configured.
func (e *Extractor) extractPDF(ctx context.Context, data []byte, raw *RawContent) error {
	disablePDFConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	pctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return fmt.Errorf("pdfcpu read: %w", err)
	}

	raw.Pages = pctx.PageCount
	texts := make([]string, 0, pctx.PageCount)
	var textPages, ocrPages int
	var confSum float32

	for pageNr := 1; pageNr <= pctx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if t := extractPageText(pctx, pageNr); usableText(t) {
			texts = append(texts, t)
			textPages++
			continue
		}

		if e.renderer == nil || (e.recognizer == nil && raw.Raster != nil) {
			continue
		}
		img, err := e.renderer.RenderPage(ctx, data, pageNr)
		if err != nil {
			e.logger.Warn("pdf page render failed", "page", pageNr, "error", err)
			raw.Warnings = append(raw.Warnings, fmt.Sprintf("page %d: render: %v", pageNr, err))
			continue
		}
		if raw.Raster == nil {
			raw.Raster = img
		}
		if e.recognizer == nil {
			continue
		}

		rec, err := e.recognizer.Recognize(ctx, img, constants.FormatPNG)
		raw.Warnings = append(raw.Warnings, rec.Warnings...)
		if err != nil {
			e.logger.Warn("pdf page ocr failed", "page", pageNr, "error", err)
			raw.Warnings = append(raw.Warnings, fmt.Sprintf("page %d: ocr: %v", pageNr, err))
			continue
		}
		if t := strings.TrimSpace(rec.Text); t != "" {
			texts = append(texts, t)
			ocrPages++
			confSum += rec.Confidence
		}
	}

	raw.Text = strings.Join(texts, "\n")
	switch {
	case textPages > 0 && ocrPages > 0:
		raw.Method = MethodPDFMixed
	case ocrPages > 0:
		raw.Method = MethodPDFOCR
		raw.Confidence = confSum / float32(ocrPages)
	case textPages > 0:
		raw.Method = MethodPDFText
		raw.Confidence = 1
	default:
		raw.Method = MethodNone
	}
	return nil
}

// extractPageText extracts text from a single PDF page via pdfcpu content stream.
func extractPageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return textFromContentStream(data)
}
