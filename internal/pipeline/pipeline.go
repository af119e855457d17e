// Package pipeline wires extraction, field resolution, canonicalization and
// hashing into the document identity operations.
package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/joseph-ayodele/docid/constants"
	"github.com/joseph-ayodele/docid/internal/canon"
	"github.com/joseph-ayodele/docid/internal/common"
	"github.com/joseph-ayodele/docid/internal/extract"
	"github.com/joseph-ayodele/docid/internal/fields"
	"github.com/joseph-ayodele/docid/internal/fingerprint"
	"github.com/joseph-ayodele/docid/internal/identity"
	"github.com/joseph-ayodele/docid/internal/ocr"
)

// Config selects every collaborator explicitly. A nil Recognizer disables
// OCR; a nil Fs reads from the OS.
type Config struct {
	Prefix          string
	UniversalPrefix string
	Recognizer      extract.Recognizer
	Renderer        extract.PageRenderer
	Fs              afero.Fs
	Rules           []fields.ClassRules
	CacheSize       int
}

// ConfigFromApp builds a pipeline Config from application configuration,
// constructing the tesseract engine when OCR is enabled.
func ConfigFromApp(app *common.Config, logger *slog.Logger) Config {
	cfg := Config{
		Prefix:          app.Identity.Prefix,
		UniversalPrefix: app.Identity.UniversalPrefix,
	}
	if app.Cache.Enabled {
		cfg.CacheSize = app.Cache.Size
	}
	if app.OCR.Enabled {
		adapter := extract.NewOCRAdapter(ocr.NewEngine(ocr.ConfigFromApp(app.OCR), logger), logger)
		cfg.Recognizer = adapter
		cfg.Renderer = adapter
	}
	return cfg
}

// Result describes how an identifier was obtained.
type Result struct {
	ID        identity.Identifier      `json:"id"`
	Path      constants.ResolutionPath `json:"path"`
	Class     constants.DocumentClass  `json:"class"`
	Canonical string                   `json:"canonical,omitempty"`
	Fields    map[fields.Name]string   `json:"fields,omitempty"`
	Universal string                   `json:"universal_method,omitempty"`
	Missing   []fields.Name            `json:"missing,omitempty"`
	Format    constants.SourceFormat   `json:"format"`
	Size      int64                    `json:"size"`
	Warnings  []string                 `json:"warnings,omitempty"`
}

// Pipeline is immutable after New and safe for concurrent use.
type Pipeline struct {
	logger    *slog.Logger
	fs        afero.Fs
	extract   *ExtractStage
	identify  *IdentifyStage
	generator *identity.Generator
	cache     *memo
}

func New(cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}

	opts := []extract.Option{extract.WithFs(cfg.Fs)}
	if cfg.Recognizer != nil {
		opts = append(opts, extract.WithRecognizer(cfg.Recognizer))
	}
	if cfg.Renderer != nil {
		opts = append(opts, extract.WithPageRenderer(cfg.Renderer))
	}
	ruleOpts := []fields.Option{fields.WithValueCheck(canon.Accepts)}
	if cfg.Rules != nil {
		ruleOpts = append(ruleOpts, fields.WithRules(cfg.Rules))
	}

	gen := identity.NewGenerator(cfg.Prefix, logger)
	return &Pipeline{
		logger:    logger,
		fs:        cfg.Fs,
		extract:   NewExtractStage(extract.New(logger, opts...), logger),
		identify:  NewIdentifyStage(fields.NewEngine(logger, ruleOpts...), gen, fingerprint.New(cfg.UniversalPrefix, logger), logger),
		generator: gen,
		cache:     newMemo(cfg.CacheSize),
	}
}

// Generator exposes the business identifier generator for explicit fields.
func (p *Pipeline) Generator() *identity.Generator { return p.generator }

const (
	opProcess   = "process"
	opUniversal = "universal"
)

// GetDocumentID returns the business identifier when a class resolves and
// the universal one otherwise.
func (p *Pipeline) GetDocumentID(ctx context.Context, path string) (identity.Identifier, error) {
	res, err := p.Process(ctx, path)
	if err != nil {
		return identity.Identifier{}, err
	}
	return res.ID, nil
}

// Process runs the full pipeline on path.
func (p *Pipeline) Process(ctx context.Context, path string) (Result, error) {
	return p.run(ctx, path, opProcess, p.identify.Run)
}

// GenerateUniversal skips the business path.
func (p *Pipeline) GenerateUniversal(ctx context.Context, path string) (Result, error) {
	return p.run(ctx, path, opUniversal, p.identify.Universal)
}

// Inspect returns the intermediate products for path without hashing.
func (p *Pipeline) Inspect(ctx context.Context, path string) (extract.RawContent, fields.Extracted, error) {
	data, err := p.read(path)
	if err != nil {
		return extract.RawContent{}, fields.Extracted{}, err
	}
	raw, err := p.extract.Run(ctx, path, data)
	if err != nil {
		return extract.RawContent{}, fields.Extracted{}, err
	}
	return raw, p.identify.Fields.Extract(raw), nil
}

func (p *Pipeline) run(ctx context.Context, path, op string, identify func(context.Context, extract.RawContent) (Result, error)) (Result, error) {
	start := time.Now()
	logger := common.LoggerFromContext(ctx, p.logger)

	data, err := p.read(path)
	if err != nil {
		return Result{}, err
	}

	key := memoKey(op, constants.NormalizeExt(filepath.Ext(path)), data)
	if res, ok := p.cache.get(key); ok {
		logger.Debug("memo hit", "path", path, "op", op, "id", res.ID.String())
		return res, nil
	}

	raw, err := p.extract.Run(ctx, path, data)
	if err != nil {
		return Result{}, err
	}
	res, err := identify(ctx, raw)
	if err != nil {
		logger.Error("identification failed", "path", path, "op", op, "error", err)
		return Result{}, err
	}
	p.cache.put(key, res)

	logger.Info("document identified",
		"path", path,
		"id", res.ID.String(),
		"resolution", res.Path,
		"class", res.Class,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (p *Pipeline) read(path string) ([]byte, error) {
	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		p.logger.Error("failed to read document", "path", path, "error", err)
		return nil, common.ExtractionError(path, err)
	}
	return data, nil
}
