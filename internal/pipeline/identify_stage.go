package pipeline

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/docid/constants"
	"github.com/joseph-ayodele/docid/internal/canon"
	"github.com/joseph-ayodele/docid/internal/common"
	"github.com/joseph-ayodele/docid/internal/extract"
	"github.com/joseph-ayodele/docid/internal/fields"
	"github.com/joseph-ayodele/docid/internal/fingerprint"
	"github.com/joseph-ayodele/docid/internal/identity"
)

// IdentifyStage turns RawContent into an identifier: business path when a
// class resolves and canonicalizes, universal fingerprint otherwise.
type IdentifyStage struct {
	Fields      *fields.Engine
	Generator   *identity.Generator
	Fingerprint *fingerprint.Fingerprinter
	Logger      *slog.Logger
}

func NewIdentifyStage(fe *fields.Engine, gen *identity.Generator, fp *fingerprint.Fingerprinter, logger *slog.Logger) *IdentifyStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &IdentifyStage{Fields: fe, Generator: gen, Fingerprint: fp, Logger: logger}
}

// Run tries the business path and falls back to the universal one.
func (s *IdentifyStage) Run(ctx context.Context, raw extract.RawContent) (Result, error) {
	ex := s.Fields.Extract(raw)
	if !ex.Resolved() {
		s.Logger.Debug("no business class resolved", "format", raw.Format, "missing", ex.Missing)
		res, err := s.Universal(ctx, raw)
		if err != nil {
			return Result{}, err
		}
		res.Missing = ex.Missing
		return res, nil
	}

	cf, err := canon.Canonicalize(ex)
	if err != nil && !common.IsNormalizationError(err) {
		return Result{}, err
	}
	var canonical string
	if err == nil {
		canonical, err = identity.CanonicalString(cf)
	}
	if err != nil {
		s.Logger.Warn("business fields unusable; using universal path", "class", ex.Class, "error", err)
		return s.fallback(ctx, raw, err)
	}
	id, err := s.Generator.Generate(cf)
	if err != nil {
		return Result{}, err
	}

	s.Logger.Debug("identify stage success", "class", ex.Class, "id", id.String())
	return Result{
		ID:        id,
		Path:      constants.PathBusiness,
		Class:     ex.Class,
		Canonical: canonical,
		Fields:    cf.Values,
		Format:    raw.Format,
		Size:      raw.Size,
		Warnings:  append(append([]string(nil), raw.Warnings...), identity.ChecksumWarnings(cf)...),
	}, nil
}

func (s *IdentifyStage) fallback(ctx context.Context, raw extract.RawContent, cause error) (Result, error) {
	res, err := s.Universal(ctx, raw)
	if err != nil {
		return Result{}, err
	}
	res.Warnings = append(res.Warnings, cause.Error())
	return res, nil
}

// Universal skips field extraction entirely.
func (s *IdentifyStage) Universal(ctx context.Context, raw extract.RawContent) (Result, error) {
	fp, err := s.Fingerprint.Fingerprint(ctx, raw)
	if err != nil {
		return Result{}, err
	}
	return Result{
		ID:        fp.ID,
		Path:      constants.PathUniversal,
		Class:     constants.ClassUnknown,
		Universal: fp.Method,
		Format:    raw.Format,
		Size:      raw.Size,
		Warnings:  append([]string(nil), raw.Warnings...),
	}, nil
}
