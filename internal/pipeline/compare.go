package pipeline

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/docid/internal/fingerprint"
	"github.com/joseph-ayodele/docid/internal/identity"
)

// Comparison reports structural equality of two documents.
type Comparison struct {
	IDA            identity.Identifier `json:"id_a"`
	IDB            identity.Identifier `json:"id_b"`
	IdenticalIDs   bool                `json:"identical_ids"`
	SameType       bool                `json:"same_type"`
	SameSizeBucket bool                `json:"same_size_bucket"`
}

// Verify recomputes the identifier of path and compares it with expected.
// Only extraction failures are errors; a mismatch is (false, nil).
func (p *Pipeline) Verify(ctx context.Context, path, expected string) (bool, error) {
	res, err := p.Process(ctx, path)
	if err != nil {
		return false, err
	}
	return res.ID.String() == strings.TrimSpace(expected), nil
}

// VerifyUniversal is Verify against the universal identifier.
func (p *Pipeline) VerifyUniversal(ctx context.Context, path, expected string) (bool, error) {
	res, err := p.GenerateUniversal(ctx, path)
	if err != nil {
		return false, err
	}
	return res.ID.String() == strings.TrimSpace(expected), nil
}

// Compare runs the full pipeline on both files.
func (p *Pipeline) Compare(ctx context.Context, a, b string) (Comparison, error) {
	return p.compare(ctx, a, b, p.Process)
}

// CompareUniversal compares universal identifiers only.
func (p *Pipeline) CompareUniversal(ctx context.Context, a, b string) (Comparison, error) {
	return p.compare(ctx, a, b, p.GenerateUniversal)
}

func (p *Pipeline) compare(ctx context.Context, a, b string, run func(context.Context, string) (Result, error)) (Comparison, error) {
	var ra, rb Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ra, err = run(gctx, a)
		return err
	})
	g.Go(func() error {
		var err error
		rb, err = run(gctx, b)
		return err
	})
	if err := g.Wait(); err != nil {
		return Comparison{}, err
	}
	return CompareResults(ra, rb), nil
}

// CompareResults diffs two already computed results.
func CompareResults(a, b Result) Comparison {
	return Comparison{
		IDA:            a.ID,
		IDB:            b.ID,
		IdenticalIDs:   a.ID.Equal(b.ID),
		SameType:       a.Format == b.Format,
		SameSizeBucket: fingerprint.SizeBucket(a.Size) == fingerprint.SizeBucket(b.Size),
	}
}
