package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/joseph-ayodele/docid/internal/batch"
	"github.com/joseph-ayodele/docid/internal/export"
	"github.com/joseph-ayodele/docid/internal/identity"
	"github.com/joseph-ayodele/docid/internal/ingest"
	"github.com/joseph-ayodele/docid/internal/input"
	"github.com/joseph-ayodele/docid/internal/pipeline"
)

func cmdID(ctx context.Context, a *app, args []string) error {
	return identify(ctx, a, "id", args, a.pipe.Process)
}

func cmdUniversal(ctx context.Context, a *app, args []string) error {
	return identify(ctx, a, "universal", args, a.pipe.GenerateUniversal)
}

func identify(ctx context.Context, a *app, name string, args []string, op func(context.Context, string) (pipeline.Result, error)) error {
	fs := a.flags(name)
	asJSON := fs.Bool("json", false, "print the full result")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return a.usageErr("%s: at least one FILE is required", name)
	}
	var failed int
	for _, path := range fs.Args() {
		res, err := op(ctx, path)
		if err != nil {
			a.logger.Error("identification failed", "path", path, "error", err)
			failed++
			continue
		}
		if *asJSON {
			if err := a.printJSON(struct {
				File string `json:"file"`
				pipeline.Result
			}{path, res}); err != nil {
				return err
			}
			continue
		}
		if fs.NArg() == 1 {
			a.println(res.ID.String())
		} else {
			a.println(res.ID.String(), path)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, fs.NArg())
	}
	return nil
}

func cmdVerify(ctx context.Context, a *app, args []string) error {
	return verify(ctx, a, "verify", args, a.pipe.Verify)
}

func cmdVerifyUniversal(ctx context.Context, a *app, args []string) error {
	return verify(ctx, a, "verify-universal", args, a.pipe.VerifyUniversal)
}

func verify(ctx context.Context, a *app, name string, args []string, op func(context.Context, string, string) (bool, error)) error {
	if len(args) != 2 {
		return a.usageErr("%s: FILE ID required", name)
	}
	ok, err := op(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if !ok {
		a.println("MISMATCH")
		return errMismatch
	}
	a.println("OK")
	return nil
}

func cmdCompare(ctx context.Context, a *app, args []string) error {
	fs := a.flags("compare")
	universal := fs.Bool("universal", false, "compare universal identifiers")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return a.usageErr("compare: exactly two files required")
	}
	op := a.pipe.Compare
	if *universal {
		op = a.pipe.CompareUniversal
	}
	cmp, err := op(ctx, fs.Arg(0), fs.Arg(1))
	if err != nil {
		return err
	}
	return a.printJSON(cmp)
}

func cmdInvoice(_ context.Context, a *app, args []string) error {
	fs := a.flags("invoice")
	var f identity.InvoiceFields
	fs.StringVar(&f.SellerTaxID, "nip", "", "seller tax ID")
	fs.StringVar(&f.InvoiceNumber, "number", "", "invoice number")
	fs.StringVar(&f.IssueDate, "date", "", "issue date")
	fs.StringVar(&f.GrossAmount, "amount", "", "gross amount")
	fs.StringVar(&f.BuyerTaxID, "buyer", "", "buyer tax ID (informational)")
	prefix := fs.String("prefix", "", "identifier prefix")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := a.generator(*prefix).GenerateInvoiceID(f)
	if err != nil {
		return err
	}
	a.println(id.String())
	return nil
}

func cmdReceipt(_ context.Context, a *app, args []string) error {
	fs := a.flags("receipt")
	var f identity.ReceiptFields
	fs.StringVar(&f.SellerTaxID, "nip", "", "seller tax ID")
	fs.StringVar(&f.IssueDate, "date", "", "sale date")
	fs.StringVar(&f.GrossAmount, "amount", "", "gross amount")
	fs.StringVar(&f.ReceiptNumber, "number", "", "receipt number")
	fs.StringVar(&f.RegisterNumber, "register", "", "cash register number")
	prefix := fs.String("prefix", "", "identifier prefix")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := a.generator(*prefix).GenerateReceiptID(f)
	if err != nil {
		return err
	}
	a.println(id.String())
	return nil
}

func cmdContract(_ context.Context, a *app, args []string) error {
	fs := a.flags("contract")
	var f identity.ContractFields
	fs.StringVar(&f.Party1TaxID, "nip1", "", "first party tax ID")
	fs.StringVar(&f.Party2TaxID, "nip2", "", "second party tax ID")
	fs.StringVar(&f.ContractDate, "date", "", "contract date")
	fs.StringVar(&f.ContractNumber, "number", "", "contract number")
	prefix := fs.String("prefix", "", "identifier prefix")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := a.generator(*prefix).GenerateContractID(f)
	if err != nil {
		return err
	}
	a.println(id.String())
	return nil
}

func cmdFields(_ context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return a.usageErr("fields: FILE.json required")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read field document: %w", err)
	}
	doc, err := input.Decode(data, a.logger)
	if err != nil {
		return err
	}
	if len(doc.Changes) > 0 {
		a.logger.Info("field document normalized", "changes", strings.Join(doc.Changes, ", "))
	}
	id, err := doc.Generate(a.pipe.Generator())
	if err != nil {
		return err
	}
	a.println(id.String())
	return nil
}

func cmdExtract(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return a.usageErr("extract: FILE required")
	}
	raw, ex, err := a.pipe.Inspect(ctx, args[0])
	if err != nil {
		return err
	}
	return a.printJSON(map[string]any{"content": raw, "fields": ex})
}

func cmdBatch(ctx context.Context, a *app, args []string) error {
	fs := a.flags("batch")
	xlsxOut := fs.String("xlsx", "", "write the report as XLSX")
	skipHidden := fs.Bool("skip-hidden", a.cfg.Batch.SkipHidden, "skip dot files and directories")
	universal := fs.Bool("universal", false, "universal identifiers only")
	asJSON := fs.Bool("json", false, "print the report as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return a.usageErr("batch: DIR required")
	}

	entries, stats, err := ingest.NewFSIngestor(nil, a.logger).IngestDirectory(ctx, fs.Arg(0), *skipHidden)
	if err != nil {
		return err
	}
	var paths []string
	var size int64
	for _, e := range entries {
		if e.Err == "" {
			paths = append(paths, e.Path)
			size += e.Size
		}
	}
	a.logger.Info("ingestion complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"failed", stats.Failed,
		"deduplicated", stats.Deduplicated,
		"bytes", humanize.Bytes(uint64(size)),
	)

	runner := batch.NewRunner(a.pipe, a.logger,
		batch.WithWorkers(a.cfg.Batch.Workers),
		batch.WithTimeout(a.cfg.Batch.Timeout),
		batch.WithUniversal(*universal),
	)
	rep, runErr := runner.Run(ctx, paths)
	if runErr != nil && len(rep.Items) == 0 {
		return runErr
	}

	if *xlsxOut != "" {
		data, err := export.NewService(a.logger).WriteBatchXLSX(rep)
		if err != nil {
			return err
		}
		if err := os.WriteFile(*xlsxOut, data, 0o644); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		a.logger.Info("report written", "output", *xlsxOut, "size", humanize.Bytes(uint64(len(data))))
	}

	if *asJSON {
		if err := a.printJSON(rep); err != nil {
			return err
		}
	} else {
		for _, it := range rep.Items {
			if it.Err != "" {
				a.println("ERROR", it.File)
				continue
			}
			a.println(it.Result.ID.String(), it.File)
		}
		for _, id := range sortedKeys(rep.Duplicates) {
			a.println(fmt.Sprintf("duplicate %s: %s", id, strings.Join(rep.Duplicates[id], ", ")))
		}
	}
	return runErr
}

func cmdWatch(ctx context.Context, a *app, args []string) error {
	fs := a.flags("watch")
	universal := fs.Bool("universal", false, "universal identifiers only")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return a.usageErr("watch: at least one DIR required")
	}
	roots := make([]string, 0, fs.NArg())
	for _, r := range fs.Args() {
		abs, err := filepath.Abs(r)
		if err != nil {
			return err
		}
		roots = append(roots, abs)
	}

	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:      roots,
		Debounce:   500 * time.Millisecond,
		SkipHidden: a.cfg.Batch.SkipHidden,
		Logger:     a.logger,
	})
	if err != nil {
		return err
	}

	runner := batch.NewRunner(a.pipe, a.logger,
		batch.WithWorkers(a.cfg.Batch.Workers),
		batch.WithTimeout(a.cfg.Batch.Timeout),
		batch.WithUniversal(*universal),
	)
	var mu sync.Mutex
	q := batch.NewQueue(runner, func(job batch.Job, it batch.Item) {
		mu.Lock()
		defer mu.Unlock()
		if it.Err != "" {
			a.println("ERROR", job.Path)
			return
		}
		a.println(it.Result.ID.String(), job.Path)
	}, 0)
	defer q.Shutdown(context.Background())

	a.logger.Info("watching", "roots", roots)
	for {
		select {
		case p, ok := <-events:
			if !ok {
				return nil
			}
			q.Enqueue(ctx, p)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			a.logger.Warn("watch error", "error", err)
		case <-ctx.Done():
			return nil
		}
	}
}
