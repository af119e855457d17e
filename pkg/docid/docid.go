// Package docid assigns deterministic identifiers to invoices, receipts,
// contracts and arbitrary documents.
//
// Business documents get DOC-<FV|PAR|UMO>-<16 hex> derived from their
// canonical fields; anything else gets UNIV-<PDF|XML|HTML|TXT|IMG>-<16 hex>
// derived from its normalized content. The same document in different file
// formats yields the same business identifier.
package docid

import (
	"context"
	"log/slog"
	"sync"

	"github.com/spf13/afero"

	"github.com/joseph-ayodele/docid/internal/common"
	"github.com/joseph-ayodele/docid/internal/extract"
	"github.com/joseph-ayodele/docid/internal/identity"
	"github.com/joseph-ayodele/docid/internal/input"
	"github.com/joseph-ayodele/docid/internal/pipeline"
)

type (
	Identifier     = identity.Identifier
	Result         = pipeline.Result
	Comparison     = pipeline.Comparison
	InvoiceFields  = identity.InvoiceFields
	ReceiptFields  = identity.ReceiptFields
	ContractFields = identity.ContractFields
	Recognizer     = extract.Recognizer
	PageRenderer   = extract.PageRenderer
)

// Field sets of the classes issued only from explicit fields.
type (
	CorrectionFields    = identity.CorrectionFields
	BankStatementFields = identity.BankStatementFields
	BillFields          = identity.BillFields
	CashFields          = identity.CashFields
	DebitNoteFields     = identity.DebitNoteFields
	DeliveryNoteFields  = identity.DeliveryNoteFields
	ExpenseReportFields = identity.ExpenseReportFields
	GenericFields       = identity.GenericFields
)

// Error kinds, matched with errors.Is.
var (
	ErrUnsupportedFormat   = common.ErrUnsupportedFormat
	ErrExtraction          = common.ErrExtraction
	ErrDateNormalization   = common.ErrDateNormalization
	ErrAmountNormalization = common.ErrAmountNormalization
	ErrInvalidInput        = common.ErrInvalidInput
	ErrInvalidIdentifier   = common.ErrInvalidIdentifier
)

// Client is safe for concurrent use.
type Client struct {
	p      *pipeline.Pipeline
	logger *slog.Logger
}

type Option func(*pipeline.Config)

// WithPrefix sets the business identifier prefix (default DOC).
func WithPrefix(prefix string) Option {
	return func(c *pipeline.Config) { c.Prefix = prefix }
}

// WithUniversalPrefix sets the fallback identifier prefix (default UNIV).
func WithUniversalPrefix(prefix string) Option {
	return func(c *pipeline.Config) { c.UniversalPrefix = prefix }
}

// WithOCR enables recognition of scanned pages and images. Either argument
// may be nil.
func WithOCR(r Recognizer, pr PageRenderer) Option {
	return func(c *pipeline.Config) {
		c.Recognizer = r
		c.Renderer = pr
	}
}

// WithFs reads documents from fs instead of the OS.
func WithFs(fs afero.Fs) Option {
	return func(c *pipeline.Config) { c.Fs = fs }
}

// WithCache memoizes results of byte-identical inputs (size <= 0 disables).
func WithCache(size int) Option {
	return func(c *pipeline.Config) { c.CacheSize = size }
}

func New(logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	var cfg pipeline.Config
	for _, o := range opts {
		o(&cfg)
	}
	return &Client{p: pipeline.New(cfg, logger), logger: logger}
}

// NewFromConfig loads the YAML/env configuration at path (DOCID_CONFIG when
// empty), validates it and builds a client with the configured OCR engine.
func NewFromConfig(path string, logger *slog.Logger, opts ...Option) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app, err := common.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := app.Validate(); err != nil {
		return nil, err
	}
	cfg := pipeline.ConfigFromApp(app, logger)
	for _, o := range opts {
		o(&cfg)
	}
	return &Client{p: pipeline.New(cfg, logger), logger: logger}, nil
}

func (c *Client) GetDocumentID(ctx context.Context, path string) (Identifier, error) {
	return c.p.GetDocumentID(ctx, path)
}

// Process is GetDocumentID with the class, canonical string and the path
// taken.
func (c *Client) Process(ctx context.Context, path string) (Result, error) {
	return c.p.Process(ctx, path)
}

func (c *Client) GenerateUniversalDocumentID(ctx context.Context, path string) (Identifier, error) {
	res, err := c.p.GenerateUniversal(ctx, path)
	if err != nil {
		return Identifier{}, err
	}
	return res.ID, nil
}

func (c *Client) GenerateInvoiceID(f InvoiceFields) (Identifier, error) {
	return c.p.Generator().GenerateInvoiceID(f)
}

func (c *Client) GenerateReceiptID(f ReceiptFields) (Identifier, error) {
	return c.p.Generator().GenerateReceiptID(f)
}

func (c *Client) GenerateContractID(f ContractFields) (Identifier, error) {
	return c.p.Generator().GenerateContractID(f)
}

func (c *Client) GenerateCorrectionID(f CorrectionFields) (Identifier, error) {
	return c.p.Generator().GenerateCorrectionID(f)
}

func (c *Client) GenerateBankStatementID(f BankStatementFields) (Identifier, error) {
	return c.p.Generator().GenerateBankStatementID(f)
}

func (c *Client) GenerateBillID(f BillFields) (Identifier, error) {
	return c.p.Generator().GenerateBillID(f)
}

func (c *Client) GenerateCashReceiptID(f CashFields) (Identifier, error) {
	return c.p.Generator().GenerateCashReceiptID(f)
}

func (c *Client) GenerateCashDisbursementID(f CashFields) (Identifier, error) {
	return c.p.Generator().GenerateCashDisbursementID(f)
}

func (c *Client) GenerateDebitNoteID(f DebitNoteFields) (Identifier, error) {
	return c.p.Generator().GenerateDebitNoteID(f)
}

func (c *Client) GenerateDeliveryNoteID(f DeliveryNoteFields) (Identifier, error) {
	return c.p.Generator().GenerateDeliveryNoteID(f)
}

func (c *Client) GenerateExpenseReportID(f ExpenseReportFields) (Identifier, error) {
	return c.p.Generator().GenerateExpenseReportID(f)
}

// GenerateGenericID identifies proforma, advance invoice, goods receipt and
// other documents by a caller-computed content hash.
func (c *Client) GenerateGenericID(f GenericFields) (Identifier, error) {
	return c.p.Generator().GenerateGenericID(f)
}

// GenerateFromJSON validates a field document such as
// {"type":"invoice","seller_tax_id":"...",...} and generates its identifier.
func (c *Client) GenerateFromJSON(data []byte) (Identifier, error) {
	doc, err := input.Decode(data, c.logger)
	if err != nil {
		return Identifier{}, err
	}
	return doc.Generate(c.p.Generator())
}

// VerifyDocumentID reports whether path still yields id. A mismatch is not
// an error.
func (c *Client) VerifyDocumentID(ctx context.Context, path, id string) (bool, error) {
	return c.p.Verify(ctx, path, id)
}

func (c *Client) VerifyUniversalDocumentID(ctx context.Context, path, id string) (bool, error) {
	return c.p.VerifyUniversal(ctx, path, id)
}

func (c *Client) CompareDocuments(ctx context.Context, a, b string) (Comparison, error) {
	return c.p.Compare(ctx, a, b)
}

func (c *Client) CompareUniversalDocuments(ctx context.Context, a, b string) (Comparison, error) {
	return c.p.CompareUniversal(ctx, a, b)
}

// ParseID validates the PREFIX-CODE-HEX shape.
func ParseID(s string) (Identifier, error) {
	return identity.Parse(s)
}

var (
	defaultOnce   sync.Once
	defaultClient *Client
)

// Default is a client with default prefixes, no OCR and the OS filesystem.
func Default() *Client {
	defaultOnce.Do(func() { defaultClient = New(nil, WithCache(256)) })
	return defaultClient
}

func GetDocumentID(ctx context.Context, path string) (Identifier, error) {
	return Default().GetDocumentID(ctx, path)
}

func Process(ctx context.Context, path string) (Result, error) {
	return Default().Process(ctx, path)
}

func GenerateUniversalDocumentID(ctx context.Context, path string) (Identifier, error) {
	return Default().GenerateUniversalDocumentID(ctx, path)
}

func GenerateInvoiceID(f InvoiceFields) (Identifier, error) {
	return Default().GenerateInvoiceID(f)
}

func GenerateReceiptID(f ReceiptFields) (Identifier, error) {
	return Default().GenerateReceiptID(f)
}

func GenerateContractID(f ContractFields) (Identifier, error) {
	return Default().GenerateContractID(f)
}

func GenerateCorrectionID(f CorrectionFields) (Identifier, error) {
	return Default().GenerateCorrectionID(f)
}

func GenerateGenericID(f GenericFields) (Identifier, error) {
	return Default().GenerateGenericID(f)
}

func VerifyDocumentID(ctx context.Context, path, id string) (bool, error) {
	return Default().VerifyDocumentID(ctx, path, id)
}

func VerifyUniversalDocumentID(ctx context.Context, path, id string) (bool, error) {
	return Default().VerifyUniversalDocumentID(ctx, path, id)
}

func CompareDocuments(ctx context.Context, a, b string) (Comparison, error) {
	return Default().CompareDocuments(ctx, a, b)
}

func CompareUniversalDocuments(ctx context.Context, a, b string) (Comparison, error) {
	return Default().CompareUniversalDocuments(ctx, a, b)
}
