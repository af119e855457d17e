// Package testutil builds in-memory documents for tests.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

// Canonical values of the sample invoice.
const (
	SellerTaxID   = "5213017228"
	BuyerTaxID    = "1234563218"
	InvoiceNumber = "FV/2025/00142"
	IssueDate     = "2025-01-15"
	GrossAmount   = "1230.50"
)

// InvoiceCanonical is the canonical string of every sample invoice rendition.
const InvoiceCanonical = SellerTaxID + "|" + InvoiceNumber + "|" + IssueDate + "|" + GrossAmount

var InvoiceLines = []string{
	"FAKTURA VAT nr FV/2025/00142",
	"Data wystawienia: 15.01.2025",
	"Sprzedawca: ACME Sp. z o.o.",
	"NIP sprzedawcy: 521-301-72-28",
	"Nabywca: Klient S.A.",
	"NIP nabywcy: 123-456-32-18",
	"Razem netto: 1 000,41 PLN",
	"Razem brutto: 1 230,50 PLN",
}

var ReceiptLines = []string{
	"SKLEP SPOZYWCZY ACME",
	"NIP 521-301-72-28",
	"PARAGON FISKALNY nr 0042",
	"Data sprzedaży: 2025-01-15",
	"SUMA PLN 45,99",
	"Kasa nr 3",
}

var ContractLines = []string{
	"UMOWA nr 12/2025",
	"zawarta w dniu 1 marca 2025 r. pomiędzy:",
	"ACME Sp. z o.o., NIP 521-301-72-28",
	"a",
	"Klient S.A., NIP 123-456-32-18",
}

func join(lines []string) []byte {
	var b bytes.Buffer
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.Bytes()
}

func InvoiceText() []byte  { return join(InvoiceLines) }
func ReceiptText() []byte  { return join(ReceiptLines) }
func ContractText() []byte { return join(ContractLines) }

// InvoiceXML is a generic XML rendition of the sample invoice.
func InvoiceXML() []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<Invoice>
  <InvoiceNumber>FV/2025/00142</InvoiceNumber>
  <IssueDate>2025-01-15</IssueDate>
  <Seller>
    <Name>ACME Sp. z o.o.</Name>
    <NIP>PL5213017228</NIP>
  </Seller>
  <Buyer>
    <Name>Klient S.A.</Name>
    <NIP>1234563218</NIP>
  </Buyer>
  <TotalGrossAmount>1230.50</TotalGrossAmount>
</Invoice>
`)
}

// InvoiceKSeF is the sample invoice in the KSeF FA layout.
func InvoiceKSeF() []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<Faktura xmlns="http://crd.gov.pl/wzor/2023/06/29/12648/">
  <Podmiot1>
    <DaneIdentyfikacyjne>
      <NIP>5213017228</NIP>
      <Nazwa>ACME Sp. z o.o.</Nazwa>
    </DaneIdentyfikacyjne>
  </Podmiot1>
  <Podmiot2>
    <DaneIdentyfikacyjne>
      <NIP>1234563218</NIP>
      <Nazwa>Klient S.A.</Nazwa>
    </DaneIdentyfikacyjne>
  </Podmiot2>
  <Fa>
    <KodWaluty>PLN</KodWaluty>
    <P_1>2025-01-15</P_1>
    <P_2>FV/2025/00142</P_2>
    <P_15>1230.50</P_15>
  </Fa>
</Faktura>
`)
}

// InvoiceHTML marks the fields up with data-field attributes and itemprop.
func InvoiceHTML() []byte {
	return []byte(`<!DOCTYPE html>
<html>
<head><title>Faktura</title><style>.x{color:red}</style></head>
<body>
  <h1>Faktura VAT nr <span data-field="invoice_number">FV/2025/00142</span></h1>
  <p>Data wystawienia: <time itemprop="issueDate" datetime="2025-01-15">15 stycznia 2025</time></p>
  <div class="seller">Sprzedawca: ACME Sp. z o.o., NIP <span data-field="seller_tax_id">521-301-72-28</span></div>
  <div class="buyer">Nabywca: Klient S.A., NIP <span data-field="buyer_tax_id">123-456-32-18</span></div>
  <table><tr><td>Razem brutto</td><td data-field="gross_amount">1 230,50 zł</td></tr></table>
  <script>var total = 999;</script>
</body>
</html>
`)
}

// PDF renders lines as a single-page text PDF. Core fonts cover cp1252 only.
func PDF(t testing.TB, lines []string) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 11)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, l := range lines {
		pdf.CellFormat(0, 7, tr(l), "", 1, "L", false, 0, "")
	}
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

// BlankPDF has one page with vector graphics and no text.
func BlankPDF(t testing.TB) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFillColor(40, 40, 40)
	pdf.Rect(20, 20, 100, 60, "F")
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

// Bitmap draws a deterministic pattern; seed changes the pattern.
func Bitmap(w, h, seed int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8((x*7 + y*13 + seed*31) % 256)
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: uint8((x + seed) * 3 % 256), B: uint8(y * 5 % 256), A: 255})
		}
	}
	return img
}

// PNG encodes img at the given compression level.
func PNG(t testing.TB, img image.Image, level png.CompressionLevel) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: level}
	require.NoError(t, enc.Encode(&buf, img))
	return buf.Bytes()
}

func BMP(t testing.TB, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, img))
	return buf.Bytes()
}

// MemFs returns an in-memory filesystem holding files.
func MemFs(t testing.TB, files map[string][]byte) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, data := range files {
		require.NoError(t, afero.WriteFile(fs, name, data, 0o644))
	}
	return fs
}
