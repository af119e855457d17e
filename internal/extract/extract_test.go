package extract

import (
	"context"
	"errors"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docid/constants"
	"github.com/joseph-ayodele/docid/internal/common"
	"github.com/joseph-ayodele/docid/internal/testutil"
)

type fakeRecognizer struct {
	text  string
	err   error
	calls int
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ []byte, _ constants.SourceFormat) (Recognition, error) {
	f.calls++
	if f.err != nil {
		return Recognition{Warnings: []string{"engine unhappy"}}, f.err
	}
	return Recognition{Text: f.text, Confidence: 0.8}, nil
}

type fakeRenderer struct {
	png   []byte
	pages []int
}

func (f *fakeRenderer) RenderPage(_ context.Context, _ []byte, page int) ([]byte, error) {
	f.pages = append(f.pages, page)
	return f.png, nil
}

func newTestExtractor(t *testing.T, files map[string][]byte, opts ...Option) *Extractor {
	t.Helper()
	opts = append([]Option{WithFs(testutil.MemFs(t, files))}, opts...)
	return New(nil, opts...)
}

func TestExtract_Text(t *testing.T) {
	e := newTestExtractor(t, map[string][]byte{"/in/invoice.txt": testutil.InvoiceText()})

	raw, err := e.Extract(context.Background(), "/in/invoice.txt")
	require.NoError(t, err)

	assert.Equal(t, constants.FormatText, raw.Format)
	assert.Equal(t, MethodText, raw.Method)
	assert.Contains(t, raw.Text, "FAKTURA VAT nr FV/2025/00142")
	assert.Len(t, raw.Digest, 64)
	assert.Equal(t, int64(len(testutil.InvoiceText())), raw.Size)
	assert.Nil(t, raw.Data)
}

func TestExtract_TextWindows1250(t *testing.T) {
	e := newTestExtractor(t, map[string][]byte{"/in/r.txt": []byte("Data sprzeda\xbfy: 2025-01-15\n")})

	raw, err := e.Extract(context.Background(), "/in/r.txt")
	require.NoError(t, err)
	assert.Equal(t, "Data sprzedaży: 2025-01-15", raw.Text)
}

func TestExtract_XML(t *testing.T) {
	e := newTestExtractor(t, map[string][]byte{
		"/in/invoice.xml": testutil.InvoiceXML(),
		"/in/ksef.xml":    testutil.InvoiceKSeF(),
	})

	raw, err := e.Extract(context.Background(), "/in/invoice.xml")
	require.NoError(t, err)
	assert.Equal(t, MethodMarkup, raw.Method)
	assert.Equal(t, map[string]string{
		HintInvoiceNumber: "FV/2025/00142",
		HintIssueDate:     "2025-01-15",
		HintSellerTaxID:   "PL5213017228",
		HintBuyerTaxID:    "1234563218",
		HintGrossAmount:   "1230.50",
		HintDocumentType:  "Invoice",
	}, raw.Structured)
	assert.Contains(t, raw.Text, "ACME Sp. z o.o.")

	raw, err = e.Extract(context.Background(), "/in/ksef.xml")
	require.NoError(t, err)
	assert.Equal(t, "5213017228", raw.Structured[HintSellerTaxID])
	assert.Equal(t, "1234563218", raw.Structured[HintBuyerTaxID])
	assert.Equal(t, "2025-01-15", raw.Structured[HintIssueDate])
	assert.Equal(t, "FV/2025/00142", raw.Structured[HintInvoiceNumber])
	assert.Equal(t, "1230.50", raw.Structured[HintGrossAmount])
	assert.Equal(t, "Faktura", raw.Structured[HintDocumentType])
}

func TestExtract_MalformedXML(t *testing.T) {
	e := newTestExtractor(t, map[string][]byte{"/in/bad.xml": []byte("<Invoice><Number>1</Number>")})

	_, err := e.Extract(context.Background(), "/in/bad.xml")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtraction)
}

func TestExtract_HTML(t *testing.T) {
	e := newTestExtractor(t, map[string][]byte{"/in/invoice.html": testutil.InvoiceHTML()})

	raw, err := e.Extract(context.Background(), "/in/invoice.html")
	require.NoError(t, err)
	assert.Equal(t, constants.FormatHTML, raw.Format)
	assert.Equal(t, "FV/2025/00142", raw.Structured[HintInvoiceNumber])
	assert.Equal(t, "521-301-72-28", raw.Structured[HintSellerTaxID])
	assert.Equal(t, "123-456-32-18", raw.Structured[HintBuyerTaxID])
	assert.Equal(t, "15 stycznia 2025", raw.Structured[HintIssueDate])
	assert.Equal(t, "1 230,50 zł", raw.Structured[HintGrossAmount])

	assert.Contains(t, raw.Text, "Razem brutto")
	assert.NotContains(t, raw.Text, "var total")
	assert.NotContains(t, raw.Text, "color:red")
}

func TestExtract_PDFText(t *testing.T) {
	rec := &fakeRecognizer{text: "never used"}
	e := newTestExtractor(t, map[string][]byte{"/in/invoice.pdf": testutil.PDF(t, testutil.InvoiceLines)}, WithRecognizer(rec))

	raw, err := e.Extract(context.Background(), "/in/invoice.pdf")
	require.NoError(t, err)
	assert.Equal(t, constants.FormatPDF, raw.Format)
	assert.Equal(t, MethodPDFText, raw.Method)
	assert.Equal(t, 1, raw.Pages)
	assert.Contains(t, raw.Text, "FAKTURA VAT nr FV/2025/00142")
	assert.Contains(t, raw.Text, "Razem brutto: 1 230,50 PLN")
	assert.Zero(t, rec.calls)
	assert.Nil(t, raw.Raster)
}

func TestExtract_PDFWithoutText(t *testing.T) {
	page := testutil.PNG(t, testutil.Bitmap(32, 32, 1), png.DefaultCompression)
	files := map[string][]byte{"/in/scan.pdf": testutil.BlankPDF(t)}

	t.Run("no collaborators", func(t *testing.T) {
		raw, err := newTestExtractor(t, files).Extract(context.Background(), "/in/scan.pdf")
		require.NoError(t, err)
		assert.Equal(t, MethodNone, raw.Method)
		assert.Empty(t, raw.Text)
		assert.Nil(t, raw.Raster)
	})

	t.Run("renderer only", func(t *testing.T) {
		r := &fakeRenderer{png: page}
		raw, err := newTestExtractor(t, files, WithPageRenderer(r)).Extract(context.Background(), "/in/scan.pdf")
		require.NoError(t, err)
		assert.Equal(t, MethodNone, raw.Method)
		assert.Equal(t, page, raw.Raster)
		assert.Equal(t, []int{1}, r.pages)
	})

	t.Run("renderer and recognizer", func(t *testing.T) {
		r := &fakeRenderer{png: page}
		rec := &fakeRecognizer{text: "PARAGON FISKALNY"}
		raw, err := newTestExtractor(t, files, WithPageRenderer(r), WithRecognizer(rec)).Extract(context.Background(), "/in/scan.pdf")
		require.NoError(t, err)
		assert.Equal(t, MethodPDFOCR, raw.Method)
		assert.Equal(t, "PARAGON FISKALNY", raw.Text)
		assert.InDelta(t, 0.8, raw.Confidence, 0.001)
		assert.Equal(t, page, raw.Raster)
	})
}

func TestExtract_Image(t *testing.T) {
	img := testutil.PNG(t, testutil.Bitmap(16, 16, 3), png.BestSpeed)
	files := map[string][]byte{"/in/scan.png": img, "/in/scan": img}

	raw, err := newTestExtractor(t, files).Extract(context.Background(), "/in/scan.png")
	require.NoError(t, err)
	assert.Equal(t, constants.FormatPNG, raw.Format)
	assert.Equal(t, MethodNone, raw.Method)
	assert.Equal(t, img, raw.Data)

	// no extension: detected from the signature
	raw, err = newTestExtractor(t, files).Extract(context.Background(), "/in/scan")
	require.NoError(t, err)
	assert.Equal(t, constants.FormatPNG, raw.Format)

	rec := &fakeRecognizer{text: "  Paragon fiskalny  "}
	raw, err = newTestExtractor(t, files, WithRecognizer(rec)).Extract(context.Background(), "/in/scan.png")
	require.NoError(t, err)
	assert.Equal(t, MethodImageOCR, raw.Method)
	assert.Equal(t, "Paragon fiskalny", raw.Text)

	rec = &fakeRecognizer{err: errors.New("tesseract crashed")}
	_, err = newTestExtractor(t, files, WithRecognizer(rec)).Extract(context.Background(), "/in/scan.png")
	assert.ErrorIs(t, err, common.ErrExtraction)
}

func TestExtract_Errors(t *testing.T) {
	e := newTestExtractor(t, map[string][]byte{
		"/in/archive.docx": []byte("PK\x03\x04\x14\x00\x06\x00\x08\x00\x00\x00!\x00"),
	})

	_, err := e.Extract(context.Background(), "/in/archive.docx")
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)

	_, err = e.Extract(context.Background(), "/in/missing.pdf")
	assert.ErrorIs(t, err, common.ErrExtraction)

	_, err = e.ExtractBytes(context.Background(), "broken.pdf", []byte("%PDF-1.4 garbage"))
	assert.ErrorIs(t, err, common.ErrExtraction)
}

func TestSniffFormat(t *testing.T) {
	tests := []struct {
		name string
		data string
		want constants.SourceFormat
		ok   bool
	}{
		{"pdf", "%PDF-1.7\n", constants.FormatPDF, true},
		{"xml", "\xef\xbb\xbf  <?xml version=\"1.0\"?><a/>", constants.FormatXML, true},
		{"xhtml", "<?xml version=\"1.0\"?><html><body/></html>", constants.FormatHTML, true},
		{"html", "<!DOCTYPE html><html></html>", constants.FormatHTML, true},
		{"tiff", "II*\x00\x08\x00\x00\x00", constants.FormatTIFF, true},
		{"text", "Paragon fiskalny\n", constants.FormatText, true},
		{"zip", "PK\x03\x04", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := sniffFormat([]byte(tt.data))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTextFromContentStream(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   string
	}{
		{"lines", "BT /F1 12 Tf 72 712 Td (Hello) Tj ET BT 72 700 Td [(Wor) -300 (ld)] TJ ET", "Hello\nWor ld"},
		{"kerning", "BT [(Fak) -20 (tura)] TJ ET", "Faktura"},
		{"escapes", `BT (a\(b\)c \101) Tj ET`, "a(b)c A"},
		{"nested", "BT (x (y) z) Tj ET", "x (y) z"},
		{"hex", "BT <48656C6C6F> Tj ET", "Hello"},
		{"utf16", "BT <FEFF017C> Tj ET", "ż"},
		{"dict skipped", "/Span << /MCID 0 >> BDC BT (NIP) Tj ET EMC", "NIP"},
		{"next line", "BT 14 TL (one) Tj T* (two) Tj ET", "one\ntwo"},
		{"quote", "BT (one) Tj (two) ' ET", "one\ntwo"},
		{"graphics only", "q 0 0 100 100 re f Q", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, textFromContentStream([]byte(tt.stream)))
		})
	}
}

func TestUsableText(t *testing.T) {
	assert.True(t, usableText("Faktura 1"))
	assert.False(t, usableText(""))
	assert.False(t, usableText(" - . "))
	assert.False(t, usableText("\uE001\uE002\uE003a"))
}
