package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docid/internal/batch"
	"github.com/joseph-ayodele/docid/internal/identity"
	"github.com/joseph-ayodele/docid/internal/testutil"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("DOCID_CONFIG", "")
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

var invoiceID = "DOC-FV-" + identity.Digest(testutil.InvoiceCanonical)

func TestRun_Usage(t *testing.T) {
	code, _, stderr := runCLI(t)
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "usage: docid")

	code, _, stderr = runCLI(t, "nope")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, `unknown command "nope"`)

	code, _, _ = runCLI(t, "verify", "only-one")
	assert.Equal(t, exitUsage, code)
}

func TestRun_Explicit(t *testing.T) {
	code, out, _ := runCLI(t, "invoice",
		"--nip", "PL 521-301-72-28", "--number", testutil.InvoiceNumber,
		"--date", "15.01.2025", "--amount", "1 230,50 zł")
	require.Equal(t, exitOK, code)
	assert.Equal(t, invoiceID+"\n", out)

	code, out, _ = runCLI(t, "receipt", "--nip", testutil.SellerTaxID, "--date", "2025-01-15", "--amount", "45.99", "--prefix", "acme")
	require.Equal(t, exitOK, code)
	assert.True(t, strings.HasPrefix(out, "ACME-PAR-"))

	code, out, _ = runCLI(t, "contract", "--nip1", testutil.BuyerTaxID, "--nip2", testutil.SellerTaxID, "--date", "2025-03-01")
	require.Equal(t, exitOK, code)
	assert.True(t, strings.HasPrefix(out, "DOC-UMO-"))

	code, _, stderr := runCLI(t, "invoice", "--nip", testutil.SellerTaxID)
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "Error:")
}

func TestRun_IdentifyAndVerify(t *testing.T) {
	dir := t.TempDir()
	txt := writeFile(t, dir, "invoice.txt", testutil.InvoiceText())
	xml := writeFile(t, dir, "invoice.xml", testutil.InvoiceKSeF())

	code, out, _ := runCLI(t, "id", txt)
	require.Equal(t, exitOK, code)
	assert.Equal(t, invoiceID+"\n", out)

	code, out, _ = runCLI(t, "id", "--json", xml)
	require.Equal(t, exitOK, code)
	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, invoiceID, res["id"])
	assert.Equal(t, "invoice", res["class"])
	assert.Equal(t, xml, res["file"])

	code, out, _ = runCLI(t, "verify", xml, invoiceID)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "OK\n", out)

	code, out, _ = runCLI(t, "verify", xml, "DOC-FV-0000000000000000")
	assert.Equal(t, exitMismatch, code)
	assert.Equal(t, "MISMATCH\n", out)

	code, out, _ = runCLI(t, "universal", txt)
	require.Equal(t, exitOK, code)
	assert.True(t, strings.HasPrefix(out, "UNIV-TXT-"))

	code, out, _ = runCLI(t, "compare", txt, xml)
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, `"identical_ids": true`)

	code, _, _ = runCLI(t, "id", filepath.Join(dir, "missing.pdf"))
	assert.Equal(t, exitError, code)
}

func TestRun_FieldsAndExtract(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "fields.json", []byte(`{"type":"invoice","nip":"5213017228","number":"FV/2025/00142","date":"2025-01-15","amount":1230.5}`))
	code, out, _ := runCLI(t, "fields", doc)
	require.Equal(t, exitOK, code)
	assert.Equal(t, invoiceID+"\n", out)

	txt := writeFile(t, dir, "receipt.txt", testutil.ReceiptText())
	code, out, _ = runCLI(t, "extract", txt)
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, `"class": "receipt"`)
}

func TestRun_Batch(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "in/a.txt", testutil.InvoiceText())
	b := writeFile(t, dir, "in/sub/b.xml", testutil.InvoiceXML())
	writeFile(t, dir, "in/.hidden/c.txt", testutil.InvoiceText())
	out := filepath.Join(dir, "report.xlsx")

	code, stdout, _ := runCLI(t, "batch", "--xlsx", out, "--json", filepath.Join(dir, "in"))
	require.Equal(t, exitOK, code)

	var rep batch.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &rep))
	assert.Len(t, rep.Items, 2)
	assert.Equal(t, []string{a, b}, rep.Duplicates[invoiceID])

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
