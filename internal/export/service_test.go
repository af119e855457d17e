package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/docid/constants"
	"github.com/joseph-ayodele/docid/internal/batch"
	"github.com/joseph-ayodele/docid/internal/identity"
	"github.com/joseph-ayodele/docid/internal/pipeline"
)

func TestWriteBatchXLSX(t *testing.T) {
	const id = "DOC-FV-0123456789ABCDEF"
	res := pipeline.Result{
		ID:     identity.MustParse(id),
		Path:   constants.PathBusiness,
		Class:  constants.ClassInvoice,
		Format: constants.FormatPDF,
		Size:   2048,
	}
	rep := batch.Group([]batch.Item{
		{File: "/in/a.pdf", Result: res},
		{File: "/in/b.pdf", Result: res},
		{File: "/in/c.txt", Err: "extraction failed"},
	})

	data, err := NewService(nil).WriteBatchXLSX(rep)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetDocuments, SheetDuplicates}, f.GetSheetList())

	rows, err := f.GetRows(SheetDocuments)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Identifier", rows[0][1])
	require.GreaterOrEqual(t, len(rows[1]), 7)
	assert.Equal(t, []string{"/in/a.pdf", id, "invoice", "BUSINESS", "pdf", "2.0 kB", "2048"}, rows[1][:7])
	assert.Equal(t, "/in/c.txt", rows[3][0])
	assert.Equal(t, "extraction failed", rows[3][len(rows[3])-1])

	rows, err = f.GetRows(SheetDuplicates)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, id, rows[1][0])
	assert.Equal(t, "2", rows[1][1])
	assert.Equal(t, []string{"/in/a.pdf", "/in/b.pdf"}, strings.Split(rows[1][2], "\n"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcd", 3))
	assert.Equal(t, "a", truncate("abcd", 1))
}
