package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/quote-intake/internal/model"
)

func TestWriteXLSX(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	sub := model.Finalize(model.Record{
		model.FieldInsured:   "Acme Ltd",
		model.FieldYearBuilt: int64(2005),
		model.FieldArea:      1200.5,
		model.FieldStories:   "two",
	}, "acme.pdf", at)
	sub.ID = "sub-1"

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, []model.Submission{*sub}))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	sheet, ok := f.Sheet[SheetName]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 2)

	header := sheet.Rows[0].Cells
	assert.Equal(t, "id", header[0].String())
	assert.Equal(t, "broker", header[1].String())
	assert.Len(t, header, len(model.Fields())+1)

	idx := map[string]int{}
	for i, c := range header {
		idx[c.String()] = i
	}
	row := sheet.Rows[1].Cells
	assert.Equal(t, "sub-1", row[0].String())
	assert.Equal(t, "Acme Ltd", row[idx["insured"]].String())
	assert.Equal(t, "2005", row[idx["year_built"]].String())
	assert.Equal(t, "1200.5", row[idx["area"]].String())
	assert.Equal(t, "two", row[idx["stories"]].String())
	assert.Equal(t, "acme.pdf", row[idx["source_file"]].String())
	assert.Equal(t, "", row[idx["broker"]].String())
}

func TestWriteXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	assert.Len(t, f.Sheet[SheetName].Rows, 1)
}
