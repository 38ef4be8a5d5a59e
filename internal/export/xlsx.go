// Package export writes persisted submissions to spreadsheet files.
package export

import (
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/quote-intake/internal/model"
)

// SheetName is the worksheet submissions are written to.
const SheetName = "Submissions"

// WriteXLSX writes one header row of canonical column names, then one row per
// submission. Unpopulated fields are left blank.
func WriteXLSX(w io.Writer, subs []model.Submission) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	header.AddCell().SetString("id")
	for _, col := range model.Columns() {
		header.AddCell().SetString(col)
	}

	for i := range subs {
		sub := &subs[i]
		row := sheet.AddRow()
		row.AddCell().SetString(sub.ID)
		for _, field := range model.Fields() {
			v := sub.Values[field]
			switch field {
			case model.FieldSourceFile:
				v = sub.SourceFile
			case model.FieldSubmittedAt:
				v = sub.SubmittedAt
			}
			setCell(row.AddCell(), v)
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write workbook")
	}
	return nil
}

func setCell(c *xlsx.Cell, v any) {
	switch x := v.(type) {
	case nil:
	case string:
		c.SetString(x)
	case int64:
		c.SetInt64(x)
	case int:
		c.SetInt(x)
	case float64:
		c.SetFloat(x)
	case bool:
		c.SetBool(x)
	case time.Time:
		c.SetDateTime(x)
	default:
		c.SetValue(x)
	}
}
