package render

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/district-lens/internal/district"
	"github.com/sells-group/district-lens/internal/tiger"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Districts"

var xlsxHeader = []string{"GEOID", "STATEFP", "State", "Name", "ALAND", "AWATER", "land_ratio"}

// WriteXLSX writes the table's attribute columns as a single-sheet workbook.
func WriteXLSX(w io.Writer, t *district.Table) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "render: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range xlsxHeader {
		header.AddCell().SetString(h)
	}

	for _, r := range t.Records() {
		abbr, _ := tiger.AbbrFromFIPS(r.StateFP)
		row := sheet.AddRow()
		row.AddCell().SetString(r.GEOID)
		row.AddCell().SetString(r.StateFP)
		row.AddCell().SetString(abbr)
		row.AddCell().SetString(r.Attributes["NAMELSAD"])
		row.AddCell().SetFloat(r.ALand)
		row.AddCell().SetFloat(r.AWater)
		row.AddCell().SetFloat(r.LandRatio)
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "render: write xlsx")
	}
	return nil
}
