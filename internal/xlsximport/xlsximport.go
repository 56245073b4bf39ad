// Package xlsximport serializes a fiche workbook into the delimited text
// form the extraction service ingests: one "FEUILLE: <name>" block per
// sheet followed by its rows as CSV lines.
package xlsximport

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Serialize reads every sheet of an xlsx workbook and renders the combined
// text. Sheets that fail to read are skipped rather than aborting the
// import: a decorative chart tab must not block the data tab next to it.
func Serialize(r io.Reader) (string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		b.WriteString("FEUILLE: " + name + "\n")
		b.WriteString(rowsToCSV(rows))
		b.WriteString("\n\n")
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("workbook has no readable sheets")
	}
	return b.String(), nil
}

func rowsToCSV(rows [][]string) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range rows {
		_ = w.Write(row)
	}
	w.Flush()
	return buf.String()
}
