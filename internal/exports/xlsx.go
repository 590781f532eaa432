package exports

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"transparency-backend/internal/rubric"
)

const (
	codingSheet   = "Coding"
	evidenceSheet = "Evidence"
)

// XLSX writes the coding row plus a per-variable evidence sheet.
func XLSX(s Subject) (File, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", codingSheet); err != nil {
		return File{}, err
	}
	for i, h := range CSVHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(codingSheet, cell, h)
	}
	for i, v := range Row(s) {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		// scores and total as numbers
		if n, err := strconv.Atoi(v); err == nil && i > 0 && i < len(CSVHeader)-1 {
			_ = f.SetCellValue(codingSheet, cell, n)
			continue
		}
		_ = f.SetCellValue(codingSheet, cell, v)
	}
	_ = f.SetColWidth(codingSheet, "A", "A", 40)
	_ = f.SetColWidth(codingSheet, "I", "I", 14)

	if _, err := f.NewSheet(evidenceSheet); err != nil {
		return File{}, err
	}
	headers := []string{"Variable", "Name", "Score", "Confidence", "Explanation (EN)", "Explanation (TR)", "Quote", "Location"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(evidenceSheet, cell, h)
	}
	row := 2
	for _, spec := range rubric.Variables {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(evidenceSheet, cell, v)
		}
		write(1, spec.Code)
		write(2, spec.Name)
		if v := s.Result.Variable(spec.Key); v != nil {
			if v.Score != nil {
				write(3, *v.Score)
			}
			write(4, v.Confidence)
			write(5, v.ExplanationEN)
			write(6, v.ExplanationTR)
			write(7, v.Quote)
			write(8, v.Location)
		}
		row++
	}
	_ = f.SetColWidth(evidenceSheet, "B", "B", 26)
	_ = f.SetColWidth(evidenceSheet, "E", "G", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return File{}, fmt.Errorf("xlsx write: %w", err)
	}
	return File{
		Name:        "coding_" + Stem(s.FileName) + ".xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        buf.Bytes(),
	}, nil
}
