package exports

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"transparency-backend/internal/rubric"
	"transparency-backend/internal/shared/metrics"
)

var (
	ErrNoResult      = errors.New("no analysis result to export")
	ErrUnknownFormat = errors.New("unknown export format")
)

type Format string

const (
	FormatJSON    Format = "json"
	FormatCSV     Format = "csv"
	FormatHTML    Format = "html"
	FormatXLSX    Format = "xlsx"
	FormatSummary Format = "summary"
)

// Subject is the coded document being exported.
type Subject struct {
	FileName string
	Model    string
	Result   *rubric.Result
	Date     time.Time
}

// File is a rendered export.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Render produces the export for format.
func Render(format Format, s Subject) (File, error) {
	if s.Result == nil {
		return File{}, ErrNoResult
	}
	if s.Date.IsZero() {
		s.Date = time.Now()
	}

	var (
		f   File
		err error
	)
	switch format {
	case FormatJSON:
		f, err = JSON(s)
	case FormatCSV:
		f, err = CSV(s)
	case FormatHTML:
		f, err = HTML(s)
	case FormatXLSX:
		f, err = XLSX(s)
	case FormatSummary:
		f = File{Name: "summary.txt", ContentType: "text/plain; charset=utf-8", Data: []byte(Summary(s))}
	default:
		return File{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return File{}, err
	}
	metrics.IncExport(string(format))
	return f, nil
}

// Stem is the file name with its ".pdf" suffix removed.
func Stem(fileName string) string {
	return strings.Replace(fileName, ".pdf", "", 1)
}

type jsonExport struct {
	File    string         `json:"file"`
	Date    string         `json:"date"`
	Model   string         `json:"model"`
	Results *rubric.Result `json:"results"`
}

func JSON(s Subject) (File, error) {
	data, err := json.MarshalIndent(jsonExport{
		File:    s.FileName,
		Date:    s.Date.UTC().Format(time.RFC3339),
		Model:   s.Model,
		Results: s.Result,
	}, "", "  ")
	if err != nil {
		return File{}, err
	}
	return File{Name: "coding_" + Stem(s.FileName) + ".json", ContentType: "application/json", Data: data}, nil
}

// CSVHeader is the header row of the flat coding sheet.
var CSVHeader = []string{"File", "V1", "V2", "V3", "V4", "V5", "V6", "Total", "Category"}

// Row is the flat coding row shared by the CSV and XLSX exports.
func Row(s Subject) []string {
	row := make([]string, 0, len(CSVHeader))
	row = append(row, s.FileName)
	for _, score := range s.Result.Scores() {
		row = append(row, formatScore(score))
	}
	row = append(row, formatScore(s.Result.TotalScore), s.Result.Category)
	return row
}

func CSV(s Subject) (File, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeader); err != nil {
		return File{}, err
	}
	if err := w.Write(Row(s)); err != nil {
		return File{}, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return File{}, err
	}
	return File{Name: "coding_" + Stem(s.FileName) + ".csv", ContentType: "text/csv", Data: buf.Bytes()}, nil
}

// Summary is the short plain-text block offered for the clipboard.
func Summary(s Subject) string {
	total := "N/A"
	category := ""
	if s.Result != nil {
		total = formatScore(s.Result.TotalScore)
		if total == "" {
			total = "N/A"
		}
		category = s.Result.Category
	}
	return fmt.Sprintf("GenAI Transparency Coding\nFile: %s\nTotal: %s\nCategory: %s", s.FileName, total, category)
}

func formatScore(score *int) string {
	if score == nil {
		return ""
	}
	return strconv.Itoa(*score)
}
