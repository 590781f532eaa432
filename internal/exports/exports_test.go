package exports

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"transparency-backend/internal/rubric"
)

func sampleSubject() Subject {
	v1 := &rubric.Variable{
		Score:         rubric.IntPtr(3),
		Confidence:    "HIGH",
		ExplanationEN: "Declaration section.",
		ExplanationTR: "Beyan bölümü.",
		Quote:         `We used <b>ChatGPT</b> & "friends"`,
	}
	res := &rubric.Result{
		FoundDisclosure:   true,
		V1:                v1,
		V2:                &rubric.Variable{Score: rubric.IntPtr(2), ExplanationEN: "Brand only."},
		V3:                &rubric.Variable{Score: rubric.IntPtr(1)},
		V4:                &rubric.Variable{Score: rubric.IntPtr(0)},
		V5:                &rubric.Variable{Score: rubric.IntPtr(2)},
		V6:                &rubric.Variable{Score: nil},
		TotalScore:        rubric.IntPtr(8),
		Category:          "Low",
		OverallConfidence: "HIGH",
		Warnings:          []string{},
	}
	return Subject{
		FileName: "smith, 2024.pdf",
		Model:    "gemini-2.5-pro",
		Result:   res,
		Date:     time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC),
	}
}

func TestJSONExportRoundTrip(t *testing.T) {
	f, err := Render(FormatJSON, sampleSubject())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if f.Name != "coding_smith, 2024.json" {
		t.Fatalf("name = %q", f.Name)
	}
	var decoded struct {
		File    string        `json:"file"`
		Date    string        `json:"date"`
		Model   string        `json:"model"`
		Results rubric.Result `json:"results"`
	}
	if err := json.Unmarshal(f.Data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.File != "smith, 2024.pdf" || decoded.Model != "gemini-2.5-pro" || decoded.Date != "2026-04-02T09:30:00Z" {
		t.Fatalf("envelope = %+v", decoded)
	}
	if decoded.Results.V1 == nil || *decoded.Results.V1.Score != 3 || decoded.Results.V6.Score != nil {
		t.Fatalf("results = %+v", decoded.Results)
	}
	if *decoded.Results.TotalScore != 8 || decoded.Results.Category != "Low" {
		t.Fatalf("total/category lost: %+v", decoded.Results)
	}
}

func TestCSVExport(t *testing.T) {
	f, err := Render(FormatCSV, sampleSubject())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if f.Name != "coding_smith, 2024.csv" {
		t.Fatalf("name = %q", f.Name)
	}
	records, err := csv.NewReader(bytes.NewReader(f.Data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if strings.Join(records[0], ",") != "File,V1,V2,V3,V4,V5,V6,Total,Category" {
		t.Fatalf("header = %v", records[0])
	}
	want := []string{"smith, 2024.pdf", "3", "2", "1", "0", "2", "", "8", "Low"}
	if strings.Join(records[1], "|") != strings.Join(want, "|") {
		t.Fatalf("row = %v", records[1])
	}
}

func TestHTMLExportEscapesValues(t *testing.T) {
	f, err := Render(FormatHTML, sampleSubject())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if f.Name != "report_smith, 2024.html" {
		t.Fatalf("name = %q", f.Name)
	}
	html := string(f.Data)
	if strings.Contains(html, "<b>ChatGPT</b>") {
		t.Fatalf("quote must be escaped")
	}
	if !strings.Contains(html, "&lt;b&gt;ChatGPT&lt;/b&gt;") {
		t.Fatalf("escaped quote missing")
	}
	for _, want := range []string{`<div class="total">8</div>`, "Low Transparency", "V1. Location: 3", "V6. Limitation: N/F"} {
		if !strings.Contains(html, want) {
			t.Fatalf("report missing %q", want)
		}
	}
}

func TestXLSXExport(t *testing.T) {
	f, err := Render(FormatXLSX, sampleSubject())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	book, err := excelize.OpenReader(bytes.NewReader(f.Data))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer book.Close()

	total, _ := book.GetCellValue(codingSheet, "H2")
	category, _ := book.GetCellValue(codingSheet, "I2")
	if total != "8" || category != "Low" {
		t.Fatalf("coding row total=%q category=%q", total, category)
	}
	code, _ := book.GetCellValue(evidenceSheet, "A7")
	if code != "V6" {
		t.Fatalf("evidence A7 = %q", code)
	}
}

func TestSummary(t *testing.T) {
	s := sampleSubject()
	want := "GenAI Transparency Coding\nFile: smith, 2024.pdf\nTotal: 8\nCategory: Low"
	if got := Summary(s); got != want {
		t.Fatalf("Summary = %q", got)
	}
	s.Result.TotalScore = nil
	s.Result.Category = rubric.CategoryNA
	if got := Summary(s); !strings.Contains(got, "Total: N/A\nCategory: N/A") {
		t.Fatalf("Summary = %q", got)
	}
}

func TestRenderErrors(t *testing.T) {
	if _, err := Render(FormatCSV, Subject{FileName: "a.pdf"}); !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
	if _, err := Render("pdf", sampleSubject()); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}
