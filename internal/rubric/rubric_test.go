package rubric

import (
	"errors"
	"strings"
	"testing"
)

const fullResponse = `{
  "found_genai_disclosure": true,
  "v1": {"score": 3, "confidence": "high", "explanation_en": "Dedicated declaration section.", "explanation_tr": "Ayrı beyan bölümü.", "quote": "During the preparation of this work the authors used ChatGPT.", "location": "Page 12, Declaration"},
  "v2": {"score": 2, "confidence": "HIGH", "explanation_en": "Brand only.", "explanation_tr": "Sadece marka."},
  "v3": {"score": 1.0, "confidence": "MEDIUM", "explanation_en": "Language editing.", "explanation_tr": "Dil düzenleme."},
  "v4": {"score": 0, "confidence": "HIGH", "explanation_en": "No prompts.", "explanation_tr": "İstem yok."},
  "v5": {"score": 2, "confidence": "HIGH", "explanation_en": "Authors reviewed.", "explanation_tr": "Yazarlar inceledi."},
  "v6": {"score": 0, "confidence": "LOW", "explanation_en": "None.", "explanation_tr": "Yok."},
  "total_score": 8,
  "category": "Low (2-12)",
  "overall_confidence": "high",
  "warnings": ["V4=0 is expected for language editing only."]
}`

func TestParseValidResult(t *testing.T) {
	res, err := Parse([]byte(fullResponse))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !res.FoundDisclosure {
		t.Fatalf("expected disclosure found")
	}
	if res.V3 == nil || res.V3.Score == nil || *res.V3.Score != 1 {
		t.Fatalf("V3 score = %+v", res.V3)
	}
	if res.TotalScore == nil || *res.TotalScore != 8 {
		t.Fatalf("TotalScore = %v", res.TotalScore)
	}
	if res.Category != "Low" {
		t.Fatalf("Category = %q", res.Category)
	}
	if res.OverallConfidence != "HIGH" || res.V1.Confidence != "HIGH" {
		t.Fatalf("confidence not normalized: %q %q", res.OverallConfidence, res.V1.Confidence)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
}

func TestParseRecomputesDisagreeingTotal(t *testing.T) {
	raw := strings.Replace(fullResponse, `"total_score": 8`, `"total_score": 14`, 1)
	raw = strings.Replace(raw, `"category": "Low (2-12)"`, `"category": "Moderate"`, 1)

	res, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if *res.TotalScore != 8 || res.Category != "Low" {
		t.Fatalf("got total=%d category=%q", *res.TotalScore, res.Category)
	}
	if len(res.Warnings) != 3 {
		t.Fatalf("expected two recompute warnings appended, got %v", res.Warnings)
	}
}

func TestParseNoDisclosure(t *testing.T) {
	raw := `{"found_genai_disclosure": false, "message_en": "No GenAI statement found.",
	  "v1": {"score": null, "confidence": "HIGH", "explanation_en": "", "explanation_tr": ""},
	  "total_score": null, "category": "N/A", "overall_confidence": "HIGH", "warnings": null}`
	res, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.TotalScore != nil {
		t.Fatalf("expected nil total, got %d", *res.TotalScore)
	}
	if res.Category != CategoryNA {
		t.Fatalf("Category = %q", res.Category)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings %v", res.Warnings)
	}
	if res.MessageEN != "No GenAI statement found." {
		t.Fatalf("MessageEN = %q", res.MessageEN)
	}
}

func TestParseRejectsInvalidPayloads(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "not json", raw: `Sure! Here is the coding`, want: "not valid JSON"},
		{name: "array", raw: `[1,2]`, want: "not a JSON object"},
		{name: "missing flag", raw: `{"total_score": 3}`, want: "found_genai_disclosure"},
		{name: "v1 below range", raw: `{"found_genai_disclosure": true, "v1": {"score": 0}}`, want: "/v1/score"},
		{name: "v3 above range", raw: `{"found_genai_disclosure": true, "v3": {"score": 6}}`, want: "/v3/score"},
		{name: "fractional score", raw: `{"found_genai_disclosure": true, "v2": {"score": 2.5}}`, want: "/v2/score"},
		{name: "string score", raw: `{"found_genai_disclosure": true, "v4": {"score": "3"}}`, want: "/v4/score"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !strings.Contains(verr.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", verr.Error(), tt.want)
			}
		})
	}
}

func TestCategoryFor(t *testing.T) {
	tests := []struct {
		total *int
		want  string
	}{
		{total: nil, want: "N/A"},
		{total: IntPtr(1), want: "N/A"},
		{total: IntPtr(2), want: "Low"},
		{total: IntPtr(12), want: "Low"},
		{total: IntPtr(13), want: "Moderate"},
		{total: IntPtr(21), want: "Moderate"},
		{total: IntPtr(22), want: "High"},
		{total: IntPtr(30), want: "High"},
	}
	for _, tt := range tests {
		if got := CategoryFor(tt.total); got != tt.want {
			t.Fatalf("CategoryFor(%v) = %q, want %q", formatTotal(tt.total), got, tt.want)
		}
	}
}

func TestTotalSkipsNullScores(t *testing.T) {
	res := Result{
		V1: &Variable{Score: IntPtr(4)},
		V2: &Variable{Score: IntPtr(3)},
		V3: &Variable{Score: nil},
		V5: &Variable{Score: IntPtr(2)},
	}
	total := Total(&res)
	if total == nil || *total != 9 {
		t.Fatalf("Total = %v", total)
	}
}

func TestVariablesRanges(t *testing.T) {
	want := map[string][2]int{"v1": {1, 5}, "v2": {1, 5}, "v3": {0, 5}, "v4": {0, 5}, "v5": {0, 5}, "v6": {0, 5}}
	for key, r := range want {
		spec, ok := SpecFor(key)
		if !ok {
			t.Fatalf("missing spec %s", key)
		}
		if spec.Min != r[0] || spec.Max != r[1] {
			t.Fatalf("%s range = %d..%d", key, spec.Min, spec.Max)
		}
		if spec.Code != strings.ToUpper(key) {
			t.Fatalf("%s code = %q", key, spec.Code)
		}
	}
}
