package rubric

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Variable is one scored transparency dimension (V1..V6).
// A nil Score means the variable was not found or not evaluated.
type Variable struct {
	Score         *int   `json:"score"`
	Confidence    string `json:"confidence"`
	ExplanationEN string `json:"explanation_en"`
	ExplanationTR string `json:"explanation_tr"`
	Quote         string `json:"quote,omitempty"`
	Location      string `json:"location,omitempty"`
}

// Result is the coded outcome of one analysis call.
type Result struct {
	FoundDisclosure   bool      `json:"found_genai_disclosure"`
	MessageEN         string    `json:"message_en,omitempty"`
	MessageTR         string    `json:"message_tr,omitempty"`
	V1                *Variable `json:"v1,omitempty"`
	V2                *Variable `json:"v2,omitempty"`
	V3                *Variable `json:"v3,omitempty"`
	V4                *Variable `json:"v4,omitempty"`
	V5                *Variable `json:"v5,omitempty"`
	V6                *Variable `json:"v6,omitempty"`
	TotalScore        *int      `json:"total_score"`
	Category          string    `json:"category"`
	OverallConfidence string    `json:"overall_confidence"`
	Warnings          []string  `json:"warnings,omitempty"`
}

// Variable returns the variable stored under key ("v1".."v6"), or nil.
func (r *Result) Variable(key string) *Variable {
	switch strings.ToLower(key) {
	case "v1":
		return r.V1
	case "v2":
		return r.V2
	case "v3":
		return r.V3
	case "v4":
		return r.V4
	case "v5":
		return r.V5
	case "v6":
		return r.V6
	}
	return nil
}

// Scores returns the six scores in V1..V6 order; nil entries are absent.
func (r *Result) Scores() [6]*int {
	var out [6]*int
	for i, spec := range Variables {
		if v := r.Variable(spec.Key); v != nil {
			out[i] = v.Score
		}
	}
	return out
}

// Provider models sometimes emit 3.0 for an integer; accept any integral number.
func (v *Variable) UnmarshalJSON(data []byte) error {
	type plain Variable
	var aux struct {
		plain
		Score *float64 `json:"score"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*v = Variable(aux.plain)
	score, err := integral(aux.Score)
	if err != nil {
		return fmt.Errorf("score: %w", err)
	}
	v.Score = score
	return nil
}

func (r *Result) UnmarshalJSON(data []byte) error {
	type plain Result
	var aux struct {
		plain
		TotalScore *float64 `json:"total_score"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Result(aux.plain)
	total, err := integral(aux.TotalScore)
	if err != nil {
		return fmt.Errorf("total_score: %w", err)
	}
	r.TotalScore = total
	return nil
}

func integral(f *float64) (*int, error) {
	if f == nil {
		return nil, nil
	}
	if math.Trunc(*f) != *f {
		return nil, fmt.Errorf("%v is not an integer", *f)
	}
	n := int(*f)
	return &n, nil
}

// IntPtr is a small helper for building results in code and tests.
func IntPtr(n int) *int { return &n }
