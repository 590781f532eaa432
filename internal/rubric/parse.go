package rubric

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationError is returned when a provider payload does not match the
// result contract. No partial result accompanies it.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return "invalid analysis result"
	}
	return "invalid analysis result: " + strings.Join(e.Problems, "; ")
}

// Parse validates raw against the result schema and decodes it. Totals and
// categories are recomputed from the variable scores.
func Parse(raw []byte) (Result, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Result{}, &ValidationError{Problems: []string{"response is not valid JSON: " + err.Error()}}
	}
	if _, ok := doc.(map[string]any); !ok {
		return Result{}, &ValidationError{Problems: []string{"response is not a JSON object"}}
	}

	schema, err := resultSchema()
	if err != nil {
		return Result{}, fmt.Errorf("load result schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return Result{}, &ValidationError{Problems: flatten(verr)}
		}
		return Result{}, &ValidationError{Problems: []string{err.Error()}}
	}

	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return Result{}, &ValidationError{Problems: []string{err.Error()}}
	}
	normalize(&res)
	Recompute(&res)
	return res, nil
}

func normalize(r *Result) {
	r.OverallConfidence = strings.ToUpper(strings.TrimSpace(r.OverallConfidence))
	for _, spec := range Variables {
		if v := r.Variable(spec.Key); v != nil {
			v.Confidence = strings.ToUpper(strings.TrimSpace(v.Confidence))
		}
	}
	if r.Warnings == nil {
		r.Warnings = []string{}
	}
}

// flatten collects leaf messages keyed by instance location.
func flatten(err *jsonschema.ValidationError) []string {
	seen := map[string]struct{}{}
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			seen[loc+": "+e.Message] = struct{}{}
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(err)

	out := make([]string, 0, len(seen))
	for msg := range seen {
		out = append(out, msg)
	}
	sort.Strings(out)
	return out
}
