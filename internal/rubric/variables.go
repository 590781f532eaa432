package rubric

import "strings"

// Level is one rung of a variable's scale.
type Level struct {
	Score int    `json:"score"`
	Label string `json:"label"`
}

// VariableSpec describes one transparency variable of the protocol.
type VariableSpec struct {
	Key      string  `json:"key"`
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Short    string  `json:"short"`
	Question string  `json:"question"`
	Min      int     `json:"min"`
	Max      int     `json:"max"`
	Levels   []Level `json:"levels"`
}

// Variables lists V1..V6 in order.
var Variables = []VariableSpec{
	newSpec("v1", "Location of Statement", "Location",
		"Where is GenAI use reported in the article?", 1,
		"Footnotes / Brief Notes",
		"Standard End Sections",
		"Formal GenAI Declaration",
		"Main Text Integration",
		"Full Transparency + Evidence"),
	newSpec("v2", "Tool Specificity", "Tool",
		"Which GenAI tool was used and how specifically was it identified?", 1,
		"Generic Terms Only",
		"Brand/Model Name",
		"Version Number",
		"Version + Access Date",
		"Technical Identifier / API"),
	newSpec("v3", "Purpose of Use", "Purpose",
		"What was GenAI used for in the research process?", 0,
		"No Specific Action",
		"Language Editing (Passive)",
		"Writing Support (Active)",
		"Content/Stimuli Generation",
		"Analytic/Technical Tasks",
		"Methodological Integration"),
	newSpec("v4", "Prompt Disclosure", "Prompt",
		"Were prompts or instructions shared to enable reproducibility?", 0,
		"No Prompt Information",
		"General Statement",
		"Single Example",
		"Multiple Examples",
		"Prompt + Rationale",
		"Complete Prompt Archive"),
	newSpec("v5", "Human Verification", "Verification",
		"Did humans verify, review, or validate GenAI outputs?", 0,
		"No Statement",
		"General Statement",
		"Author-Specific Statement",
		"Procedural Detail",
		"Multiple Verification Methods",
		"Systematic Validation"),
	newSpec("v6", "Limitation Acknowledgment", "Limitation",
		"Were GenAI limitations, risks, or potential biases acknowledged?", 0,
		"No Information",
		"General Warning",
		"Specific Limitation Type",
		"Tool-Specific Limitation",
		"Research Impact Statement",
		"Comprehensive Risk Analysis"),
}

// newSpec numbers labels upward from min; the last label is the maximum score.
func newSpec(key, name, short, question string, min int, labels ...string) VariableSpec {
	levels := make([]Level, len(labels))
	for i, label := range labels {
		levels[i] = Level{Score: min + i, Label: label}
	}
	return VariableSpec{
		Key:      key,
		Code:     strings.ToUpper(key),
		Name:     name,
		Short:    short,
		Question: question,
		Min:      min,
		Max:      min + len(labels) - 1,
		Levels:   levels,
	}
}

// SpecFor returns the spec for key ("v1".."v6").
func SpecFor(key string) (VariableSpec, bool) {
	for _, spec := range Variables {
		if spec.Key == strings.ToLower(key) {
			return spec, true
		}
	}
	return VariableSpec{}, false
}

// GeneralRules are the coding rules applied across all variables.
var GeneralRules = []string{
	"When disclosure appears in multiple locations, code the highest transparency level observed.",
	"When multiple GenAI tools are used, code the most specifically identified tool and note others.",
	"When GenAI is used for multiple purposes, categorize each purpose separately and code the highest category among them.",
	"Code based on author self-declaration only (not AI detection tools).",
}

// Reference is the protocol summary served to clients.
type Reference struct {
	Name      string         `json:"name"`
	Version   string         `json:"version"`
	Rules     []string       `json:"rules"`
	Variables []VariableSpec `json:"variables"`
	Bands     []Band         `json:"bands"`
}

// Protocol returns the protocol reference.
func Protocol() Reference {
	return Reference{
		Name:      "GenAI Transparency Coding Protocol",
		Version:   "2.0 (Revised)",
		Rules:     GeneralRules,
		Variables: Variables,
		Bands:     Bands,
	}
}
