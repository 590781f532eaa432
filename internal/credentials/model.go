package credentials

import (
	"time"

	"transparency-backend/internal/llm"
)

// Credential is a stored provider API key.
type Credential struct {
	Provider  llm.Tag
	KeyName   string
	Secret    string
	UpdatedAt time.Time
}

// Status is the client-safe view of a provider key.
type Status struct {
	Provider llm.Tag `json:"provider"`
	KeyName  string  `json:"keyName"`
	Label    string  `json:"label"`
	Saved    bool    `json:"saved"`
	Hint     string  `json:"hint,omitempty"`
}
