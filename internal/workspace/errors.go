package workspace

import (
	"errors"

	"transparency-backend/internal/exports"
)

var (
	ErrBusy              = errors.New("workspace is busy")
	ErrNoDocument        = errors.New("no document loaded")
	ErrMissingCredential = errors.New("api key required")
	ErrUnknownModel      = errors.New("unknown model")
	ErrInvalidTab        = errors.New("tab must be results or chat")
	ErrNoResult          = exports.ErrNoResult
)
