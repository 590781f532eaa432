package documents

import "errors"

var (
	ErrInvalidInput    = errors.New("file name is required")
	ErrUnsupportedType = errors.New("file is not a PDF")
	ErrTooLarge        = errors.New("file exceeds the upload limit")
)
