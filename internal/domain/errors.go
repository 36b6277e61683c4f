package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrMissingColumn = errors.New("missing column")
	ErrEmptySource   = errors.New("source has no header row")
	ErrInvalidFilter = errors.New("invalid filter")
)
