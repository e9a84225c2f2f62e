package models

import "errors"

var (
	ErrInvalidStatus  = errors.New("invalid booking status")
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("record not found")
	ErrMutationFailed = errors.New("mutation failed")
)
