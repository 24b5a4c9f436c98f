package feedback

import "errors"

var (
	ErrNotFound     = errors.New("feedback not found")
	ErrInvalidInput = errors.New("invalid input")
)
