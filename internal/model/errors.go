package model

import "errors"

var (
	// ErrNotFound is returned when a record does not exist or belongs to another owner.
	ErrNotFound = errors.New("record not found")
	// ErrValidation wraps every rejected input; the message names the offending field.
	ErrValidation = errors.New("validation failed")
	// ErrAlreadySent is returned when editing a reminder that was already delivered.
	ErrAlreadySent = errors.New("reminder already sent")
)
