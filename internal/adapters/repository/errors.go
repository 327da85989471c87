package repository

import "errors"

// Sentinel kinds for assessment store errors.
var (
	ErrNotFound     = errors.New("assessment not found")
	ErrInvalidLimit = errors.New("invalid assessment limit")
)
