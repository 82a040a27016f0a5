package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrAnnotationNotFound = errors.New("annotation not found")
	ErrThumbnailNotFound  = errors.New("thumbnail not found")
	ErrMatchNotFound      = errors.New("match group not found")
	ErrMalformedDocument  = errors.New("malformed annotation document")
	ErrMalformedImport    = errors.New("malformed import payload")
)
