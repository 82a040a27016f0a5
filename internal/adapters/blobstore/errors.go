package blobstore

import "errors"

// Sentinel kinds for blob storage errors.
var (
	ErrNotFound   = errors.New("blob not found")
	ErrInvalidKey = errors.New("invalid blob key")
	ErrLocked     = errors.New("data root locked by another instance")
)
