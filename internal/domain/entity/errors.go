package entity

import "errors"

// Standard domain errors
var (
	ErrMissingImage = errors.New("no image data provided")
	ErrShuttingDown = errors.New("server is shutting down")
	ErrInvalidImage = errors.New("image is not valid base64")
)
