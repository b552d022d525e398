// Package fault holds the error kinds surfaced to callers of the sticker
// pipeline. Components wrap these with fmt.Errorf("%w: ...") so the HTTP
// layer can pick a status with errors.Is.
package fault

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration means an upstream credential is missing or a placeholder.
	ErrConfiguration = errors.New("service not configured")

	// ErrInvalidInput means the inbound request failed validation.
	ErrInvalidInput = errors.New("invalid request")

	// ErrUpstreamGeneration means the concept or image model call failed.
	ErrUpstreamGeneration = errors.New("upstream generation failed")

	// ErrContentPolicy is an upstream rejection on content grounds.
	ErrContentPolicy = fmt.Errorf("%w: content policy violation - try a different city or concept", ErrUpstreamGeneration)

	// ErrTransportEncoding means a prompt could not be made transport safe.
	ErrTransportEncoding = errors.New("unicode encoding error in prompt - please try again or use a different city name")

	// ErrImageProcessing means the compositor produced no usable sticker.
	ErrImageProcessing = errors.New("image processing failed")
)
