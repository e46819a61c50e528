package adapter

import "errors"

var (
	// ErrUnauthorized means the feature service rejected the session token
	// and a refresh did not help.
	ErrUnauthorized = errors.New("feature service unauthorized")

	// ErrService covers feature-service failures that are not auth related:
	// transport errors, non-2xx statuses and service error envelopes.
	ErrService = errors.New("feature service error")

	// ErrLayerNotFound means the webmap holds no operational layer with the
	// configured name.
	ErrLayerNotFound = errors.New("layer not found in webmap")

	// ErrRendererShape means the webmap layer's renderer does not carry a
	// class-break list of the expected size, so break values cannot be
	// rewritten in place.
	ErrRendererShape = errors.New("renderer class breaks shape mismatch")
)
