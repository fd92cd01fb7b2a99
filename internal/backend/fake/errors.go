package fake

import "errors"

var (
	errSimulatedFailure = errors.New("simulated backend failure")
	errMissingFrame     = errors.New("encode input has no frame")
	errMissingChunk     = errors.New("decode input has no chunk")
)
