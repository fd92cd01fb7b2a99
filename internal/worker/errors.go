package worker

import (
	"errors"
	"fmt"
)

var (
	errUnsupportedConfig   = errors.New("no backend supports the configured codec")
	errKeyChunkRequired    = errors.New("decode requires a key chunk before any delta chunk")
	errOrientationMismatch = errors.New("frame orientation does not match the active encoder orientation")
)

func errPanic(r any) error {
	return fmt.Errorf("recovered panic: %v", r)
}
