package mediaconfig

import "errors"

var (
	errEmptyCodecString      = errors.New("codec string must be non-empty after trimming")
	errZeroDimension         = errors.New("required dimension is zero or negative")
	errUnpairedDisplayAspect = errors.New("display aspect width and height must both be set or both be zero")
	errInvalidRotation       = errors.New("rotation must be one of 0, 90, 180, 270")
)
