package resource

import "errors"

var (
	errDetached              = errors.New("media resource is detached")
	errNegativeLayout        = errors.New("plane layout has a negative offset, stride, or row count")
	errLayoutOverflow        = errors.New("plane layout exceeds payload bounds")
	errZeroDimension         = errors.New("coded dimensions must be greater than zero")
	errVisibleRectOOB        = errors.New("visible rect is not contained within the coded rect")
	errBufferTooSmall        = errors.New("destination buffer is smaller than the required allocation size")
	errNoConverter           = errors.New("no format converter available for cross-format copy")
	errInterleavedPlaneIndex = errors.New("plane_index must be 0 for interleaved audio")
	errPlaneIndexRange       = errors.New("plane_index out of range")
)
