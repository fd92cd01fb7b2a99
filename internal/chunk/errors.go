package chunk

import "errors"

var errBufferTooSmall = errors.New("destination buffer is smaller than the chunk's byte length")
