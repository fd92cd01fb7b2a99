package facade

import "errors"

var (
	errCallbacksRequired = errors.New("output_callback and error_callback are both required")
	errClosed            = errors.New("facade is closed")
	errNotConfigured     = errors.New("facade is not in the configured state")
	errAborted           = errors.New("pending flush aborted by reset or close")
	errReclaimed         = errors.New("facade closed by resource manager reclamation")
)
