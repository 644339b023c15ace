package report

import "errors"

// Per-execution error taxonomy. All of these settle as a failed execution
// with bookkeeping; none may escape the executor boundary.
var (
	ErrContentNotFound = errors.New("content not found")
	ErrRenderFailure   = errors.New("render failure")
	ErrDeliveryFailure = errors.New("delivery failure")
)
