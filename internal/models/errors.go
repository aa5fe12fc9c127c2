package models

import "errors"

// Custom errors
var (
	ErrNotFound       = errors.New("record not found")
	ErrInvalidTraceID = errors.New("invalid trace ID format")
	ErrNoWeakestLeg   = errors.New("run has no weakest leg to remove")
	ErrRunNotComplete = errors.New("run is not complete")
	ErrLegNotFound    = errors.New("leg not found in run")
	ErrInvalidInput   = errors.New("invalid slip input")
)
