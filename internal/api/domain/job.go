package domain

import (
	"errors"
)

// Render job lifecycle states. pending and processing are transient;
// completed is terminal; failed is terminal once the attempt budget is spent.
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// Render kinds
const (
	KindStandard   = "standard"
	KindPrintReady = "print_ready"
)

// ErrJobNotFound is returned when no job matches the token for the caller
var ErrJobNotFound = errors.New("render job not found")

// ValidKind reports whether the requested render kind is supported
func ValidKind(kind string) bool {
	return kind == KindStandard || kind == KindPrintReady
}
