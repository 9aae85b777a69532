package domain

// Render job status constants. A failed job stays claimable until its
// attempt budget is spent, so failed is only terminal at max attempts.
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
