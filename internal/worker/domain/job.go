package domain

// Job is the claimed render job as the worker sees it. Attempts reflects the
// count AFTER the claim, so it identifies the attempt currently running.
type Job struct {
	ID          int64  `db:"id"`
	JobToken    string `db:"job_token"`
	UserID      int64  `db:"user_id"`
	DesignID    int64  `db:"design_id"`
	Kind        string `db:"kind"`
	Status      string `db:"status"`
	Attempts    int    `db:"attempts"`
	MaxAttempts int    `db:"max_attempts"`
}

// JobMessage represents a render job message from RabbitMQ
type JobMessage struct {
	JobToken    string `json:"job_token"`
	DeliveryTag uint64 `json:"-"`
}
