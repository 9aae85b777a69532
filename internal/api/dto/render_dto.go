package dto

// CreateRenderJobRequest is the body of POST /designs/:design_id/render
type CreateRenderJobRequest struct {
	Kind string `json:"kind" binding:"required"`
}

// CreateRenderJobResponse acknowledges an accepted render request
type CreateRenderJobResponse struct {
	JobToken string `json:"job_token"`
	Message  string `json:"message"`
}

// JobStatusResponse answers a status poll. DownloadURL is present only when
// the job completed; Error only when it failed.
type JobStatusResponse struct {
	Status      string `json:"status"`
	DownloadURL string `json:"download_url,omitempty"`
	Error       string `json:"error,omitempty"`
}

// ListRenderJobsRequest holds the listing query parameters
type ListRenderJobsRequest struct {
	Kind     string `form:"kind"`
	Status   string `form:"status"`
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

// ListRenderJobsResponse is a cursor-paginated page of the caller's jobs
type ListRenderJobsResponse struct {
	Jobs       []RenderJobDTO `json:"jobs"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// RenderJobDTO is the client-facing view of one render job
type RenderJobDTO struct {
	JobToken   string `json:"job_token"`
	DesignName string `json:"design_name"`
	Kind       string `json:"kind"`
	Status     string `json:"status"`
	Attempts   int    `json:"attempts"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}
