package entities

import "time"

// Submission lifecycle statuses. The row is the durable side of the
// per-session state machine; the cookie only carries the reference.
const (
	SubmissionPending    = "pending"
	SubmissionProcessing = "processing"
	SubmissionCompleted  = "completed"
	SubmissionError      = "error"
	SubmissionTimeout    = "timeout"
	SubmissionSuperseded = "superseded"
)

type Submission struct {
	ID                 string `gorm:"primaryKey;size:36" json:"id"`
	UserID             string `gorm:"index" json:"user_id"`
	ProjectName        string `json:"project_name"`
	ProjectDescription string `json:"project_description"`
	FormData           string `json:"form_data"` // JSON text, immutable snapshot
	Status             string `gorm:"index;default:pending" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
