package repository

import "nolabor/entities"

// SubmissionRepository is the durable registry of pending form payloads.
// The session cookie only carries the UUID; this table carries the data.
type SubmissionRepository interface {
	Create(s *entities.Submission) error
	FindByID(id, uid string) (*entities.Submission, error)

	// MarkProcessing compare-and-sets status pending→processing and
	// reports whether this caller won the transition.
	MarkProcessing(id string) (bool, error)
	SetStatus(id, status string) error

	// SupersedePending retires any still-pending submissions of the user;
	// a new /generate supersedes the previous one.
	SupersedePending(uid string) error
}
