package service

import (
	"context"
	"errors"

	"nolabor/entities"
	"nolabor/pkg/plan/types"
)

// Stable error codes surfaced as error_code in JSON responses.
const (
	CodeNoFormData               = "NO_FORM_DATA"
	CodeSessionError             = "SESSION_ERROR"
	CodeNoQuota                  = "NO_QUOTA"
	CodeStartFailed              = "START_FAILED"
	CodeInvalidResult            = "INVALID_RESULT"
	CodeNetworkAndFallbackFailed = "NETWORK_AND_FALLBACK_FAILED"
	CodeExecutionError           = "EXECUTION_ERROR"
	CodeFatalError               = "FATAL_ERROR"
	CodeJSONifyFailed            = "JSONIFY_FAILED"
)

// ErrNoFormData means the session references nothing resolvable; the
// user must resubmit.
var ErrNoFormData = errors.New("no form data for session")

// StartOutcome is what /start_analysis reports. Status values are the
// session lifecycle states.
type StartOutcome struct {
	Status      string
	Progress    int
	Stage       string
	Message     string
	ErrorCode   string
	ResultID    string
	RedirectURL string
	// FallbackUsed marks a completed outcome whose plan came from the
	// fallback generator rather than the model.
	FallbackUsed bool
}

// StatusOutcome is the polling snapshot.
type StatusOutcome struct {
	Status      string
	Progress    int
	Stage       string
	Message     string
	ErrorCode   string
	ResultID    string
	RedirectURL string
}

// AnalysisService owns the lifecycle state machine
// not_started → processing → (completed | error | timeout) and the
// at-most-one-active-run guarantee per submission.
type AnalysisService interface {
	// Ingest stores the form durably, supersedes any previous pending
	// submission of the user, and returns the new row.
	Ingest(uid string, form *types.FormData) (*entities.Submission, error)

	// Start begins analysis or reports the in-flight/terminal state.
	// Idempotent: a second call while processing never starts a second
	// model run. The LLM call blocks inside this call.
	Start(ctx context.Context, uid, submissionID string) StartOutcome

	// Status is the pure polling read. Its only permitted write is
	// materializing a fallback analysis when it observes a timeout left
	// behind by an interrupted Start.
	Status(uid, submissionID string) StatusOutcome

	// Resolve is the results-page reader: returns the analysis to
	// render, switching or synthesizing per the never-blank rules.
	// ErrNoFormData when nothing is resolvable at all.
	Resolve(uid, submissionID, resultID string) (*entities.Analysis, error)

	// FormData returns the stored form payload for the submission.
	FormData(uid, submissionID string) (*types.FormData, error)

	ListByUser(uid string) ([]entities.Analysis, error)
}
