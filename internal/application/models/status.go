package models

import dErrors "adopsi/pkg/domain-errors"

// Status is the lifecycle state of an adoption application.
//
// The machine is draft → submitted → under_review → {approved|rejected} →
// completed. Submit is the only applicant-driven transition; every other
// change goes through a caseworker review or completion. Rejected and
// completed are terminal: no operation leaves them.
type Status string

const (
	StatusDraft       Status = "draft"
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusCompleted   Status = "completed"
)

var validStatuses = map[Status]bool{
	StatusDraft:       true,
	StatusSubmitted:   true,
	StatusUnderReview: true,
	StatusApproved:    true,
	StatusRejected:    true,
	StatusCompleted:   true,
}

// ParseStatus constructs a Status from external input.
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "status cannot be empty")
	}
	st := Status(s)
	if !validStatuses[st] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid status")
	}
	return st, nil
}

func (s Status) IsValid() bool {
	return validStatuses[s]
}

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no operation may leave this status.
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

// Editable reports whether the applicant may still change the application's
// fields and upload documents.
func (s Status) Editable() bool {
	return s == StatusDraft || s == StatusSubmitted
}

// reviewTargets is the closed set of statuses a caseworker review may select.
var reviewTargets = map[Status]bool{
	StatusUnderReview: true,
	StatusApproved:    true,
	StatusRejected:    true,
}

// IsReviewTarget reports whether a review decision may select this status.
func (s Status) IsReviewTarget() bool {
	return reviewTargets[s]
}
