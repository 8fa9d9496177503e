// Package audit captures operational audit events emitted from domain logic.
//
// This channel is deliberately separate from the status history ledger: the
// ledger is the authoritative, same-transaction record of application status
// transitions, while audit events are best-effort operational telemetry
// (including actions the ledger never records, such as document verification
// toggles and login failures).
package audit

import (
	"time"

	id "adopsi/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Action      EventAction
	Timestamp   time.Time
	ActorID     id.UserID
	SubjectType string
	SubjectID   string
	Reason      string
	RequestID   string
}

// EventAction names an auditable action.
type EventAction string

const (
	// Identity events
	EventUserRegistered EventAction = "user_registered"
	EventUserLoggedIn   EventAction = "user_logged_in"
	EventLoginFailed    EventAction = "login_failed"

	// Application lifecycle events
	EventApplicationCreated   EventAction = "application_created"
	EventApplicationSubmitted EventAction = "application_submitted"
	EventApplicationReviewed  EventAction = "application_reviewed"
	EventApplicationCompleted EventAction = "application_completed"

	// Document events
	EventDocumentUploaded   EventAction = "document_uploaded"
	EventDocumentDeleted    EventAction = "document_deleted"
	EventDocumentVerified   EventAction = "document_verified"
	EventDocumentUnverified EventAction = "document_unverified"
)
