package task

import (
	"github.com/google/uuid"

	"github.com/taskflow/taskflow-api/internal/platform/mailer"
)

// Priority lanes for email delivery. Each lane is an independent queue
// with its own workers, so a backlog in one lane cannot delay another.
const (
	LaneHighPriority = "high_priority"
	LaneDefault      = "default"
	LaneLowPriority  = "low_priority"
)

// Lanes lists all lanes the dispatcher serves.
var Lanes = []string{LaneHighPriority, LaneDefault, LaneLowPriority}

// EmailJob is a unit of asynchronous email work. Jobs carry template
// data rather than rendered bodies; rendering happens on the worker.
type EmailJob struct {
	// ID identifies the job in logs.
	ID uuid.UUID

	// Kind selects the email template, one of the mailer.Kind constants.
	Kind string

	// Lane selects the priority lane.
	Lane string

	// To is the recipient address.
	To string

	// Subject, when non-empty, overrides the kind's default subject.
	Subject string

	// Data is interpolated into the email body.
	Data mailer.TemplateData
}

// NewEmailJob creates a job of the given kind routed to its default
// lane.
func NewEmailJob(kind, to string, data mailer.TemplateData) EmailJob {
	return EmailJob{
		ID:   uuid.New(),
		Kind: kind,
		Lane: LaneForKind(kind),
		To:   to,
		Data: data,
	}
}

// LaneForKind maps an email kind to its priority lane. Initial
// registration confirmations are the most time-sensitive: the user is
// sitting in front of the signup form. Re-requested confirmations are
// routine, and password resets are the least urgent.
func LaneForKind(kind string) string {
	switch kind {
	case mailer.KindRegisterConfirmation:
		return LaneHighPriority
	case mailer.KindResetPasswordConfirmation:
		return LaneLowPriority
	default:
		return LaneDefault
	}
}
