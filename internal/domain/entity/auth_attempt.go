package entity

import (
	"time"

	"github.com/google/uuid"
)

// AttemptOutcome classifies a credential verification.
type AttemptOutcome string

const (
	AttemptOutcomeSuccess AttemptOutcome = "success"
	AttemptOutcomeFailure AttemptOutcome = "failure"
	AttemptOutcomeLocked  AttemptOutcome = "locked"
)

// AuthAttempt is an audit event for one verification outcome.
// It never carries passwords, hashes or salts.
type AuthAttempt struct {
	ID                uuid.UUID
	Identifier        string
	Outcome           AttemptOutcome
	AttemptsRemaining int
	OccurredAt        time.Time
}

// NewAuthAttempt creates an audit event for a normalized identifier.
func NewAuthAttempt(identifier string, outcome AttemptOutcome, attemptsRemaining int, occurredAt time.Time) *AuthAttempt {
	return &AuthAttempt{
		ID:                uuid.New(),
		Identifier:        identifier,
		Outcome:           outcome,
		AttemptsRemaining: attemptsRemaining,
		OccurredAt:        occurredAt.UTC(),
	}
}
