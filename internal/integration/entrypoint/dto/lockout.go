package dto

import (
	"math"
	"time"

	"github.com/storefront/credential-security/internal/domain/entity"
)

// LockoutStatusResponse represents the lockout state of an identifier.
type LockoutStatusResponse struct {
	Identifier        string `json:"identifier"`
	IsLocked          bool   `json:"is_locked"`
	RemainingSeconds  int64  `json:"remaining_seconds"`
	AttemptsRemaining int    `json:"attempts_remaining"`
}

// AttemptResponse represents one audit event.
type AttemptResponse struct {
	ID                string `json:"id"`
	Outcome           string `json:"outcome"`
	AttemptsRemaining int    `json:"attempts_remaining"`
	OccurredAt        string `json:"occurred_at"`
}

// AttemptListResponse represents a list of audit events.
type AttemptListResponse struct {
	Identifier string            `json:"identifier"`
	Attempts   []AttemptResponse `json:"attempts"`
}

// ToLockoutStatusResponse converts a domain LockoutStatus to a LockoutStatusResponse DTO.
func ToLockoutStatusResponse(identifier string, s entity.LockoutStatus) LockoutStatusResponse {
	return LockoutStatusResponse{
		Identifier:        entity.NormalizeIdentifier(identifier),
		IsLocked:          s.IsLocked,
		RemainingSeconds:  CeilSeconds(s.RemainingTime),
		AttemptsRemaining: s.AttemptsRemaining,
	}
}

// ToAttemptListResponse converts domain AuthAttempts to an AttemptListResponse DTO.
func ToAttemptListResponse(identifier string, attempts []*entity.AuthAttempt) AttemptListResponse {
	items := make([]AttemptResponse, len(attempts))
	for i, a := range attempts {
		items[i] = AttemptResponse{
			ID:                a.ID.String(),
			Outcome:           string(a.Outcome),
			AttemptsRemaining: a.AttemptsRemaining,
			OccurredAt:        a.OccurredAt.Format(time.RFC3339),
		}
	}
	return AttemptListResponse{
		Identifier: entity.NormalizeIdentifier(identifier),
		Attempts:   items,
	}
}

// CeilSeconds rounds a duration up to whole seconds.
func CeilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(math.Ceil(d.Seconds()))
}
