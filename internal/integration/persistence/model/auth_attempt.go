// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefront/credential-security/internal/domain/entity"
)

// AuthAttemptModel represents the auth_attempts table in the database.
type AuthAttemptModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	Identifier        string    `gorm:"type:varchar(255);not null;index:idx_auth_attempts_identifier_occurred_at,priority:1"`
	Outcome           string    `gorm:"type:varchar(20);not null"`
	AttemptsRemaining int       `gorm:"not null;default:0"`
	OccurredAt        time.Time `gorm:"not null;index:idx_auth_attempts_identifier_occurred_at,priority:2"`
}

// TableName returns the table name for the AuthAttemptModel.
func (AuthAttemptModel) TableName() string {
	return "auth_attempts"
}

// ToEntity converts an AuthAttemptModel to a domain AuthAttempt entity.
func (m *AuthAttemptModel) ToEntity() *entity.AuthAttempt {
	return &entity.AuthAttempt{
		ID:                m.ID,
		Identifier:        m.Identifier,
		Outcome:           entity.AttemptOutcome(m.Outcome),
		AttemptsRemaining: m.AttemptsRemaining,
		OccurredAt:        m.OccurredAt.UTC(),
	}
}

// AuthAttemptModelFromEntity converts a domain AuthAttempt entity to an AuthAttemptModel.
func AuthAttemptModelFromEntity(a *entity.AuthAttempt) *AuthAttemptModel {
	return &AuthAttemptModel{
		ID:                a.ID,
		Identifier:        a.Identifier,
		Outcome:           string(a.Outcome),
		AttemptsRemaining: a.AttemptsRemaining,
		OccurredAt:        a.OccurredAt.UTC(),
	}
}
