package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/storefront/credential-security/internal/application/adapter"
	"github.com/storefront/credential-security/internal/domain/entity"
	domainerror "github.com/storefront/credential-security/internal/domain/error"
	"github.com/storefront/credential-security/internal/integration/persistence/model"
)

// attemptRepository implements the adapter.AttemptRepository interface.
type attemptRepository struct {
	db *gorm.DB
}

// NewAttemptRepository creates a new attempt audit repository instance.
func NewAttemptRepository(db *gorm.DB) adapter.AttemptRepository {
	return &attemptRepository{
		db: db,
	}
}

// Record stores one audit event.
func (r *attemptRepository) Record(ctx context.Context, attempt *entity.AuthAttempt) error {
	result := r.db.WithContext(ctx).Create(model.AuthAttemptModelFromEntity(attempt))
	if result.Error != nil {
		return domainerror.NewCredentialError(
			domainerror.ErrCodeAuditUnavailable,
			"failed to record authentication attempt",
			result.Error,
		)
	}
	return nil
}

// ListRecent returns the newest events for identifier, newest first.
func (r *attemptRepository) ListRecent(ctx context.Context, identifier string, limit int) ([]*entity.AuthAttempt, error) {
	var models []model.AuthAttemptModel

	result := r.db.WithContext(ctx).
		Where("identifier = ?", entity.NormalizeIdentifier(identifier)).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&models)

	if result.Error != nil {
		return nil, domainerror.NewCredentialError(
			domainerror.ErrCodeAuditUnavailable,
			"failed to list authentication attempts",
			result.Error,
		)
	}

	attempts := make([]*entity.AuthAttempt, len(models))
	for i := range models {
		attempts[i] = models[i].ToEntity()
	}

	return attempts, nil
}

// DeleteOlderThan removes events older than the given number of days.
func (r *attemptRepository) DeleteOlderThan(ctx context.Context, olderThanDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays)

	result := r.db.WithContext(ctx).
		Where("occurred_at < ?", cutoff).
		Delete(&model.AuthAttemptModel{})

	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
