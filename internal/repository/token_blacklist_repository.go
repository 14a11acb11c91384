package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tasktracker/internal/model"
)

// TokenBlacklistRepository persists revoked refresh-token identifiers.
// Reads and writes go to the primary store so a revocation is visible to the next lookup.
type TokenBlacklistRepository struct {
	db *gorm.DB
}

func NewTokenBlacklistRepository(db *gorm.DB) *TokenBlacklistRepository {
	return &TokenBlacklistRepository{db: db}
}

// Add inserts the jti. A second insert of the same jti returns ErrTokenAlreadyBlacklisted.
func (r *TokenBlacklistRepository) Add(ctx context.Context, jti string, userID uuid.UUID, expiresAt time.Time) error {
	entry := &model.BlacklistedToken{
		JTI:       jti,
		UserID:    userID,
		ExpiresAt: expiresAt.UTC(),
	}
	err := r.db.WithContext(ctx).Create(entry).Error
	if isUniqueViolation(err) {
		return ErrTokenAlreadyBlacklisted
	}
	return err
}

func (r *TokenBlacklistRepository) Contains(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.BlacklistedToken{}).Where("jti = ?", jti).Count(&count).Error
	return count > 0, err
}
