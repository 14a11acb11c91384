package model

import (
	"time"

	"github.com/google/uuid"
)

// BlacklistedToken records a revoked refresh token by its jti claim.
type BlacklistedToken struct {
	JTI       string    `gorm:"column:jti;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
