package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ctxKey string

// OwnerIDKey is the context key for the authenticated owner of the data
const OwnerIDKey ctxKey = "owner_id"

// OwnerScope returns a GORM scope that filters by owner.
// It must be applied to every query on user-owned tables.
func OwnerScope(ctx context.Context) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		ownerID, ok := GetOwnerID(ctx)
		if !ok {
			// no owner, no rows
			return db.Where("1 = 0")
		}
		return db.Where("user_id = ?", ownerID)
	}
}

// WithOwner adds the owner ID to context
func WithOwner(ctx context.Context, ownerID uuid.UUID) context.Context {
	return context.WithValue(ctx, OwnerIDKey, ownerID)
}

// GetOwnerID extracts the owner ID from context
func GetOwnerID(ctx context.Context) (uuid.UUID, bool) {
	ownerID, ok := ctx.Value(OwnerIDKey).(uuid.UUID)
	return ownerID, ok && ownerID != uuid.Nil
}
