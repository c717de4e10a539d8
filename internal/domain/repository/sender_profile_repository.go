package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/pkg/pagination"
)

// SenderProfileRepository defines the interface for sender profile data operations
type SenderProfileRepository interface {
	Create(ctx context.Context, profile *entity.SenderProfile) error
	// GetByID loads the profile together with its bank accounts
	GetByID(ctx context.Context, id uuid.UUID) (*entity.SenderProfile, error)
	Update(ctx context.Context, profile *entity.SenderProfile) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.SenderProfile, int64, error)
	ListAll(ctx context.Context) ([]entity.SenderProfile, error)
}

// BankAccountRepository defines the interface for bank account data operations
type BankAccountRepository interface {
	Create(ctx context.Context, account *entity.BankAccount) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.BankAccount, error)
	Update(ctx context.Context, account *entity.BankAccount) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListBySender(ctx context.Context, senderProfileID uuid.UUID) ([]entity.BankAccount, error)
	ListAll(ctx context.Context) ([]entity.BankAccount, error)
}
