package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	domainRepo "github.com/sangkips/invoicer-api/internal/domain/repository"
	"github.com/sangkips/invoicer-api/pkg/pagination"
	"gorm.io/gorm"
)

type senderProfileRepository struct {
	db *gorm.DB
}

// NewSenderProfileRepository creates a new sender profile repository
func NewSenderProfileRepository(db *gorm.DB) domainRepo.SenderProfileRepository {
	return &senderProfileRepository{db: db}
}

func (r *senderProfileRepository) Create(ctx context.Context, profile *entity.SenderProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *senderProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.SenderProfile, error) {
	var profile entity.SenderProfile
	err := r.db.WithContext(ctx).Scopes(OwnerScope(ctx)).
		Preload("BankAccounts", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&profile, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &profile, err
}

// Update leaves the invoice counter alone; it is only moved by invoice writes
func (r *senderProfileRepository) Update(ctx context.Context, profile *entity.SenderProfile) error {
	return r.db.WithContext(ctx).Model(profile).
		Select("name", "email", "phone", "tax_id", "address", "invoice_prefix", "default_bank_account_id").
		Updates(profile).Error
}

// Delete removes the profile and its bank accounts
func (r *senderProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(OwnerScope(ctx)).
			Where("sender_profile_id = ?", id).
			Delete(&entity.BankAccount{}).Error; err != nil {
			return err
		}
		return tx.Scopes(OwnerScope(ctx)).Delete(&entity.SenderProfile{}, "id = ?", id).Error
	})
}

func (r *senderProfileRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.SenderProfile, int64, error) {
	var profiles []entity.SenderProfile
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.SenderProfile{}).Scopes(OwnerScope(ctx))

	if search != "" {
		query = query.Where("name ILIKE ? OR email ILIKE ? OR invoice_prefix ILIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Preload("BankAccounts").
		Order("name ASC").
		Find(&profiles).Error

	return profiles, total, err
}

func (r *senderProfileRepository) ListAll(ctx context.Context) ([]entity.SenderProfile, error) {
	var profiles []entity.SenderProfile
	err := r.db.WithContext(ctx).Scopes(OwnerScope(ctx)).
		Order("name ASC").
		Find(&profiles).Error
	return profiles, err
}

type bankAccountRepository struct {
	db *gorm.DB
}

// NewBankAccountRepository creates a new bank account repository
func NewBankAccountRepository(db *gorm.DB) domainRepo.BankAccountRepository {
	return &bankAccountRepository{db: db}
}

func (r *bankAccountRepository) Create(ctx context.Context, account *entity.BankAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *bankAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.BankAccount, error) {
	var account entity.BankAccount
	err := r.db.WithContext(ctx).Scopes(OwnerScope(ctx)).First(&account, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &account, err
}

func (r *bankAccountRepository) Update(ctx context.Context, account *entity.BankAccount) error {
	return r.db.WithContext(ctx).Save(account).Error
}

// Delete also clears the account from any profile using it as default
func (r *bankAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.SenderProfile{}).
			Scopes(OwnerScope(ctx)).
			Where("default_bank_account_id = ?", id).
			Update("default_bank_account_id", nil).Error; err != nil {
			return err
		}
		return tx.Scopes(OwnerScope(ctx)).Delete(&entity.BankAccount{}, "id = ?", id).Error
	})
}

func (r *bankAccountRepository) ListBySender(ctx context.Context, senderProfileID uuid.UUID) ([]entity.BankAccount, error) {
	var accounts []entity.BankAccount
	err := r.db.WithContext(ctx).Scopes(OwnerScope(ctx)).
		Where("sender_profile_id = ?", senderProfileID).
		Order("created_at ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *bankAccountRepository) ListAll(ctx context.Context) ([]entity.BankAccount, error) {
	var accounts []entity.BankAccount
	err := r.db.WithContext(ctx).Scopes(OwnerScope(ctx)).
		Order("created_at ASC").
		Find(&accounts).Error
	return accounts, err
}
