package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/repository"
	infraRepo "github.com/sangkips/invoicer-api/internal/infrastructure/repository"
	"github.com/sangkips/invoicer-api/pkg/apperror"
	"github.com/sangkips/invoicer-api/pkg/pagination"
)

// SenderProfileService manages sender profiles and their bank accounts
type SenderProfileService struct {
	profileRepo   repository.SenderProfileRepository
	accountRepo   repository.BankAccountRepository
	defaultPrefix string
}

// NewSenderProfileService creates a new sender profile service
func NewSenderProfileService(
	profileRepo repository.SenderProfileRepository,
	accountRepo repository.BankAccountRepository,
	defaultPrefix string,
) *SenderProfileService {
	if defaultPrefix == "" {
		defaultPrefix = "INV"
	}
	return &SenderProfileService{
		profileRepo:   profileRepo,
		accountRepo:   accountRepo,
		defaultPrefix: defaultPrefix,
	}
}

// SenderProfileInput represents the create/update sender profile input.
// Nil fields are left unchanged on update.
type SenderProfileInput struct {
	Name                 *string
	Email                *string
	Phone                *string
	TaxID                *string
	Address              *string
	InvoicePrefix        *string
	DefaultBankAccountID *uuid.UUID
}

// CreateSenderProfile creates a new sender profile with an unused numbering sequence
func (s *SenderProfileService) CreateSenderProfile(ctx context.Context, input *SenderProfileInput) (*entity.SenderProfile, error) {
	ownerID, ok := infraRepo.GetOwnerID(ctx)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "name", Message: "Name is required"},
		})
	}
	if input.DefaultBankAccountID != nil {
		return nil, apperror.NewBadRequestError("A new sender profile has no bank accounts yet")
	}

	prefix := s.defaultPrefix
	if input.InvoicePrefix != nil {
		prefix = *input.InvoicePrefix
	}
	prefix, err := normalizePrefix(prefix)
	if err != nil {
		return nil, err
	}

	profile := &entity.SenderProfile{
		UserID:        ownerID,
		Name:          strings.TrimSpace(*input.Name),
		Email:         input.Email,
		Phone:         input.Phone,
		TaxID:         input.TaxID,
		Address:       input.Address,
		InvoicePrefix: prefix,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// GetSenderProfile retrieves a sender profile with its bank accounts
func (s *SenderProfileService) GetSenderProfile(ctx context.Context, id uuid.UUID) (*entity.SenderProfile, error) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperror.NewNotFoundError("Sender profile")
	}
	return profile, nil
}

// ListSenderProfiles lists sender profiles with pagination
func (s *SenderProfileService) ListSenderProfiles(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.SenderProfile], error) {
	profiles, total, err := s.profileRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(profiles, pag), nil
}

// UpdateSenderProfile updates a sender profile. The invoice counter is
// never changed here.
func (s *SenderProfileService) UpdateSenderProfile(ctx context.Context, id uuid.UUID, input *SenderProfileInput) (*entity.SenderProfile, error) {
	profile, err := s.GetSenderProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewValidationError([]apperror.FieldError{
				{Field: "name", Message: "Name is required"},
			})
		}
		profile.Name = name
	}
	if input.Email != nil {
		profile.Email = input.Email
	}
	if input.Phone != nil {
		profile.Phone = input.Phone
	}
	if input.TaxID != nil {
		profile.TaxID = input.TaxID
	}
	if input.Address != nil {
		profile.Address = input.Address
	}
	if input.InvoicePrefix != nil {
		prefix, err := normalizePrefix(*input.InvoicePrefix)
		if err != nil {
			return nil, err
		}
		profile.InvoicePrefix = prefix
	}
	if input.DefaultBankAccountID != nil {
		if !ownsAccount(profile, *input.DefaultBankAccountID) {
			return nil, apperror.NewBadRequestError("Default bank account must belong to the sender profile")
		}
		accountID := *input.DefaultBankAccountID
		profile.DefaultBankAccountID = &accountID
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// DeleteSenderProfile deletes a sender profile and its bank accounts
func (s *SenderProfileService) DeleteSenderProfile(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetSenderProfile(ctx, id); err != nil {
		return err
	}
	return s.profileRepo.Delete(ctx, id)
}

// BankAccountInput represents the create/update bank account input.
// Currency can only be set on create.
type BankAccountInput struct {
	BankName      *string
	AccountHolder *string
	AccountNumber *string
	SwiftCode     *string
	Currency      string
	MakeDefault   bool
}

// AddBankAccount adds a payout account to a sender profile. The first
// account of a profile becomes its default.
func (s *SenderProfileService) AddBankAccount(ctx context.Context, senderProfileID uuid.UUID, input *BankAccountInput) (*entity.BankAccount, error) {
	profile, err := s.GetSenderProfile(ctx, senderProfileID)
	if err != nil {
		return nil, err
	}

	var fieldErrors []apperror.FieldError
	if input.BankName == nil || strings.TrimSpace(*input.BankName) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "bank_name", Message: "Bank name is required"})
	}
	if input.AccountNumber == nil || strings.TrimSpace(*input.AccountNumber) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "account_number", Message: "Account number is required"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}
	currency, err := normalizeCurrency(input.Currency, "")
	if err != nil {
		return nil, err
	}

	account := &entity.BankAccount{
		UserID:          profile.UserID,
		SenderProfileID: profile.ID,
		BankName:        strings.TrimSpace(*input.BankName),
		AccountNumber:   strings.TrimSpace(*input.AccountNumber),
		SwiftCode:       input.SwiftCode,
		Currency:        currency,
	}
	if input.AccountHolder != nil {
		account.AccountHolder = strings.TrimSpace(*input.AccountHolder)
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	if input.MakeDefault || profile.DefaultBankAccountID == nil {
		profile.DefaultBankAccountID = &account.ID
		if err := s.profileRepo.Update(ctx, profile); err != nil {
			return nil, err
		}
	}
	return account, nil
}

// ListBankAccounts lists the accounts of a sender profile
func (s *SenderProfileService) ListBankAccounts(ctx context.Context, senderProfileID uuid.UUID) ([]entity.BankAccount, error) {
	if _, err := s.GetSenderProfile(ctx, senderProfileID); err != nil {
		return nil, err
	}
	accounts, err := s.accountRepo.ListBySender(ctx, senderProfileID)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []entity.BankAccount{}
	}
	return accounts, nil
}

// UpdateBankAccount updates an account's details
func (s *SenderProfileService) UpdateBankAccount(ctx context.Context, id uuid.UUID, input *BankAccountInput) (*entity.BankAccount, error) {
	account, err := s.getBankAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Currency != "" && !strings.EqualFold(input.Currency, account.Currency) {
		return nil, apperror.NewConflictError("The currency of a bank account cannot be changed")
	}

	if input.BankName != nil && strings.TrimSpace(*input.BankName) != "" {
		account.BankName = strings.TrimSpace(*input.BankName)
	}
	if input.AccountHolder != nil {
		account.AccountHolder = strings.TrimSpace(*input.AccountHolder)
	}
	if input.AccountNumber != nil && strings.TrimSpace(*input.AccountNumber) != "" {
		account.AccountNumber = strings.TrimSpace(*input.AccountNumber)
	}
	if input.SwiftCode != nil {
		account.SwiftCode = input.SwiftCode
	}
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}

	if input.MakeDefault {
		profile, err := s.GetSenderProfile(ctx, account.SenderProfileID)
		if err != nil {
			return nil, err
		}
		profile.DefaultBankAccountID = &account.ID
		if err := s.profileRepo.Update(ctx, profile); err != nil {
			return nil, err
		}
	}
	return account, nil
}

// DeleteBankAccount removes an account
func (s *SenderProfileService) DeleteBankAccount(ctx context.Context, id uuid.UUID) error {
	if _, err := s.getBankAccount(ctx, id); err != nil {
		return err
	}
	return s.accountRepo.Delete(ctx, id)
}

func (s *SenderProfileService) getBankAccount(ctx context.Context, id uuid.UUID) (*entity.BankAccount, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apperror.NewNotFoundError("Bank account")
	}
	return account, nil
}

func ownsAccount(profile *entity.SenderProfile, accountID uuid.UUID) bool {
	for _, a := range profile.BankAccounts {
		if a.ID == accountID {
			return true
		}
	}
	return false
}

// normalizePrefix upper-cases an invoice prefix and checks its characters
func normalizePrefix(prefix string) (string, error) {
	p := strings.ToUpper(strings.TrimSpace(prefix))
	valid := p != "" && len(p) <= 20
	for _, r := range p {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			valid = false
			break
		}
	}
	if !valid {
		return "", apperror.NewValidationError([]apperror.FieldError{
			{Field: "invoice_prefix", Message: "Prefix must be 1-20 letters or digits"},
		})
	}
	return p, nil
}
