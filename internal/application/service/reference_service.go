package service

import (
	"context"

	"github.com/sangkips/invoicer-api/internal/application/editor"
	"github.com/sangkips/invoicer-api/internal/domain/repository"
)

// ReferenceService loads the catalogues an invoice is edited against
type ReferenceService struct {
	profileRepo  repository.SenderProfileRepository
	accountRepo  repository.BankAccountRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	priceRepo    repository.CustomPriceRepository
}

// NewReferenceService creates a new reference service
func NewReferenceService(
	profileRepo repository.SenderProfileRepository,
	accountRepo repository.BankAccountRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	priceRepo repository.CustomPriceRepository,
) *ReferenceService {
	return &ReferenceService{
		profileRepo:  profileRepo,
		accountRepo:  accountRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		priceRepo:    priceRepo,
	}
}

// Load reads every reference collection of the current owner
func (s *ReferenceService) Load(ctx context.Context) (editor.ReferenceData, error) {
	var ref editor.ReferenceData
	var err error

	if ref.SenderProfiles, err = s.profileRepo.ListAll(ctx); err != nil {
		return ref, err
	}
	if ref.BankAccounts, err = s.accountRepo.ListAll(ctx); err != nil {
		return ref, err
	}
	if ref.Customers, err = s.customerRepo.ListAll(ctx); err != nil {
		return ref, err
	}
	if ref.Products, err = s.productRepo.ListAll(ctx); err != nil {
		return ref, err
	}
	if ref.CustomPrices, err = s.priceRepo.ListAll(ctx); err != nil {
		return ref, err
	}
	return ref, nil
}
