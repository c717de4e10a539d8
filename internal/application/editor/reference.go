package editor

import (
	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
)

// ReferenceData holds the read-only catalogues a draft is edited against.
type ReferenceData struct {
	SenderProfiles []entity.SenderProfile
	BankAccounts   []entity.BankAccount
	Customers      []entity.Customer
	Products       []entity.Product
	CustomPrices   []entity.CustomPrice
}

// Indexes are the lookup tables derived from ReferenceData. They are built
// once per (re)initialization and never mutated afterwards.
type Indexes struct {
	SenderProfiles map[uuid.UUID]*entity.SenderProfile
	BankAccounts   map[uuid.UUID]*entity.BankAccount
	Customers      map[uuid.UUID]*entity.Customer
	Products       map[uuid.UUID]*entity.Product
	CustomPrices   map[uuid.UUID]*entity.CustomPrice

	BankAccountsBySender   map[uuid.UUID][]*entity.BankAccount
	CustomPricesByProduct  map[uuid.UUID][]*entity.CustomPrice
	CustomPricesByCustomer map[uuid.UUID][]*entity.CustomPrice

	// input order, for listings
	senderProfiles []*entity.SenderProfile
	products       []*entity.Product
}

// Normalize builds the lookup indexes in a single pass over the inputs.
// Multi-valued groups keep the order of the input slices. The inputs are
// copied so later changes by the caller do not leak into the indexes.
func Normalize(data ReferenceData) *Indexes {
	profiles := append([]entity.SenderProfile(nil), data.SenderProfiles...)
	accounts := append([]entity.BankAccount(nil), data.BankAccounts...)
	customers := append([]entity.Customer(nil), data.Customers...)
	products := append([]entity.Product(nil), data.Products...)
	prices := append([]entity.CustomPrice(nil), data.CustomPrices...)

	idx := &Indexes{
		SenderProfiles:         make(map[uuid.UUID]*entity.SenderProfile, len(profiles)),
		BankAccounts:           make(map[uuid.UUID]*entity.BankAccount, len(accounts)),
		Customers:              make(map[uuid.UUID]*entity.Customer, len(customers)),
		Products:               make(map[uuid.UUID]*entity.Product, len(products)),
		CustomPrices:           make(map[uuid.UUID]*entity.CustomPrice, len(prices)),
		BankAccountsBySender:   make(map[uuid.UUID][]*entity.BankAccount),
		CustomPricesByProduct:  make(map[uuid.UUID][]*entity.CustomPrice),
		CustomPricesByCustomer: make(map[uuid.UUID][]*entity.CustomPrice),
		senderProfiles:         make([]*entity.SenderProfile, 0, len(profiles)),
		products:               make([]*entity.Product, 0, len(products)),
	}

	for i := range profiles {
		p := &profiles[i]
		idx.SenderProfiles[p.ID] = p
		idx.senderProfiles = append(idx.senderProfiles, p)
	}
	for i := range accounts {
		a := &accounts[i]
		idx.BankAccounts[a.ID] = a
		idx.BankAccountsBySender[a.SenderProfileID] = append(idx.BankAccountsBySender[a.SenderProfileID], a)
	}
	for i := range customers {
		c := &customers[i]
		idx.Customers[c.ID] = c
	}
	for i := range products {
		p := &products[i]
		idx.Products[p.ID] = p
		idx.products = append(idx.products, p)
	}
	for i := range prices {
		cp := &prices[i]
		idx.CustomPrices[cp.ID] = cp
		idx.CustomPricesByProduct[cp.ProductID] = append(idx.CustomPricesByProduct[cp.ProductID], cp)
		idx.CustomPricesByCustomer[cp.CustomerID] = append(idx.CustomPricesByCustomer[cp.CustomerID], cp)
	}

	return idx
}

// CustomPriceFor returns the custom price of a product for a customer, or nil.
func (idx *Indexes) CustomPriceFor(customerID, productID uuid.UUID) *entity.CustomPrice {
	for _, cp := range idx.CustomPricesByCustomer[customerID] {
		if cp.ProductID == productID {
			return cp
		}
	}
	return nil
}

// DefaultBankAccount returns the profile's default bank account, falling
// back to its first account. It returns nil when the profile has none.
func (idx *Indexes) DefaultBankAccount(senderProfileID uuid.UUID) *entity.BankAccount {
	accounts := idx.BankAccountsBySender[senderProfileID]
	if len(accounts) == 0 {
		return nil
	}
	if profile, ok := idx.SenderProfiles[senderProfileID]; ok && profile.DefaultBankAccountID != nil {
		for _, a := range accounts {
			if a.ID == *profile.DefaultBankAccountID {
				return a
			}
		}
	}
	return accounts[0]
}
