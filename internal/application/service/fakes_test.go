package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	"github.com/sangkips/invoicer-api/internal/domain/repository"
	infraRepo "github.com/sangkips/invoicer-api/internal/infrastructure/repository"
	"github.com/sangkips/invoicer-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

var testOwner = uuid.MustParse("11111111-1111-1111-1111-111111111111")

func ownerCtx() context.Context {
	return infraRepo.WithOwner(context.Background(), testOwner)
}

func strPtr(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// store is a tiny in-memory database shared by the fake repositories
type store struct {
	mu         sync.Mutex
	profiles   map[uuid.UUID]*entity.SenderProfile
	accounts   map[uuid.UUID]*entity.BankAccount
	customers  map[uuid.UUID]*entity.Customer
	products   map[uuid.UUID]*entity.Product
	prices     map[uuid.UUID]*entity.CustomPrice
	invoices   map[uuid.UUID]*entity.Invoice
	referenced map[uuid.UUID]bool
	createErr  error
}

func newStore() *store {
	return &store{
		profiles:   map[uuid.UUID]*entity.SenderProfile{},
		accounts:   map[uuid.UUID]*entity.BankAccount{},
		customers:  map[uuid.UUID]*entity.Customer{},
		products:   map[uuid.UUID]*entity.Product{},
		prices:     map[uuid.UUID]*entity.CustomPrice{},
		invoices:   map[uuid.UUID]*entity.Invoice{},
		referenced: map[uuid.UUID]bool{},
	}
}

func (s *store) addProfile(name, prefix string) *entity.SenderProfile {
	p := &entity.SenderProfile{ID: uuid.New(), UserID: testOwner, Name: name, InvoicePrefix: prefix, Email: strPtr(name + "@example.test")}
	s.profiles[p.ID] = p
	return p
}

func (s *store) addAccount(profile *entity.SenderProfile, currency string) *entity.BankAccount {
	a := &entity.BankAccount{ID: uuid.New(), UserID: testOwner, SenderProfileID: profile.ID, BankName: "Bank " + currency, AccountNumber: "ACC-" + currency, Currency: currency}
	s.accounts[a.ID] = a
	if profile.DefaultBankAccountID == nil {
		profile.DefaultBankAccountID = &a.ID
	}
	return a
}

func (s *store) addCustomer(name string) *entity.Customer {
	c := &entity.Customer{ID: uuid.New(), UserID: testOwner, Name: name, Currency: "USD", Address: strPtr("1 " + name + " Way")}
	s.customers[c.ID] = c
	return c
}

func (s *store) addProduct(name, price, currency string) *entity.Product {
	p := &entity.Product{ID: uuid.New(), UserID: testOwner, Name: name, Price: dec(price), Currency: currency, IsActive: true}
	s.products[p.ID] = p
	return p
}

func visible(ctx context.Context, userID uuid.UUID) bool {
	owner, ok := infraRepo.GetOwnerID(ctx)
	return ok && owner == userID
}

type fakeProfileRepo struct{ s *store }

func (r fakeProfileRepo) Create(ctx context.Context, p *entity.SenderProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.s.profiles[p.ID] = &cp
	return nil
}

func (r fakeProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.SenderProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok || !visible(ctx, p.UserID) {
		return nil, nil
	}
	cp := *p
	cp.BankAccounts = nil
	for _, a := range r.s.accounts {
		if a.SenderProfileID == id {
			cp.BankAccounts = append(cp.BankAccounts, *a)
		}
	}
	return &cp, nil
}

func (r fakeProfileRepo) Update(ctx context.Context, p *entity.SenderProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := r.s.profiles[p.ID]
	counter := stored.InvoiceCounter
	cp := *p
	cp.InvoiceCounter = counter
	r.s.profiles[p.ID] = &cp
	return nil
}

func (r fakeProfileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.profiles, id)
	return nil
}

func (r fakeProfileRepo) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.SenderProfile, int64, error) {
	all, _ := r.ListAll(ctx)
	return all, int64(len(all)), nil
}

func (r fakeProfileRepo) ListAll(ctx context.Context) ([]entity.SenderProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.SenderProfile
	for _, p := range r.s.profiles {
		if visible(ctx, p.UserID) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeAccountRepo struct{ s *store }

func (r fakeAccountRepo) Create(ctx context.Context, a *entity.BankAccount) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	r.s.accounts[a.ID] = &cp
	return nil
}

func (r fakeAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.BankAccount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok || !visible(ctx, a.UserID) {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r fakeAccountRepo) Update(ctx context.Context, a *entity.BankAccount) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *a
	r.s.accounts[a.ID] = &cp
	return nil
}

func (r fakeAccountRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.accounts, id)
	return nil
}

func (r fakeAccountRepo) ListBySender(ctx context.Context, senderProfileID uuid.UUID) ([]entity.BankAccount, error) {
	all, _ := r.ListAll(ctx)
	var out []entity.BankAccount
	for _, a := range all {
		if a.SenderProfileID == senderProfileID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r fakeAccountRepo) ListAll(ctx context.Context) ([]entity.BankAccount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.BankAccount
	for _, a := range r.s.accounts {
		if visible(ctx, a.UserID) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out, nil
}

type fakeCustomerRepo struct{ s *store }

func (r fakeCustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.s.customers[c.ID] = &cp
	return nil
}

func (r fakeCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok || !visible(ctx, c.UserID) {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r fakeCustomerRepo) Update(ctx context.Context, c *entity.Customer) error {
	return r.Create(ctx, c)
}

func (r fakeCustomerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.customers, id)
	return nil
}

func (r fakeCustomerRepo) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error) {
	all, _ := r.ListAll(ctx)
	return all, int64(len(all)), nil
}

func (r fakeCustomerRepo) ListAll(ctx context.Context) ([]entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Customer
	for _, c := range r.s.customers {
		if visible(ctx, c.UserID) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeProductRepo struct{ s *store }

func (r fakeProductRepo) Create(ctx context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r fakeProductRepo) CreateBatch(ctx context.Context, products []entity.Product) error {
	for i := range products {
		if err := r.Create(ctx, &products[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r fakeProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || !visible(ctx, p.UserID) {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r fakeProductRepo) Update(ctx context.Context, p *entity.Product) error {
	return r.Create(ctx, p)
}

func (r fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.products, id)
	return nil
}

func (r fakeProductRepo) List(ctx context.Context, params *repository.ProductFilterParams) ([]entity.Product, int64, error) {
	all, _ := r.ListAll(ctx)
	return all, int64(len(all)), nil
}

func (r fakeProductRepo) ListAll(ctx context.Context) ([]entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Product
	for _, p := range r.s.products {
		if visible(ctx, p.UserID) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r fakeProductRepo) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.referenced[id], nil
}

type fakePriceRepo struct{ s *store }

func (r fakePriceRepo) Create(ctx context.Context, p *entity.CustomPrice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.s.prices[p.ID] = &cp
	return nil
}

func (r fakePriceRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.CustomPrice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.prices[id]
	if !ok || !visible(ctx, p.UserID) {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r fakePriceRepo) GetByPair(ctx context.Context, customerID, productID uuid.UUID) (*entity.CustomPrice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.prices {
		if p.CustomerID == customerID && p.ProductID == productID && visible(ctx, p.UserID) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r fakePriceRepo) Update(ctx context.Context, p *entity.CustomPrice) error {
	return r.Create(ctx, p)
}

func (r fakePriceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.prices, id)
	return nil
}

func (r fakePriceRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.CustomPrice, error) {
	all, _ := r.ListAll(ctx)
	var out []entity.CustomPrice
	for _, p := range all {
		if p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r fakePriceRepo) ListAll(ctx context.Context) ([]entity.CustomPrice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.CustomPrice
	for _, p := range r.s.prices {
		if visible(ctx, p.UserID) {
			out = append(out, *p)
		}
	}
	return out, nil
}

// fakeInvoiceRepo mimics the transactional behaviour of the GORM
// repository: the counter only moves when the whole write succeeds.
type fakeInvoiceRepo struct{ s *store }

func (r fakeInvoiceRepo) consume(invoice *entity.Invoice, issue repository.IssueFunc) (*entity.SenderProfile, error) {
	stored, ok := r.s.profiles[*invoice.SenderProfileID]
	if !ok {
		return nil, repository.ErrSenderProfileNotFound
	}
	sender := *stored
	sender.InvoiceCounter++
	if issue != nil {
		if err := issue(&sender, invoice); err != nil {
			return nil, err
		}
	}
	return &sender, nil
}

func (r fakeInvoiceRepo) numberTaken(invoice *entity.Invoice) bool {
	for _, other := range r.s.invoices {
		if other.ID != invoice.ID && other.InvoiceNumber == invoice.InvoiceNumber &&
			sameID(other.SenderProfileID, invoice.SenderProfileID) {
			return true
		}
	}
	return false
}

func (r fakeInvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice, issue repository.IssueFunc) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.createErr != nil {
		return r.s.createErr
	}
	var sender *entity.SenderProfile
	if invoice.SenderProfileID != nil {
		var err error
		if sender, err = r.consume(invoice, issue); err != nil {
			return err
		}
	}
	if r.numberTaken(invoice) {
		return repository.ErrDuplicateInvoiceNumber
	}
	if sender != nil {
		r.s.profiles[sender.ID].InvoiceCounter = sender.InvoiceCounter
	}
	cp := *invoice
	cp.Items = append([]entity.InvoiceItem(nil), invoice.Items...)
	cp.CreatedAt = time.Now()
	r.s.invoices[invoice.ID] = &cp
	return nil
}

func (r fakeInvoiceRepo) Update(ctx context.Context, invoice *entity.Invoice, renumber bool, issue repository.IssueFunc) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.invoices[invoice.ID]; !ok {
		return repository.ErrInvoiceNotFound
	}
	var sender *entity.SenderProfile
	if renumber && invoice.SenderProfileID != nil {
		var err error
		if sender, err = r.consume(invoice, issue); err != nil {
			return err
		}
	}
	if r.numberTaken(invoice) {
		return repository.ErrDuplicateInvoiceNumber
	}
	if sender != nil {
		r.s.profiles[sender.ID].InvoiceCounter = sender.InvoiceCounter
	}
	cp := *invoice
	cp.Items = append([]entity.InvoiceItem(nil), invoice.Items...)
	r.s.invoices[invoice.ID] = &cp
	return nil
}

func (r fakeInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok || !visible(ctx, inv.UserID) {
		return nil, nil
	}
	cp := *inv
	cp.Items = append([]entity.InvoiceItem(nil), inv.Items...)
	return &cp, nil
}

func (r fakeInvoiceRepo) List(ctx context.Context, params *repository.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Invoice
	for _, inv := range r.s.invoices {
		if !visible(ctx, inv.UserID) {
			continue
		}
		if params.Status != nil && inv.Status != *params.Status {
			continue
		}
		out = append(out, *inv)
	}
	return out, int64(len(out)), nil
}

func (r fakeInvoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok || !visible(ctx, inv.UserID) {
		return repository.ErrInvoiceNotFound
	}
	delete(r.s.invoices, id)
	return nil
}

func (r fakeInvoiceRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.InvoiceStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.invoices[id].Status = status
	return nil
}

func (r fakeInvoiceRepo) NumberExists(ctx context.Context, senderProfileID uuid.UUID, number string, excludeID *uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.invoices {
		if excludeID != nil && inv.ID == *excludeID {
			continue
		}
		if inv.SenderProfileID != nil && *inv.SenderProfileID == senderProfileID && inv.InvoiceNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeInvoiceRepo) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, inv := range r.s.invoices {
		if inv.Status == enum.InvoiceStatusPending && inv.DueDate.Before(asOf) {
			inv.Status = enum.InvoiceStatusOverdue
			n++
		}
	}
	return n, nil
}

func newInvoiceService(s *store) *InvoiceService {
	return NewInvoiceService(fakeInvoiceRepo{s}, fakeProfileRepo{s}, fakeAccountRepo{s}, fakeCustomerRepo{s}, 4)
}

func newReferenceService(s *store) *ReferenceService {
	return NewReferenceService(fakeProfileRepo{s}, fakeAccountRepo{s}, fakeCustomerRepo{s}, fakeProductRepo{s}, fakePriceRepo{s})
}
