package editor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string { return &s }

// catalogue is a small reference data set shared by the editor tests.
type catalogue struct {
	profileA, profileB, profileEmpty entity.SenderProfile
	accountUSD, accountEUR, accountB entity.BankAccount
	acme, globex                     entity.Customer
	widgetEUR, gadgetUSD, retired    entity.Product
	acmeWidget                       entity.CustomPrice
}

func newCatalogue() catalogue {
	var c catalogue
	c.profileA = entity.SenderProfile{ID: uuid.New(), Name: "Alpha Ltd", InvoicePrefix: "INV"}
	c.profileB = entity.SenderProfile{ID: uuid.New(), Name: "Acme Consulting", InvoicePrefix: "ACME"}
	c.profileEmpty = entity.SenderProfile{ID: uuid.New(), Name: "No Accounts", InvoicePrefix: "NA"}

	c.accountUSD = entity.BankAccount{ID: uuid.New(), SenderProfileID: c.profileA.ID, BankName: "First", Currency: "USD"}
	c.accountEUR = entity.BankAccount{ID: uuid.New(), SenderProfileID: c.profileA.ID, BankName: "Euro", Currency: "EUR"}
	c.accountB = entity.BankAccount{ID: uuid.New(), SenderProfileID: c.profileB.ID, BankName: "Second", Currency: "GBP"}
	c.profileB.DefaultBankAccountID = &c.accountB.ID

	c.acme = entity.Customer{ID: uuid.New(), Name: "Acme Corp", Currency: "USD"}
	c.globex = entity.Customer{ID: uuid.New(), Name: "Globex", Currency: "USD"}

	c.widgetEUR = entity.Product{ID: uuid.New(), Name: "widget", Unit: "pc", Price: dec("30"), Currency: "EUR", IsActive: true}
	c.gadgetUSD = entity.Product{ID: uuid.New(), Name: "Gadget", Unit: "pc", Price: dec("10.50"), Currency: "USD", IsActive: true}
	c.retired = entity.Product{ID: uuid.New(), Name: "Retired", Price: dec("1"), Currency: "USD", IsActive: false}

	c.acmeWidget = entity.CustomPrice{ID: uuid.New(), CustomerID: c.acme.ID, ProductID: c.widgetEUR.ID, Price: dec("42"), Currency: "USD"}
	return c
}

func (c catalogue) reference() ReferenceData {
	return ReferenceData{
		SenderProfiles: []entity.SenderProfile{c.profileA, c.profileB, c.profileEmpty},
		BankAccounts:   []entity.BankAccount{c.accountUSD, c.accountEUR, c.accountB},
		Customers:      []entity.Customer{c.acme, c.globex},
		Products:       []entity.Product{c.widgetEUR, c.gadgetUSD, c.retired},
		CustomPrices:   []entity.CustomPrice{c.acmeWidget},
	}
}

// stubNumbers hands out PREFIX-0001 style numbers without consuming them.
type stubNumbers struct {
	prefixes map[uuid.UUID]string
	err      error
	calls    int
}

func (s *stubNumbers) GenerateInvoiceNumber(_ context.Context, id uuid.UUID) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	prefix, ok := s.prefixes[id]
	if !ok {
		return "", errors.New("sender profile not found")
	}
	return prefix + "-0001", nil
}

func newStubNumbers(c catalogue) *stubNumbers {
	return &stubNumbers{prefixes: map[uuid.UUID]string{
		c.profileA.ID: c.profileA.InvoicePrefix,
		c.profileB.ID: c.profileB.InvoicePrefix,
	}}
}

// stubStore records save calls. When block is set, calls wait until it is
// closed.
type stubStore struct {
	mu      sync.Mutex
	err     error
	block   chan struct{}
	started chan struct{}
	created []FormData
	updated []FormData
	id      uuid.UUID
	number  string
}

func (s *stubStore) CreateInvoice(_ context.Context, form FormData) (SavedInvoice, error) {
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return SavedInvoice{}, s.err
	}
	s.created = append(s.created, form)
	if s.id == uuid.Nil {
		s.id = uuid.New()
	}
	return SavedInvoice{ID: s.id, InvoiceNumber: s.number}, nil
}

func (s *stubStore) UpdateInvoice(_ context.Context, id uuid.UUID, form FormData) (SavedInvoice, error) {
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return SavedInvoice{}, s.err
	}
	s.updated = append(s.updated, form)
	return SavedInvoice{ID: id, InvoiceNumber: s.number}, nil
}

func (s *stubStore) wait() {
	if s.started != nil {
		close(s.started)
	}
	if s.block != nil {
		<-s.block
	}
}

var fixedNow = func() time.Time {
	return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
}

// newUSDDraft returns an initialized draft with profile A and its USD
// account selected.
func newUSDDraft(c catalogue) *Draft {
	d := NewDraft(newStubNumbers(c), WithClock(fixedNow))
	d.Initialize(c.reference(), nil)
	if err := d.SelectSenderProfile(context.Background(), c.profileA.ID); err != nil {
		panic(err)
	}
	return d
}

// addCatalogueItem adds an item for product with the given quantity.
func addCatalogueItem(d *Draft, productID uuid.UUID, qty string) LineItem {
	item := d.AddItem()
	if err := d.UpdateItem(item.ID, ItemPatch{ProductID: &productID, Quantity: decPtr(qty)}); err != nil {
		panic(err)
	}
	return findItem(d.Snapshot().Form, item.ID)
}

func addCustom(d *Draft, name, qty, price string) LineItem {
	item := d.AddCustomItem()
	if err := d.UpdateItem(item.ID, ItemPatch{Name: strPtr(name), Quantity: decPtr(qty), Price: decPtr(price)}); err != nil {
		panic(err)
	}
	return findItem(d.Snapshot().Form, item.ID)
}

func findItem(f FormData, id uuid.UUID) LineItem {
	for _, it := range f.Items {
		if it.ID == id {
			return it
		}
	}
	return LineItem{}
}
