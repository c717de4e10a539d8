// Package editor holds the invoice editor core: a draft invoice, the
// reference catalogues it is edited against, and the view derived from both
// after every change.
package editor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
)

const defaultDueDays = 30

// NumberGenerator returns the next invoice number of a sender profile
// without consuming it.
type NumberGenerator interface {
	GenerateInvoiceNumber(ctx context.Context, senderProfileID uuid.UUID) (string, error)
}

// Snapshot is the state published to observers after every change.
type Snapshot struct {
	Form      FormData     `json:"form"`
	View      ComputedView `json:"view"`
	Dirty     bool         `json:"dirty"`
	InvoiceID *uuid.UUID   `json:"invoice_id,omitempty"`
	Revision  uint64       `json:"revision"`
}

// Observer receives every published snapshot.
type Observer func(Snapshot)

// Option configures a Draft.
type Option func(*Draft)

// WithClock overrides the time source used for default dates.
func WithClock(now func() time.Time) Option {
	return func(d *Draft) { d.now = now }
}

// WithDefaultDueDays sets how many days after issue a blank draft is due.
func WithDefaultDueDays(days int) Option {
	return func(d *Draft) { d.dueDays = days }
}

// Draft owns one invoice being edited. Every mutation replaces the form
// with a new value, rebuilds the computed view, marks the draft dirty and
// notifies observers. A Draft belongs to a single editing session.
type Draft struct {
	mu      sync.Mutex
	numbers NumberGenerator
	now     func() time.Time
	dueDays int

	idx      *Indexes
	form     FormData
	view     ComputedView
	dirty    bool
	revision uint64
	// generation changes only when the draft is reloaded or reset
	generation uint64

	invoiceID      *uuid.UUID
	loadedSenderID *uuid.UUID
	loadedNumber   string

	observers    map[int]Observer
	nextObserver int
}

// NewDraft returns a pristine, empty draft.
func NewDraft(numbers NumberGenerator, opts ...Option) *Draft {
	d := &Draft{
		numbers:   numbers,
		now:       time.Now,
		dueDays:   defaultDueDays,
		observers: make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.resetLocked()
	return d
}

// Subscribe registers an observer and returns a function removing it.
func (d *Draft) Subscribe(fn Observer) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextObserver
	d.nextObserver++
	d.observers[id] = fn
	return func() {
		d.mu.Lock()
		delete(d.observers, id)
		d.mu.Unlock()
	}
}

// Snapshot returns the current state.
func (d *Draft) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

// Initialize rebuilds the indexes from ref and loads existing, or a blank
// form when existing is nil. The draft starts clean.
func (d *Draft) Initialize(ref ReferenceData, existing *entity.Invoice) {
	d.mu.Lock()
	d.idx = Normalize(ref)
	d.invoiceID, d.loadedSenderID, d.loadedNumber = nil, nil, ""
	if existing != nil {
		d.form = formFromInvoice(existing)
		id := existing.ID
		d.invoiceID = &id
		d.loadedSenderID = copyID(existing.SenderProfileID)
		d.loadedNumber = existing.InvoiceNumber
	} else {
		d.form = d.blankForm()
	}
	d.view = BuildView(d.form, d.idx)
	d.dirty = false
	d.revision++
	d.generation++
	snap, obs := d.snapshotLocked(), d.observerList()
	d.mu.Unlock()
	notify(obs, snap)
}

// Reset restores the pristine empty state, dropping the reference data.
func (d *Draft) Reset() {
	d.mu.Lock()
	d.resetLocked()
	snap, obs := d.snapshotLocked(), d.observerList()
	d.mu.Unlock()
	notify(obs, snap)
}

// RefreshReferences rebuilds the indexes after the reference catalogues
// changed. The form and the dirty flag are left alone.
func (d *Draft) RefreshReferences(ref ReferenceData) {
	d.mu.Lock()
	d.idx = Normalize(ref)
	d.view = BuildView(d.form, d.idx)
	d.revision++
	snap, obs := d.snapshotLocked(), d.observerList()
	d.mu.Unlock()
	notify(obs, snap)
}

// UpdateField sets one plain form field by its wire name.
func (d *Draft) UpdateField(key string, value any) error {
	patch, err := fieldPatch(key, value)
	if err != nil {
		return err
	}
	return d.UpdateFields(patch)
}

// UpdateFields applies several plain field changes at once.
func (d *Draft) UpdateFields(patch FormPatch) error {
	if err := patch.validate(); err != nil {
		return err
	}
	return d.mutate(func(f FormData) (FormData, error) {
		return patch.apply(f), nil
	})
}

// SelectSenderProfile selects a sender profile together with its default
// (or first) bank account, which also sets the draft currency. It then asks
// the numbering service for the profile's next invoice number. The selection
// is applied before the number arrives; the number is dropped if another
// profile was selected in the meantime.
func (d *Draft) SelectSenderProfile(ctx context.Context, id uuid.UUID) error {
	err := d.mutate(func(f FormData) (FormData, error) {
		if _, ok := d.idx.SenderProfiles[id]; !ok {
			return f, fmt.Errorf("%w: %s", ErrUnknownSenderProfile, id)
		}
		account := d.idx.DefaultBankAccount(id)
		if account == nil {
			return f, fmt.Errorf("%w: %s", ErrSenderNotSelectable, id)
		}
		sid, bid := id, account.ID
		f.SenderProfileID = &sid
		f.BankAccountID = &bid
		f.Currency = account.Currency
		return d.reprice(f), nil
	})
	if err != nil {
		return err
	}

	d.mu.Lock()
	restore := d.invoiceID != nil && d.loadedSenderID != nil && *d.loadedSenderID == id
	loadedNumber := d.loadedNumber
	d.mu.Unlock()

	var number string
	if restore {
		// back on the profile the invoice was issued from: keep its number
		number = loadedNumber
	} else {
		if d.numbers == nil {
			return nil
		}
		number, err = d.numbers.GenerateInvoiceNumber(ctx, id)
		if err != nil {
			// the previous profile's number must not survive the switch
			_ = d.mutate(func(f FormData) (FormData, error) {
				if f.SenderProfileID == nil || *f.SenderProfileID != id || f.InvoiceNumber == "" {
					return f, errStale
				}
				f.InvoiceNumber = ""
				return f, nil
			})
			return err
		}
	}

	return d.mutate(func(f FormData) (FormData, error) {
		if f.SenderProfileID == nil || *f.SenderProfileID != id {
			return f, errStale
		}
		f.InvoiceNumber = number
		return f, nil
	})
}

// SelectBankAccount selects a bank account of the current sender profile and
// switches the draft to its currency.
func (d *Draft) SelectBankAccount(id uuid.UUID) error {
	return d.mutate(func(f FormData) (FormData, error) {
		account, ok := d.idx.BankAccounts[id]
		if !ok {
			return f, fmt.Errorf("%w: %s", ErrUnknownBankAccount, id)
		}
		if f.SenderProfileID != nil && account.SenderProfileID != *f.SenderProfileID {
			return f, fmt.Errorf("%w: %s", ErrBankAccountNotAvailable, id)
		}
		bid := account.ID
		f.BankAccountID = &bid
		f.Currency = account.Currency
		return d.reprice(f), nil
	})
}

// SelectCustomer selects the billed customer; nil clears the selection.
func (d *Draft) SelectCustomer(id *uuid.UUID) error {
	return d.mutate(func(f FormData) (FormData, error) {
		if id != nil {
			if _, ok := d.idx.Customers[*id]; !ok {
				return f, fmt.Errorf("%w: %s", ErrUnknownCustomer, *id)
			}
		}
		f.CustomerID = copyID(id)
		return d.reprice(f), nil
	})
}

// AddItem appends an empty item.
func (d *Draft) AddItem() LineItem {
	item := CreateItem()
	_ = d.mutate(func(f FormData) (FormData, error) {
		f.Items = append(f.Items, item)
		return f, nil
	})
	return item
}

// AddCustomItem appends an empty free-text item.
func (d *Draft) AddCustomItem() LineItem {
	item := CreateCustomItem()
	_ = d.mutate(func(f FormData) (FormData, error) {
		f.Items = append(f.Items, item)
		return f, nil
	})
	return item
}

// UpdateItem changes one item. No other item is touched.
func (d *Draft) UpdateItem(id uuid.UUID, patch ItemPatch) error {
	if err := patch.validate(); err != nil {
		return err
	}
	return d.mutate(func(f FormData) (FormData, error) {
		i := f.itemIndex(id)
		if i < 0 {
			return f, fmt.Errorf("%w: %s", ErrItemNotFound, id)
		}
		item := f.Items[i]

		if patch.Custom {
			item.ProductID = nil
			item.Custom = true
		}
		if patch.ProductID != nil {
			product, ok := d.idx.Products[*patch.ProductID]
			if !ok {
				return f, fmt.Errorf("%w: %s", ErrUnknownProduct, *patch.ProductID)
			}
			pid := product.ID
			item.ProductID = &pid
			item.Custom = false
			item.Name = product.Name
			item.Description = ""
			if product.Description != nil {
				item.Description = *product.Description
			}
			item.Unit = product.Unit
			if price, ok := resolvePrice(pid, f.CustomerID, f.Currency, d.idx); ok {
				item.Price = price
			} else {
				item.Price = product.Price
			}
		}
		if patch.Name != nil {
			item.Name = *patch.Name
		}
		if patch.Description != nil {
			item.Description = *patch.Description
		}
		if patch.Unit != nil {
			item.Unit = *patch.Unit
		}
		if patch.Quantity != nil {
			item.Quantity = *patch.Quantity
		}
		if patch.Price != nil {
			item.Price = *patch.Price
		}

		f.Items[i] = item.withTotal()
		return f, nil
	})
}

// DeleteItem removes one item.
func (d *Draft) DeleteItem(id uuid.UUID) error {
	return d.mutate(func(f FormData) (FormData, error) {
		i := f.itemIndex(id)
		if i < 0 {
			return f, fmt.Errorf("%w: %s", ErrItemNotFound, id)
		}
		f.Items = append(f.Items[:i], f.Items[i+1:]...)
		return f, nil
	})
}

// DuplicateItem inserts a copy of an item right after it.
func (d *Draft) DuplicateItem(id uuid.UUID) (LineItem, error) {
	var dup LineItem
	err := d.mutate(func(f FormData) (FormData, error) {
		i := f.itemIndex(id)
		if i < 0 {
			return f, fmt.Errorf("%w: %s", ErrItemNotFound, id)
		}
		dup = DuplicateItem(f.Items[i])
		items := make([]LineItem, 0, len(f.Items)+1)
		items = append(items, f.Items[:i+1]...)
		items = append(items, dup)
		items = append(items, f.Items[i+1:]...)
		f.Items = items
		return f, nil
	})
	return dup, err
}

// ReorderItems moves the item at oldIndex to newIndex. Totals do not depend
// on order so they are carried over; only the invalid-item list is re-derived
// to follow the new order.
func (d *Draft) ReorderItems(oldIndex, newIndex int) error {
	d.mu.Lock()
	n := len(d.form.Items)
	if oldIndex < 0 || oldIndex >= n || newIndex < 0 || newIndex >= n {
		d.mu.Unlock()
		return fmt.Errorf("%w: %d -> %d of %d", ErrIndexOutOfRange, oldIndex, newIndex, n)
	}
	next := d.form.clone()
	moved := next.Items[oldIndex]
	next.Items = append(next.Items[:oldIndex], next.Items[oldIndex+1:]...)
	next.Items = append(next.Items[:newIndex], append([]LineItem{moved}, next.Items[newIndex:]...)...)

	d.form = next
	d.view.InvalidItems = AnalyzeItems(next, d.idx)
	d.dirty = true
	d.revision++
	snap, obs := d.snapshotLocked(), d.observerList()
	d.mu.Unlock()
	notify(obs, snap)
	return nil
}

// RemoveInvalidItems drops every invalid item and reports how many went.
func (d *Draft) RemoveInvalidItems() int {
	removed := 0
	_ = d.mutate(func(f FormData) (FormData, error) {
		kept, dropped := splitValid(f, d.idx)
		if dropped == 0 {
			return f, errStale
		}
		removed = dropped
		f.Items = kept
		return f, nil
	})
	return removed
}

// InvoiceID returns the persisted identity of the draft, if any.
func (d *Draft) InvoiceID() *uuid.UUID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return copyID(d.invoiceID)
}

// SenderChanged reports whether the selected sender profile differs from the
// one the persisted invoice was loaded with.
func (d *Draft) SenderChanged() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.invoiceID == nil {
		return false
	}
	return !sameID(d.loadedSenderID, d.form.SenderProfileID)
}

// savePayload returns the form to persist (invalid items excluded), the
// revision it was taken at, the persisted id and the number of dropped items.
// saveState is the draft as captured when a save starts.
type saveState struct {
	payload    FormData
	revision   uint64
	generation uint64
	invoiceID  *uuid.UUID
	dropped    int
}

func (d *Draft) savePayload() saveState {
	d.mu.Lock()
	defer d.mu.Unlock()
	payload := d.form.clone()
	kept, dropped := splitValid(payload, d.idx)
	payload.Items = kept
	return saveState{
		payload:    payload,
		revision:   d.revision,
		generation: d.generation,
		invoiceID:  copyID(d.invoiceID),
		dropped:    dropped,
	}
}

// markSaved records a successful save. The draft only becomes clean when
// nothing changed while the save was in flight, and a draft that was
// reloaded or reset in the meantime is left untouched.
func (d *Draft) markSaved(saved SavedInvoice, st saveState) {
	d.mu.Lock()
	if d.generation != st.generation {
		d.mu.Unlock()
		return
	}
	revision, payload := st.revision, st.payload
	id := saved.ID
	d.invoiceID = &id
	d.loadedSenderID = copyID(payload.SenderProfileID)
	number := payload.InvoiceNumber
	if saved.InvoiceNumber != "" {
		number = saved.InvoiceNumber
	}
	d.loadedNumber = number
	if d.revision == revision {
		d.form.InvoiceNumber = number
		d.dirty = false
	} else if sameID(d.form.SenderProfileID, payload.SenderProfileID) {
		d.form.InvoiceNumber = number
	}
	d.revision++
	snap, obs := d.snapshotLocked(), d.observerList()
	d.mu.Unlock()
	notify(obs, snap)
}

// errStale aborts a mutation without reporting an error to the caller.
var errStale = fmt.Errorf("editor: mutation no longer applies")

func (d *Draft) mutate(fn func(FormData) (FormData, error)) error {
	d.mu.Lock()
	next, err := fn(d.form.clone())
	if err != nil {
		d.mu.Unlock()
		if err == errStale {
			return nil
		}
		return err
	}
	d.form = next
	d.view = BuildView(next, d.idx)
	d.dirty = true
	d.revision++
	snap, obs := d.snapshotLocked(), d.observerList()
	d.mu.Unlock()
	notify(obs, snap)
	return nil
}

// reprice refreshes the price of catalogue items for which a price in the
// draft currency resolves for the selected customer.
func (d *Draft) reprice(f FormData) FormData {
	for i, item := range f.Items {
		if !item.IsCatalogue() {
			continue
		}
		if price, ok := resolvePrice(*item.ProductID, f.CustomerID, f.Currency, d.idx); ok {
			item.Price = price
			f.Items[i] = item.withTotal()
		}
	}
	return f
}

func (d *Draft) blankForm() FormData {
	issue := d.now().UTC().Truncate(24 * time.Hour)
	return FormData{
		Status:    enum.InvoiceStatusDraft,
		IssueDate: issue,
		DueDate:   issue.AddDate(0, 0, d.dueDays),
		Items:     []LineItem{},
	}
}

func (d *Draft) resetLocked() {
	d.idx = Normalize(ReferenceData{})
	d.form = d.blankForm()
	d.view = BuildView(d.form, d.idx)
	d.dirty = false
	d.revision++
	d.generation++
	d.invoiceID, d.loadedSenderID, d.loadedNumber = nil, nil, ""
}

func (d *Draft) snapshotLocked() Snapshot {
	return Snapshot{
		Form:      d.form.clone(),
		View:      d.view,
		Dirty:     d.dirty,
		InvoiceID: copyID(d.invoiceID),
		Revision:  d.revision,
	}
}

func (d *Draft) observerList() []Observer {
	list := make([]Observer, 0, len(d.observers))
	for _, o := range d.observers {
		list = append(list, o)
	}
	return list
}

func notify(observers []Observer, snap Snapshot) {
	for _, o := range observers {
		o(snap)
	}
}

func splitValid(f FormData, idx *Indexes) ([]LineItem, int) {
	kept := make([]LineItem, 0, len(f.Items))
	dropped := 0
	for _, item := range f.Items {
		if _, bad := classifyItem(item, f.Currency, f.CustomerID, idx); bad {
			dropped++
			continue
		}
		kept = append(kept, item)
	}
	return kept, dropped
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
