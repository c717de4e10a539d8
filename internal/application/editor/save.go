package editor

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// SavedInvoice is what the persistence layer reports back after a save.
type SavedInvoice struct {
	ID            uuid.UUID `json:"id"`
	InvoiceNumber string    `json:"invoice_number"`
}

// InvoiceStore persists drafts. CreateInvoice increments the sender's
// numbering counter; UpdateInvoice does so only when the sender changed.
type InvoiceStore interface {
	CreateInvoice(ctx context.Context, form FormData) (SavedInvoice, error)
	UpdateInvoice(ctx context.Context, id uuid.UUID, form FormData) (SavedInvoice, error)
}

// SaveResult describes a completed save.
type SaveResult struct {
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	Created       bool      `json:"created"`
	DroppedItems  int       `json:"dropped_items"`
}

// Saver persists one draft at a time. A second save while one is in flight
// is rejected with ErrSaveInProgress.
type Saver struct {
	store    InvoiceStore
	inFlight atomic.Bool
}

func NewSaver(store InvoiceStore) *Saver {
	return &Saver{store: store}
}

// InFlight reports whether a save is running.
func (s *Saver) InFlight() bool {
	return s.inFlight.Load()
}

// Save creates the invoice when the draft has never been persisted and
// updates it otherwise. Invalid items are left out of the payload. Errors
// from the store are returned unchanged and leave the draft dirty.
func (s *Saver) Save(ctx context.Context, d *Draft) (SaveResult, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return SaveResult{}, ErrSaveInProgress
	}
	defer s.inFlight.Store(false)

	st := d.savePayload()
	payload, id := st.payload, st.invoiceID

	var (
		saved SavedInvoice
		err   error
	)
	if id == nil {
		saved, err = s.store.CreateInvoice(ctx, payload)
	} else {
		saved, err = s.store.UpdateInvoice(ctx, *id, payload)
	}
	if err != nil {
		return SaveResult{}, err
	}

	d.markSaved(saved, st)

	number := saved.InvoiceNumber
	if number == "" {
		number = payload.InvoiceNumber
	}
	return SaveResult{
		InvoiceID:     saved.ID,
		InvoiceNumber: number,
		Created:       id == nil,
		DroppedItems:  st.dropped,
	}, nil
}
