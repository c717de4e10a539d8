package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/application/editor"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	infraRepo "github.com/sangkips/invoicer-api/internal/infrastructure/repository"
	"github.com/sangkips/invoicer-api/pkg/apperror"
)

// ReferenceLoader provides the catalogues a draft is edited against
type ReferenceLoader interface {
	Load(ctx context.Context) (editor.ReferenceData, error)
}

// InvoiceBackend numbers, loads and persists invoices for the editor
type InvoiceBackend interface {
	editor.NumberGenerator
	editor.InvoiceStore
	GetInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
}

// EditorConfig configures the editing sessions
type EditorConfig struct {
	SessionTTL     time.Duration
	MaxSessions    int
	DefaultDueDays int
}

// EditorSession is one user's open invoice editor
type EditorSession struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
	draft   *editor.Draft
	saver   *editor.Saver
	done    chan struct{}

	// guarded by EditorService.mu
	lastSeen time.Time
}

// EditorService keeps the open editor sessions. Every session owns its own
// draft and save orchestrator; sessions idle for longer than the TTL are
// dropped by Run.
type EditorService struct {
	references ReferenceLoader
	invoices   InvoiceBackend
	cfg        EditorConfig
	now        func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*EditorSession
}

// NewEditorService creates a new editor service
func NewEditorService(references ReferenceLoader, invoices InvoiceBackend, cfg EditorConfig) *EditorService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	return &EditorService{
		references: references,
		invoices:   invoices,
		cfg:        cfg,
		now:        time.Now,
		sessions:   make(map[uuid.UUID]*EditorSession),
	}
}

// Open starts a session on a blank draft, or on an existing invoice when
// invoiceID is set.
func (s *EditorService) Open(ctx context.Context, invoiceID *uuid.UUID) (*EditorSession, editor.Snapshot, error) {
	ownerID, ok := infraRepo.GetOwnerID(ctx)
	if !ok {
		return nil, editor.Snapshot{}, apperror.ErrUnauthorized
	}
	if s.cfg.MaxSessions > 0 && s.countFor(ownerID) >= s.cfg.MaxSessions {
		return nil, editor.Snapshot{}, apperror.NewConflictError("Too many open editor sessions; close one first")
	}

	ref, err := s.references.Load(ctx)
	if err != nil {
		return nil, editor.Snapshot{}, err
	}

	var existing *entity.Invoice
	if invoiceID != nil {
		if existing, err = s.invoices.GetInvoice(ctx, *invoiceID); err != nil {
			return nil, editor.Snapshot{}, err
		}
	}

	opts := []editor.Option{editor.WithClock(s.now)}
	if s.cfg.DefaultDueDays > 0 {
		opts = append(opts, editor.WithDefaultDueDays(s.cfg.DefaultDueDays))
	}
	draft := editor.NewDraft(s.invoices, opts...)
	draft.Initialize(ref, existing)

	sess := &EditorSession{
		ID:       uuid.New(),
		OwnerID:  ownerID,
		draft:    draft,
		saver:    editor.NewSaver(s.invoices),
		done:     make(chan struct{}),
		lastSeen: s.now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	if existing != nil {
		log.Printf("[editor %s] opened invoice %s", sess.ID, existing.ID)
	} else {
		log.Printf("[editor %s] opened blank draft", sess.ID)
	}
	return sess, draft.Snapshot(), nil
}

// Snapshot returns the current state of a session
func (s *EditorService) Snapshot(ctx context.Context, id uuid.UUID) (editor.Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return editor.Snapshot{}, err
	}
	return sess.draft.Snapshot(), nil
}

// UpdateFields applies a patch of plain form fields
func (s *EditorService) UpdateFields(ctx context.Context, id uuid.UUID, patch editor.FormPatch) (editor.Snapshot, error) {
	return s.apply(ctx, id, func(d *editor.Draft) error {
		return d.UpdateFields(patch)
	})
}

// UpdateField sets a single form field by its wire name
func (s *EditorService) UpdateField(ctx context.Context, id uuid.UUID, key string, value any) (editor.Snapshot, error) {
	return s.apply(ctx, id, func(d *editor.Draft) error {
		return d.UpdateField(key, value)
	})
}

// SelectSenderProfile selects a sender, its default bank account and a
// freshly generated invoice number
func (s *EditorService) SelectSenderProfile(ctx context.Context, id, senderProfileID uuid.UUID) (editor.Snapshot, error) {
	return s.apply(ctx, id, func(d *editor.Draft) error {
		return d.SelectSenderProfile(ctx, senderProfileID)
	})
}

// SelectBankAccount selects a bank account of the current sender
func (s *EditorService) SelectBankAccount(ctx context.Context, id, accountID uuid.UUID) (editor.Snapshot, error) {
	return s.apply(ctx, id, func(d *editor.Draft) error {
		return d.SelectBankAccount(accountID)
	})
}

// SelectCustomer selects or, with nil, clears the customer
func (s *EditorService) SelectCustomer(ctx context.Context, id uuid.UUID, customerID *uuid.UUID) (editor.Snapshot, error) {
	return s.apply(ctx, id, func(d *editor.Draft) error {
		return d.SelectCustomer(customerID)
	})
}

// AddItem appends an empty catalogue or custom item
func (s *EditorService) AddItem(ctx context.Context, id uuid.UUID, custom bool) (editor.LineItem, editor.Snapshot, error) {
	var item editor.LineItem
	snap, err := s.apply(ctx, id, func(d *editor.Draft) error {
		if custom {
			item = d.AddCustomItem()
		} else {
			item = d.AddItem()
		}
		return nil
	})
	return item, snap, err
}

// UpdateItem patches one item
func (s *EditorService) UpdateItem(ctx context.Context, id, itemID uuid.UUID, patch editor.ItemPatch) (editor.Snapshot, error) {
	return s.apply(ctx, id, func(d *editor.Draft) error {
		return d.UpdateItem(itemID, patch)
	})
}

// DeleteItem removes one item
func (s *EditorService) DeleteItem(ctx context.Context, id, itemID uuid.UUID) (editor.Snapshot, error) {
	return s.apply(ctx, id, func(d *editor.Draft) error {
		return d.DeleteItem(itemID)
	})
}

// DuplicateItem copies an item directly after the original
func (s *EditorService) DuplicateItem(ctx context.Context, id, itemID uuid.UUID) (editor.LineItem, editor.Snapshot, error) {
	var item editor.LineItem
	snap, err := s.apply(ctx, id, func(d *editor.Draft) error {
		var err error
		item, err = d.DuplicateItem(itemID)
		return err
	})
	return item, snap, err
}

// ReorderItems moves the item at oldIndex to newIndex
func (s *EditorService) ReorderItems(ctx context.Context, id uuid.UUID, oldIndex, newIndex int) (editor.Snapshot, error) {
	return s.apply(ctx, id, func(d *editor.Draft) error {
		return d.ReorderItems(oldIndex, newIndex)
	})
}

// RemoveInvalidItems drops every item flagged invalid and reports how many
func (s *EditorService) RemoveInvalidItems(ctx context.Context, id uuid.UUID) (int, editor.Snapshot, error) {
	var removed int
	snap, err := s.apply(ctx, id, func(d *editor.Draft) error {
		removed = d.RemoveInvalidItems()
		return nil
	})
	return removed, snap, err
}

// RefreshReferences reloads the catalogues without touching the form
func (s *EditorService) RefreshReferences(ctx context.Context, id uuid.UUID) (editor.Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return editor.Snapshot{}, err
	}
	ref, err := s.references.Load(ctx)
	if err != nil {
		return editor.Snapshot{}, err
	}
	sess.draft.RefreshReferences(ref)
	return sess.draft.Snapshot(), nil
}

// Save persists the draft of a session
func (s *EditorService) Save(ctx context.Context, id uuid.UUID) (editor.SaveResult, editor.Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return editor.SaveResult{}, editor.Snapshot{}, err
	}

	result, err := sess.saver.Save(ctx, sess.draft)
	if err != nil {
		log.Printf("[editor %s] save failed: %v", sess.ID, err)
		return editor.SaveResult{}, sess.draft.Snapshot(), err
	}

	if result.Created {
		log.Printf("[editor %s] created invoice %s (%s)", sess.ID, result.InvoiceID, result.InvoiceNumber)
	} else {
		log.Printf("[editor %s] updated invoice %s", sess.ID, result.InvoiceID)
	}
	if result.DroppedItems > 0 {
		log.Printf("[editor %s] %d invalid items left out of the save", sess.ID, result.DroppedItems)
	}
	return result, sess.draft.Snapshot(), nil
}

// Watch streams every snapshot published by the session's draft. Only the
// latest undelivered snapshot is kept. done is closed with the session.
func (s *EditorService) Watch(ctx context.Context, id uuid.UUID) (updates <-chan editor.Snapshot, done <-chan struct{}, cancel func(), err error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}

	ch := make(chan editor.Snapshot, 1)
	unsubscribe := sess.draft.Subscribe(func(snap editor.Snapshot) {
		for {
			select {
			case ch <- snap:
				return
			default:
			}
			select {
			case <-ch:
			default:
			}
		}
	})
	ch <- sess.draft.Snapshot()
	return ch, sess.done, unsubscribe, nil
}

// Close resets the draft and ends the session
func (s *EditorService) Close(ctx context.Context, id uuid.UUID) error {
	sess, err := s.session(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	_, open := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !open {
		return apperror.NewNotFoundError("Editor session")
	}

	s.end(sess)
	log.Printf("[editor %s] closed", sess.ID)
	return nil
}

// ExpireIdle ends every session not used since now minus the TTL
func (s *EditorService) ExpireIdle(now time.Time) int {
	cutoff := now.Add(-s.cfg.SessionTTL)

	var expired []*EditorSession
	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		s.end(sess)
		log.Printf("[editor %s] expired after %s idle", sess.ID, s.cfg.SessionTTL)
	}
	return len(expired)
}

// Run expires idle sessions every interval until ctx is cancelled
func (s *EditorService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.ExpireIdle(s.now())
		}
	}
}

// OpenSessions returns the number of open sessions
func (s *EditorService) OpenSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *EditorService) apply(ctx context.Context, id uuid.UUID, fn func(*editor.Draft) error) (editor.Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return editor.Snapshot{}, err
	}
	if err := fn(sess.draft); err != nil {
		return editor.Snapshot{}, err
	}
	return sess.draft.Snapshot(), nil
}

// session looks up a session of the current owner and marks it used.
// Sessions of other owners are reported as missing.
func (s *EditorService) session(ctx context.Context, id uuid.UUID) (*EditorSession, error) {
	ownerID, ok := infraRepo.GetOwnerID(ctx)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || sess.OwnerID != ownerID {
		return nil, apperror.NewNotFoundError("Editor session")
	}
	sess.lastSeen = s.now()
	return sess, nil
}

func (s *EditorService) countFor(ownerID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sess := range s.sessions {
		if sess.OwnerID == ownerID {
			n++
		}
	}
	return n
}

func (s *EditorService) end(sess *EditorSession) {
	sess.draft.Reset()
	close(sess.done)
}
