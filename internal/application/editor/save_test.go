package editor

import (
	"context"
	"errors"
	"testing"
)

func TestSaveCreatesThenUpdates(t *testing.T) {
	c := newCatalogue()
	d := newUSDDraft(c)
	addCustom(d, "Consulting", "2", "150")
	store := &stubStore{}
	saver := NewSaver(store)

	res, err := saver.Save(context.Background(), d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Created || len(store.created) != 1 {
		t.Fatalf("first save must create")
	}
	snap := d.Snapshot()
	if snap.Dirty {
		t.Fatalf("successful save must leave the draft clean")
	}
	if snap.InvoiceID == nil || *snap.InvoiceID != res.InvoiceID {
		t.Fatalf("draft must adopt the returned identity")
	}

	_ = d.UpdateField("notes", "second pass")
	res, err = saver.Save(context.Background(), d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Created || len(store.updated) != 1 || store.updated[0].Notes != "second pass" {
		t.Fatalf("second save must update")
	}
	if d.Snapshot().Dirty {
		t.Fatalf("expected clean after update")
	}
}

func TestSaveExcludesInvalidItems(t *testing.T) {
	c := newCatalogue()
	d := newUSDDraft(c)
	valid := addCustom(d, "Valid", "1", "10")
	addCatalogueItem(d, c.widgetEUR.ID, "5")
	store := &stubStore{}

	res, err := NewSaver(store).Save(context.Background(), d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DroppedItems != 1 {
		t.Fatalf("expected 1 dropped item got %d", res.DroppedItems)
	}
	payload := store.created[0]
	if len(payload.Items) != 1 || payload.Items[0].ID != valid.ID {
		t.Fatalf("payload must only carry valid items: %+v", payload.Items)
	}

	// the draft itself keeps everything the user entered
	snap := d.Snapshot()
	if len(snap.Form.Items) != 2 {
		t.Fatalf("save must not remove items from the draft")
	}
	if !snap.View.Subtotal.Equal(dec("160")) {
		t.Fatalf("display subtotal covers all items, got %s", snap.View.Subtotal)
	}
}

func TestSaveFailureLeavesDraftDirty(t *testing.T) {
	c := newCatalogue()
	d := newUSDDraft(c)
	boom := errors.New("invoice number already used")
	saver := NewSaver(&stubStore{err: boom})

	_, err := saver.Save(context.Background(), d)
	if !errors.Is(err, boom) || err.Error() != boom.Error() {
		t.Fatalf("expected store error verbatim got %v", err)
	}
	snap := d.Snapshot()
	if !snap.Dirty || snap.InvoiceID != nil {
		t.Fatalf("failed save must not be applied: %+v", snap)
	}
	if saver.InFlight() {
		t.Fatalf("in-flight flag must be released")
	}
}

func TestSaveAdoptsStoreNumber(t *testing.T) {
	c := newCatalogue()
	d := newUSDDraft(c)
	store := &stubStore{number: "INV-0002"}

	res, err := NewSaver(store).Save(context.Background(), d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.InvoiceNumber != "INV-0002" || d.Snapshot().Form.InvoiceNumber != "INV-0002" {
		t.Fatalf("draft must carry the number the store assigned")
	}
}

func TestConcurrentSaveIsRejected(t *testing.T) {
	c := newCatalogue()
	d := newUSDDraft(c)
	store := &stubStore{block: make(chan struct{}), started: make(chan struct{})}
	saver := NewSaver(store)

	done := make(chan error, 1)
	go func() {
		_, err := saver.Save(context.Background(), d)
		done <- err
	}()
	<-store.started

	if !saver.InFlight() {
		t.Fatalf("expected save in flight")
	}
	if _, err := saver.Save(context.Background(), d); !errors.Is(err, ErrSaveInProgress) {
		t.Fatalf("expected save in progress got %v", err)
	}

	// editing stays possible while the save runs
	if err := d.UpdateField("notes", "typed during save"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	close(store.block)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap := d.Snapshot()
	if !snap.Dirty {
		t.Fatalf("edits made during the save must keep the draft dirty")
	}
	if snap.InvoiceID == nil {
		t.Fatalf("identity must still be adopted")
	}
	if len(store.created) != 1 || store.created[0].Notes != "" {
		t.Fatalf("payload must be the form as it was when the save started")
	}
}

func TestSaveDoesNotLeakIntoReloadedDraft(t *testing.T) {
	tests := []struct {
		name   string
		reload func(d *Draft, c catalogue)
	}{
		{"initialize", func(d *Draft, c catalogue) { d.Initialize(c.reference(), nil) }},
		{"reset", func(d *Draft, _ catalogue) { d.Reset() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCatalogue()
			d := newUSDDraft(c)
			addCustom(d, "Consulting", "1", "100")
			store := &stubStore{block: make(chan struct{}), started: make(chan struct{})}
			saver := NewSaver(store)

			done := make(chan error, 1)
			go func() {
				_, err := saver.Save(context.Background(), d)
				done <- err
			}()
			<-store.started

			tt.reload(d, c)
			before := d.Snapshot()

			close(store.block)
			if err := <-done; err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			snap := d.Snapshot()
			if snap.InvoiceID != nil {
				t.Fatalf("reloaded draft adopted the earlier save's identity %s", *snap.InvoiceID)
			}
			if snap.Revision != before.Revision || snap.Form.InvoiceNumber != before.Form.InvoiceNumber || snap.Dirty {
				t.Fatalf("reloaded draft must be left as it was: %+v", snap)
			}

			// the next save creates a new invoice instead of overwriting the old one
			store.block, store.started = nil, nil
			res, err := saver.Save(context.Background(), d)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !res.Created || len(store.updated) != 0 || len(store.created) != 2 {
				t.Fatalf("expected a second create, got created=%d updated=%d", len(store.created), len(store.updated))
			}
		})
	}
}
