package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicer-api/internal/application/service"
	"github.com/sangkips/invoicer-api/internal/presentation/http/dto/request"
	"github.com/sangkips/invoicer-api/internal/presentation/http/dto/response"
)

// EditorHandler exposes the invoice editor sessions. Every mutation answers
// with the full snapshot so the client can render form and totals at once.
type EditorHandler struct {
	editorService *service.EditorService
	keepAlive     time.Duration
}

// NewEditorHandler creates a new editor handler
func NewEditorHandler(editorService *service.EditorService) *EditorHandler {
	return &EditorHandler{
		editorService: editorService,
		keepAlive:     25 * time.Second,
	}
}

// Open starts an editor session, on a saved invoice when invoice_id is given
func (h *EditorHandler) Open(c *gin.Context) {
	if !requireUser(c) {
		return
	}

	var req request.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "Invalid request body")
		return
	}

	sess, snap, err := h.editorService.Open(c.Request.Context(), req.InvoiceID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, "Editor session opened", gin.H{
		"session_id": sess.ID,
		"snapshot":   snap,
	})
}

// Get returns the current snapshot of a session
func (h *EditorHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id", "session")
	if !ok {
		return
	}

	snap, err := h.editorService.Snapshot(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, "Editor session retrieved", snap)
}

// Close ends a session and discards unsaved changes
func (h *EditorHandler) Close(c *gin.Context) {
	id, ok := paramID(c, "id", "session")
	if !ok {
		return
	}

	if err := h.editorService.Close(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	response.NoContent(c)
}

// UpdateFields changes several form fields in one step
func (h *EditorHandler) UpdateFields(c *gin.Context) {
	id, ok := paramID(c, "id", "session")
	if !ok {
		return
	}

	var req request.UpdateFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		handleError(c, err)
		return
	}

	snap, err := h.editorService.UpdateFields(c.Request.Context(), id, patch)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, "Invoice updated", snap)
}

// UpdateField changes a single form field by key
func (h *EditorHandler) UpdateField(c *gin.Context) {
	id, ok := paramID(c, "id", "session")
	if !ok {
		return
	}

	var req request.UpdateFieldRequest
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil || req.Key == "" {
		response.BadRequest(c, "Invalid request body")
		return
	}

	snap, err := h.editorService.UpdateField(c.Request.Context(), id, req.Key, req.FieldValue())
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, "Invoice updated", snap)
}

// SelectSenderProfile switches the sender profile. The bank account,
// currency and invoice number follow the new profile.
func (h *EditorHandler) SelectSenderProfile(c *gin.Context) {
	id, ok := paramID(c, "id", "session")
	if !ok {
		return
	}

	var req request.SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == nil {
		response.BadRequest(c, "A sender profile id is required")
		return
	}

	snap, err := h.editorService.SelectSenderProfile(c.Request.Context(), id, *req.ID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, "Sender profile selected", snap)
}

// SelectBankAccount switches the bank account and with it the currency
func (h *EditorHandler) SelectBankAccount(c *gin.Context) {
	id, ok := paramID(c, "id", "session")
	if !ok {
		return
	}

	var req request.SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == nil {
		response.BadRequest(c, "A bank account id is required")
		return
	}

	snap, err := h.editorService.SelectBankAccount(c.Request.Context(), id, *req.ID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, "Bank account selected", snap)
}

// SelectCustomer sets or clears the customer
func (h *EditorHandler) SelectCustomer(c *gin.Context) {
	id, ok := paramID(c, "id", "session")
	if !ok {
		return
	}

	var req request.SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	snap, err := h.editorService.SelectCustomer(c.Request.Context(), id, req.ID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, "Customer selected", snap)
}

// AddItem appends a catalogue or custom line item
func (h *EditorHandler) AddItem(c *gin.Context) {
	id, ok := paramID(c, "id", "session")
	if !ok {
		return
	}

	var req request.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "Invalid request body")
		return
	}

	item, snap, err := h.editorService.AddItem(c.Request.Context(), id, req.Custom)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, "Item added", gin.H{
		"item":     item,
		"snapshot": snap,
	})
}

// UpdateItem changes one line item
func (h *EditorHandler) UpdateItem(c *gin.Context) {
	id, ok := paramID(c, "id", "session")
	if !ok {
		return
	}
	itemID, ok := paramID(c, "itemId", "item")
	if !ok {
		return
	}

	var req request.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	snap, err := h.editorService.UpdateItem(c.Request.Context(), id, itemID, req.ToPatch())
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, "Item updated", snap)
}

// DeleteItem removes one line item
func (h *EditorHandler) DeleteItem(c *gin.Context) {
	id, ok := paramID(c, "id", "session")
	if !ok {
		return
	}
	itemID, ok := paramID(c, "itemId", "item")
	if !ok {
		return
	}

	snap, err := h.editorService.DeleteItem(c.Request.Context(), id, itemID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, "Item deleted", snap)
}

// DuplicateItem inserts a copy of an item right after it
func (h *EditorHandler) DuplicateItem(c *gin.Context) {
	id, ok := paramID(c, "id", "session")
	if !ok {
		return
	}
	itemID, ok := paramID(c, "itemId", "item")
	if !ok {
		return
	}

	item, snap, err := h.editorService.DuplicateItem(c.Request.Context(), id, itemID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, "Item duplicated", gin.H{
		"item":     item,
		"snapshot": snap,
	})
}

// ReorderItems moves an item to another position
func (h *EditorHandler) ReorderItems(c *gin.Context) {
	id, ok := paramID(c, "id", "session")
	if !ok {
		return
	}

	var req request.ReorderItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "old_index and new_index are required")
		return
	}

	snap, err := h.editorService.ReorderItems(c.Request.Context(), id, *req.OldIndex, *req.NewIndex)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, "Items reordered", snap)
}

// RemoveInvalidItems drops every item that cannot be invoiced in the
// current currency
func (h *EditorHandler) RemoveInvalidItems(c *gin.Context) {
	id, ok := paramID(c, "id", "session")
	if !ok {
		return
	}

	removed, snap, err := h.editorService.RemoveInvalidItems(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, "Invalid items removed", gin.H{
		"removed":  removed,
		"snapshot": snap,
	})
}

// Refresh reloads sender profiles, customers and the catalogue
func (h *EditorHandler) Refresh(c *gin.Context) {
	id, ok := paramID(c, "id", "session")
	if !ok {
		return
	}

	snap, err := h.editorService.RefreshReferences(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, "References refreshed", snap)
}

// Save persists the draft. Invalid items are left out of the saved invoice.
func (h *EditorHandler) Save(c *gin.Context) {
	id, ok := paramID(c, "id", "session")
	if !ok {
		return
	}

	result, snap, err := h.editorService.Save(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	status := http.StatusOK
	message := "Invoice updated successfully"
	if result.Created {
		status = http.StatusCreated
		message = "Invoice created successfully"
	}
	response.Success(c, status, message, gin.H{
		"result":   result,
		"snapshot": snap,
	})
}

// Events streams the session's snapshots as server-sent events. The stream
// ends when the client goes away or the session is closed or expires.
func (h *EditorHandler) Events(c *gin.Context) {
	id, ok := paramID(c, "id", "session")
	if !ok {
		return
	}

	updates, done, cancel, err := h.editorService.Watch(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ping := time.NewTicker(h.keepAlive)
	defer ping.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case <-done:
			c.SSEvent("closed", gin.H{"session_id": id})
			return false
		case snap := <-updates:
			c.SSEvent("snapshot", snap)
			return true
		case <-ping.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		}
	})
}
