package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicer-api/internal/application/editor"
	"github.com/sangkips/invoicer-api/internal/application/service"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	"github.com/sangkips/invoicer-api/internal/domain/repository"
	"github.com/sangkips/invoicer-api/internal/presentation/http/dto/request"
	"github.com/sangkips/invoicer-api/internal/presentation/http/dto/response"
	"github.com/sangkips/invoicer-api/pkg/pagination"
)

// InvoiceHandler handles saved invoices. Creating and editing goes through
// the editor sessions.
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// List handles listing invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	if !requireUser(c) {
		return
	}

	var filter request.InvoiceFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.InvoiceFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		Search:          filter.Search,
		CustomerID:      queryID(c, "customer_id"),
		SenderProfileID: queryID(c, "sender_profile_id"),
		SortBy:          filter.SortBy,
		SortOrder:       filter.SortOrder,
	}

	if filter.Status != "" {
		status, err := enum.ParseInvoiceStatus(filter.Status)
		if err != nil {
			response.BadRequest(c, "Invalid status filter")
			return
		}
		params.Status = &status
	}
	if filter.From != "" {
		from, err := time.Parse(editor.DateLayout, filter.From)
		if err != nil {
			response.BadRequest(c, "Invalid 'from' date, expected YYYY-MM-DD")
			return
		}
		params.From = &from
	}
	if filter.To != "" {
		to, err := time.Parse(editor.DateLayout, filter.To)
		if err != nil {
			response.BadRequest(c, "Invalid 'to' date, expected YYYY-MM-DD")
			return
		}
		params.To = &to
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), params)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Invoices retrieved successfully", result)
}

// Get handles getting a single invoice with its items
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id", "invoice")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, "Invoice retrieved successfully", invoice)
}

// Delete handles deleting an invoice
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id", "invoice")
	if !ok {
		return
	}

	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	response.NoContent(c)
}

// ChangeStatus moves an invoice to another status
func (h *InvoiceHandler) ChangeStatus(c *gin.Context) {
	id, ok := paramID(c, "id", "invoice")
	if !ok {
		return
	}

	var req request.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	invoice, err := h.invoiceService.ChangeStatus(c.Request.Context(), id, *req.Status)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, "Invoice status updated successfully", invoice)
}

// PDF downloads the invoice as a PDF document
func (h *InvoiceHandler) PDF(c *gin.Context) {
	id, ok := paramID(c, "id", "invoice")
	if !ok {
		return
	}

	var buf bytes.Buffer
	invoice, err := h.invoiceService.ExportPDF(c.Request.Context(), id, &buf)
	if err != nil {
		handleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, invoice.InvoiceNumber))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// NextNumber previews the number the next invoice of a sender profile gets.
// The sequence is not consumed.
func (h *InvoiceHandler) NextNumber(c *gin.Context) {
	id, ok := paramID(c, "id", "sender profile")
	if !ok {
		return
	}

	number, err := h.invoiceService.GenerateInvoiceNumber(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, "Next invoice number generated", gin.H{"invoice_number": number})
}

// MarkOverdue runs the overdue sweep across all owners without waiting for
// the background job
func (h *InvoiceHandler) MarkOverdue(c *gin.Context) {
	updated, err := h.invoiceService.MarkOverdue(c.Request.Context(), time.Now())
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, "Overdue invoices updated", gin.H{"updated": updated})
}
