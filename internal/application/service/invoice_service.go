package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/application/editor"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	"github.com/sangkips/invoicer-api/internal/domain/repository"
	infraRepo "github.com/sangkips/invoicer-api/internal/infrastructure/repository"
	"github.com/sangkips/invoicer-api/pkg/apperror"
	"github.com/sangkips/invoicer-api/pkg/pagination"
	"github.com/sangkips/invoicer-api/pkg/pdf"
	"github.com/sangkips/invoicer-api/pkg/utils"
	"github.com/shopspring/decimal"
)

// InvoiceService persists invoices and owns the per-sender numbering.
// It is the numbering and persistence backend of the editor.
type InvoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	profileRepo  repository.SenderProfileRepository
	accountRepo  repository.BankAccountRepository
	customerRepo repository.CustomerRepository
	numberWidth  int
}

var (
	_ editor.NumberGenerator = (*InvoiceService)(nil)
	_ editor.InvoiceStore    = (*InvoiceService)(nil)
)

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	profileRepo repository.SenderProfileRepository,
	accountRepo repository.BankAccountRepository,
	customerRepo repository.CustomerRepository,
	numberWidth int,
) *InvoiceService {
	if numberWidth < 1 {
		numberWidth = utils.DefaultNumberWidth
	}
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		profileRepo:  profileRepo,
		accountRepo:  accountRepo,
		customerRepo: customerRepo,
		numberWidth:  numberWidth,
	}
}

// GenerateInvoiceNumber returns the number the sender's next invoice will
// get. The counter is not moved.
func (s *InvoiceService) GenerateInvoiceNumber(ctx context.Context, senderProfileID uuid.UUID) (string, error) {
	profile, err := s.profileRepo.GetByID(ctx, senderProfileID)
	if err != nil {
		return "", err
	}
	if profile == nil {
		return "", apperror.NewNotFoundError("Sender profile")
	}
	return utils.FormatInvoiceNumber(profile.InvoicePrefix, profile.InvoiceCounter+1, s.numberWidth), nil
}

// CreateInvoice persists a new invoice. The sender's counter is consumed in
// the same transaction; an empty or stale sequence number is replaced by the
// freshly issued one while a hand-typed number is kept.
func (s *InvoiceService) CreateInvoice(ctx context.Context, form editor.FormData) (editor.SavedInvoice, error) {
	ownerID, ok := infraRepo.GetOwnerID(ctx)
	if !ok {
		return editor.SavedInvoice{}, apperror.ErrUnauthorized
	}

	invoice, err := s.buildInvoice(ctx, ownerID, uuid.New(), form, nil)
	if err != nil {
		return editor.SavedInvoice{}, err
	}

	if err := s.invoiceRepo.Create(ctx, invoice, s.issue("")); err != nil {
		return editor.SavedInvoice{}, s.translateError(err, invoice.InvoiceNumber)
	}

	return editor.SavedInvoice{ID: invoice.ID, InvoiceNumber: invoice.InvoiceNumber}, nil
}

// UpdateInvoice replaces an invoice. When the sender profile changed, the
// new sender's counter is consumed and its snapshot taken.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, id uuid.UUID, form editor.FormData) (editor.SavedInvoice, error) {
	ownerID, ok := infraRepo.GetOwnerID(ctx)
	if !ok {
		return editor.SavedInvoice{}, apperror.ErrUnauthorized
	}

	existing, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return editor.SavedInvoice{}, err
	}
	if existing == nil {
		return editor.SavedInvoice{}, apperror.NewNotFoundError("Invoice")
	}
	if !existing.Status.CanTransitionTo(form.Status) {
		return editor.SavedInvoice{}, apperror.NewConflictError(
			fmt.Sprintf("Cannot change invoice status from %s to %s", existing.Status, form.Status))
	}

	invoice, err := s.buildInvoice(ctx, ownerID, id, form, existing)
	if err != nil {
		return editor.SavedInvoice{}, err
	}
	invoice.CreatedAt = existing.CreatedAt

	renumber := !sameID(existing.SenderProfileID, invoice.SenderProfileID)
	if !renumber && invoice.InvoiceNumber != existing.InvoiceNumber && invoice.SenderProfileID != nil {
		taken, err := s.invoiceRepo.NumberExists(ctx, *invoice.SenderProfileID, invoice.InvoiceNumber, &id)
		if err != nil {
			return editor.SavedInvoice{}, err
		}
		if taken {
			return editor.SavedInvoice{}, duplicateNumberError(invoice.InvoiceNumber)
		}
	}

	if err := s.invoiceRepo.Update(ctx, invoice, renumber, s.issue(existing.InvoiceNumber)); err != nil {
		return editor.SavedInvoice{}, s.translateError(err, invoice.InvoiceNumber)
	}

	return editor.SavedInvoice{ID: invoice.ID, InvoiceNumber: invoice.InvoiceNumber}, nil
}

// issue assigns the number once the sender row is locked. previous is the
// number the invoice had under its former sender, which never carries over.
func (s *InvoiceService) issue(previous string) repository.IssueFunc {
	return func(sender *entity.SenderProfile, invoice *entity.Invoice) error {
		fresh := utils.FormatInvoiceNumber(sender.InvoicePrefix, sender.InvoiceCounter, s.numberWidth)
		number := invoice.InvoiceNumber
		if number == "" || (previous != "" && number == previous) {
			number = fresh
		} else if _, ok := utils.ParseInvoiceSequence(sender.InvoicePrefix, number); ok {
			number = fresh
		}
		invoice.InvoiceNumber = number

		invoice.SenderName = sender.Name
		invoice.SenderEmail = deref(sender.Email)
		invoice.SenderAddress = deref(sender.Address)
		invoice.SenderTaxID = deref(sender.TaxID)
		return nil
	}
}

// buildInvoice turns a draft payload into an entity, resolving and
// snapshotting the customer and bank account. Snapshots of an existing
// invoice are kept while the selection is unchanged.
func (s *InvoiceService) buildInvoice(ctx context.Context, ownerID, id uuid.UUID, form editor.FormData, existing *entity.Invoice) (*entity.Invoice, error) {
	var fieldErrors []apperror.FieldError
	if form.SenderProfileID == nil {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "sender_profile_id", Message: "Sender profile is required"})
	}
	if form.BankAccountID == nil {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "bank_account_id", Message: "Bank account is required"})
	}
	if !form.IssueDate.IsZero() && !form.DueDate.IsZero() && form.DueDate.Before(form.IssueDate) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "due_date", Message: "Due date must not be before the issue date"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	totals := editor.ComputeTotals(form.Items, form.Discount, form.Shipping, form.TaxRate)
	invoice := &entity.Invoice{
		ID:              id,
		UserID:          ownerID,
		InvoiceNumber:   form.InvoiceNumber,
		Status:          form.Status,
		SenderProfileID: form.SenderProfileID,
		BankAccountID:   form.BankAccountID,
		CustomerID:      form.CustomerID,
		IssueDate:       form.IssueDate,
		DueDate:         form.DueDate,
		Currency:        form.Currency,
		PurchaseOrder:   form.PurchaseOrder,
		PaymentTerms:    form.PaymentTerms,
		TaxRate:         form.TaxRate,
		Discount:        form.Discount,
		Shipping:        form.Shipping,
		Subtotal:        totals.Subtotal,
		TaxAmount:       totals.TaxAmount,
		Total:           totals.Total,
		Notes:           form.Notes,
		Terms:           form.Terms,
		Items:           make([]entity.InvoiceItem, 0, len(form.Items)),
	}
	for i, it := range form.Items {
		invoice.Items = append(invoice.Items, entity.InvoiceItem{
			ID:          it.ID,
			InvoiceID:   id,
			Position:    i,
			ProductID:   it.ProductID,
			Name:        it.Name,
			Description: it.Description,
			Unit:        it.Unit,
			Quantity:    it.Quantity,
			UnitPrice:   it.Price,
			Total:       editor.LineTotal(it.Quantity, it.Price),
		})
	}

	if existing != nil && sameID(existing.SenderProfileID, form.SenderProfileID) {
		invoice.SenderName = existing.SenderName
		invoice.SenderEmail = existing.SenderEmail
		invoice.SenderAddress = existing.SenderAddress
		invoice.SenderTaxID = existing.SenderTaxID
	}

	if existing != nil && sameID(existing.BankAccountID, form.BankAccountID) {
		copyBankSnapshot(invoice, existing)
	} else {
		account, err := s.accountRepo.GetByID(ctx, *form.BankAccountID)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, apperror.NewNotFoundError("Bank account")
		}
		if account.SenderProfileID != *form.SenderProfileID {
			return nil, apperror.NewBadRequestError("Bank account does not belong to the sender profile")
		}
		if !strings.EqualFold(account.Currency, form.Currency) {
			return nil, apperror.NewValidationError([]apperror.FieldError{
				{Field: "currency", Message: "Currency must match the bank account currency " + account.Currency},
			})
		}
		invoice.BankName = account.BankName
		invoice.BankAccountHolder = account.AccountHolder
		invoice.BankAccountNumber = account.AccountNumber
		invoice.BankSwiftCode = deref(account.SwiftCode)
	}
	if invoice.Currency == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "currency", Message: "Currency is required"},
		})
	}

	switch {
	case form.CustomerID == nil:
	case existing != nil && sameID(existing.CustomerID, form.CustomerID):
		invoice.CustomerName = existing.CustomerName
		invoice.CustomerEmail = existing.CustomerEmail
		invoice.CustomerAddress = existing.CustomerAddress
		invoice.CustomerTaxID = existing.CustomerTaxID
	default:
		customer, err := s.customerRepo.GetByID(ctx, *form.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, apperror.NewNotFoundError("Customer")
		}
		invoice.CustomerName = customer.Name
		invoice.CustomerEmail = deref(customer.Email)
		invoice.CustomerAddress = deref(customer.Address)
		invoice.CustomerTaxID = deref(customer.TaxID)
	}

	return invoice, nil
}

func copyBankSnapshot(dst, src *entity.Invoice) {
	dst.BankName = src.BankName
	dst.BankAccountHolder = src.BankAccountHolder
	dst.BankAccountNumber = src.BankAccountNumber
	dst.BankSwiftCode = src.BankSwiftCode
}

func (s *InvoiceService) translateError(err error, number string) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateInvoiceNumber):
		return duplicateNumberError(number)
	case errors.Is(err, repository.ErrSenderProfileNotFound):
		return apperror.NewNotFoundError("Sender profile")
	case errors.Is(err, repository.ErrInvoiceNotFound):
		return apperror.NewNotFoundError("Invoice")
	}
	return err
}

func duplicateNumberError(number string) error {
	return apperror.Wrap(http.StatusConflict, fmt.Sprintf("Invoice number %s is already used by this sender", number), repository.ErrDuplicateInvoiceNumber)
}

// GetInvoice retrieves an invoice with its items
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return invoice, nil
}

// ListInvoices lists invoices with filtering and pagination
func (s *InvoiceService) ListInvoices(ctx context.Context, params *repository.InvoiceFilterParams) (*pagination.PaginatedResult[entity.Invoice], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	invoices, total, err := s.invoiceRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(invoices, pag), nil
}

// DeleteInvoice deletes an invoice. Its number stays reserved.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	return s.translateError(s.invoiceRepo.Delete(ctx, id), "")
}

// ChangeStatus moves an invoice along its lifecycle
func (s *InvoiceService) ChangeStatus(ctx context.Context, id uuid.UUID, status enum.InvoiceStatus) (*entity.Invoice, error) {
	if !status.IsValid() {
		return nil, apperror.NewBadRequestError("Unknown invoice status")
	}
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if !invoice.Status.CanTransitionTo(status) {
		return nil, apperror.NewConflictError(
			fmt.Sprintf("Cannot change invoice status from %s to %s", invoice.Status, status))
	}
	if invoice.Status == status {
		return invoice, nil
	}
	if err := s.invoiceRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	invoice.Status = status
	return invoice, nil
}

// MarkOverdue flags pending invoices whose due date has passed
func (s *InvoiceService) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	today := now.UTC().Truncate(24 * time.Hour)
	return s.invoiceRepo.MarkOverdue(ctx, today)
}

// ExportPDF renders a persisted invoice
func (s *InvoiceService) ExportPDF(ctx context.Context, id uuid.UUID, w io.Writer) (*entity.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := pdf.Render(w, pdfInvoice(invoice)); err != nil {
		return nil, err
	}
	return invoice, nil
}

func pdfInvoice(inv *entity.Invoice) *pdf.Invoice {
	doc := &pdf.Invoice{
		Number:        inv.InvoiceNumber,
		Status:        inv.Status.String(),
		IssueDate:     formatDate(inv.IssueDate),
		DueDate:       formatDate(inv.DueDate),
		Currency:      inv.Currency,
		PurchaseOrder: inv.PurchaseOrder,
		PaymentTerms:  inv.PaymentTerms,
		From: pdf.Party{
			Name:    inv.SenderName,
			Email:   inv.SenderEmail,
			Address: inv.SenderAddress,
			TaxID:   inv.SenderTaxID,
		},
		To: pdf.Party{
			Name:    inv.CustomerName,
			Email:   inv.CustomerEmail,
			Address: inv.CustomerAddress,
			TaxID:   inv.CustomerTaxID,
		},
		Subtotal:  editor.FormatAmount(inv.Subtotal, inv.Currency),
		Discount:  optionalAmount(inv.Discount, inv.Currency),
		Shipping:  optionalAmount(inv.Shipping, inv.Currency),
		TaxAmount: editor.FormatAmount(inv.TaxAmount, inv.Currency),
		Total:     editor.FormatAmount(inv.Total, inv.Currency),
		Notes:     inv.Notes,
		Terms:     inv.Terms,
	}
	if !inv.TaxRate.IsZero() {
		doc.TaxRate = inv.TaxRate.String()
	}
	if inv.BankName != "" || inv.BankAccountNumber != "" {
		doc.Bank = &pdf.BankDetails{
			BankName:      inv.BankName,
			AccountHolder: inv.BankAccountHolder,
			AccountNumber: inv.BankAccountNumber,
			SwiftCode:     inv.BankSwiftCode,
		}
	}
	for _, it := range inv.Items {
		doc.Lines = append(doc.Lines, pdf.Line{
			Name:        it.Name,
			Description: it.Description,
			Quantity:    it.Quantity.String(),
			Unit:        it.Unit,
			UnitPrice:   editor.FormatAmount(it.UnitPrice, inv.Currency),
			Total:       editor.FormatAmount(it.Total, inv.Currency),
		})
	}
	return doc
}

func optionalAmount(amount decimal.Decimal, currency string) string {
	if amount.IsZero() {
		return ""
	}
	return editor.FormatAmount(amount, currency)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(editor.DateLayout)
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
