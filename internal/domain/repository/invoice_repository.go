package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	"github.com/sangkips/invoicer-api/pkg/pagination"
)

// IssueFunc runs inside the write transaction after the sender profile row
// has been locked and its counter incremented. It assigns the invoice number
// and takes the sender snapshot.
type IssueFunc func(sender *entity.SenderProfile, invoice *entity.Invoice) error

// InvoiceRepository defines the interface for invoice data operations
type InvoiceRepository interface {
	// Create inserts the invoice and its items in one transaction. When the
	// invoice has a sender profile, the profile's counter is consumed and
	// issue is called before the insert.
	Create(ctx context.Context, invoice *entity.Invoice, issue IssueFunc) error
	// Update replaces the invoice header and items. The sender's counter is
	// only consumed when renumber is set.
	Update(ctx context.Context, invoice *entity.Invoice, renumber bool, issue IssueFunc) error
	// GetByID loads the invoice with its items in position order
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	List(ctx context.Context, params *InvoiceFilterParams) ([]entity.Invoice, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.InvoiceStatus) error
	// NumberExists reports whether a sender already issued number, ignoring excludeID
	NumberExists(ctx context.Context, senderProfileID uuid.UUID, number string, excludeID *uuid.UUID) (bool, error)
	// MarkOverdue moves pending invoices due before asOf to overdue
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

// InvoiceFilterParams contains filtering parameters for invoice queries
type InvoiceFilterParams struct {
	Pagination      *pagination.PaginationParams
	Search          string
	Status          *enum.InvoiceStatus
	CustomerID      *uuid.UUID
	SenderProfileID *uuid.UUID
	From            *time.Time
	To              *time.Time
	SortBy          string
	SortOrder       string
}
