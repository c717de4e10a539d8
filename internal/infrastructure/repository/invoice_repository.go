package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	domainRepo "github.com/sangkips/invoicer-api/internal/domain/repository"
	"github.com/sangkips/invoicer-api/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) domainRepo.InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice, issue domainRepo.IssueFunc) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if invoice.SenderProfileID != nil {
			if err := consumeNumber(ctx, tx, invoice, issue); err != nil {
				return err
			}
		}
		return tx.Create(invoice).Error
	})
	return translateWriteError(err)
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *entity.Invoice, renumber bool, issue domainRepo.IssueFunc) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entity.Invoice{}).Scopes(OwnerScope(ctx)).
			Where("id = ?", invoice.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domainRepo.ErrInvoiceNotFound
		}

		if renumber && invoice.SenderProfileID != nil {
			if err := consumeNumber(ctx, tx, invoice, issue); err != nil {
				return err
			}
		}

		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&entity.InvoiceItem{}).Error; err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations, "created_at").Save(invoice).Error; err != nil {
			return err
		}
		if len(invoice.Items) == 0 {
			return nil
		}
		return tx.Create(&invoice.Items).Error
	})
	return translateWriteError(err)
}

// consumeNumber locks the sender profile row, moves its counter forward and
// lets issue assign the number while the lock is held.
func consumeNumber(ctx context.Context, tx *gorm.DB, invoice *entity.Invoice, issue domainRepo.IssueFunc) error {
	var sender entity.SenderProfile
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(OwnerScope(ctx)).
		First(&sender, "id = ?", *invoice.SenderProfileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainRepo.ErrSenderProfileNotFound
	}
	if err != nil {
		return err
	}

	sender.InvoiceCounter++
	if err := tx.Model(&entity.SenderProfile{}).
		Where("id = ?", sender.ID).
		Update("invoice_counter", sender.InvoiceCounter).Error; err != nil {
		return err
	}

	if issue != nil {
		return issue(&sender, invoice)
	}
	return nil
}

func translateWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainRepo.ErrDuplicateInvoiceNumber
	}
	return err
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.db.WithContext(ctx).Scopes(OwnerScope(ctx)).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

var invoiceSortColumns = []string{"issue_date", "due_date", "invoice_number", "total", "created_at"}

func (r *invoiceRepository) List(ctx context.Context, params *domainRepo.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	var invoices []entity.Invoice
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Invoice{}).Scopes(OwnerScope(ctx))

	if params.Search != "" {
		query = query.Where("invoice_number ILIKE ? OR customer_name ILIKE ? OR purchase_order ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%", "%"+params.Search+"%")
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}
	if params.SenderProfileID != nil {
		query = query.Where("sender_profile_id = ?", *params.SenderProfileID)
	}
	if params.From != nil {
		query = query.Where("issue_date >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("issue_date <= ?", *params.To)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order(pagination.SortClause(params.SortBy, params.SortOrder, invoiceSortColumns, "issue_date")).
		Order("created_at DESC").
		Find(&invoices).Error

	return invoices, total, err
}

// Delete soft-deletes the invoice; its items are removed
func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Scopes(OwnerScope(ctx)).Delete(&entity.Invoice{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainRepo.ErrInvoiceNotFound
		}
		return tx.Where("invoice_id = ?", id).Delete(&entity.InvoiceItem{}).Error
	})
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.InvoiceStatus) error {
	return r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Scopes(OwnerScope(ctx)).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *invoiceRepository) NumberExists(ctx context.Context, senderProfileID uuid.UUID, number string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Unscoped().Model(&entity.Invoice{}).
		Where("sender_profile_id = ? AND invoice_number = ?", senderProfileID, number)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// MarkOverdue runs for every owner; it is called by the background job
func (r *invoiceRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Where("status = ? AND due_date < ?", enum.InvoiceStatusPending, asOf).
		Update("status", enum.InvoiceStatusOverdue)
	return result.RowsAffected, result.Error
}
