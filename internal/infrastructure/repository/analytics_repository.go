package repository

import (
	"context"
	"time"

	"github.com/sangkips/invoicer-api/internal/domain/enum"
	domainRepo "github.com/sangkips/invoicer-api/internal/domain/repository"
	"gorm.io/gorm"
)

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) domainRepo.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) GetStatusTotals(ctx context.Context) ([]domainRepo.StatusTotalResult, error) {
	ownerID, ok := GetOwnerID(ctx)
	if !ok {
		return []domainRepo.StatusTotalResult{}, nil
	}

	var results []domainRepo.StatusTotalResult
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			status,
			currency,
			COUNT(*) as count,
			COALESCE(SUM(total), 0) as total
		FROM invoices
		WHERE user_id = ? AND deleted_at IS NULL
		GROUP BY status, currency
		ORDER BY status, currency
	`, ownerID).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *analyticsRepository) GetTopCustomers(ctx context.Context, limit int) ([]domainRepo.TopCustomerResult, error) {
	ownerID, ok := GetOwnerID(ctx)
	if !ok {
		return []domainRepo.TopCustomerResult{}, nil
	}

	var results []domainRepo.TopCustomerResult
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			i.customer_id as customer_id,
			MAX(i.customer_name) as customer_name,
			i.currency as currency,
			COALESCE(SUM(i.total), 0) as total,
			COUNT(i.id) as invoice_count
		FROM invoices i
		WHERE i.user_id = ? AND i.deleted_at IS NULL
		AND i.customer_id IS NOT NULL AND i.status <> ?
		GROUP BY i.customer_id, i.currency
		ORDER BY total DESC
		LIMIT ?
	`, ownerID, enum.InvoiceStatusCancelled, limit).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *analyticsRepository) GetMonthlyTotals(ctx context.Context, since time.Time) ([]domainRepo.MonthlyTotalResult, error) {
	ownerID, ok := GetOwnerID(ctx)
	if !ok {
		return []domainRepo.MonthlyTotalResult{}, nil
	}

	var results []domainRepo.MonthlyTotalResult
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			date_trunc('month', issue_date) as month,
			currency,
			COALESCE(SUM(total), 0) as total
		FROM invoices
		WHERE user_id = ? AND deleted_at IS NULL
		AND status <> ? AND issue_date >= ?
		GROUP BY month, currency
		ORDER BY month, currency
	`, ownerID, enum.InvoiceStatusCancelled, since).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}
