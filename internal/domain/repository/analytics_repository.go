package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// StatusTotalResult is the number and sum of invoices in one status and currency
type StatusTotalResult struct {
	Status   enum.InvoiceStatus
	Currency string
	Count    int64
	Total    decimal.Decimal
}

// TopCustomerResult represents a customer's invoiced amount in one currency
type TopCustomerResult struct {
	CustomerID   uuid.UUID
	CustomerName string
	Currency     string
	Total        decimal.Decimal
	InvoiceCount int64
}

// MonthlyTotalResult represents the invoiced amount of one month and currency
type MonthlyTotalResult struct {
	Month    time.Time
	Currency string
	Total    decimal.Decimal
}

// AnalyticsRepository defines interface for dashboard aggregation queries
type AnalyticsRepository interface {
	// GetStatusTotals groups invoices by status and currency
	GetStatusTotals(ctx context.Context) ([]StatusTotalResult, error)

	// GetTopCustomers returns customers with the highest invoiced totals, cancelled invoices excluded
	GetTopCustomers(ctx context.Context, limit int) ([]TopCustomerResult, error)

	// GetMonthlyTotals returns invoiced totals per month since the given time
	GetMonthlyTotals(ctx context.Context, since time.Time) ([]MonthlyTotalResult, error)
}
