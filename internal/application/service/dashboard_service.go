package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	"github.com/sangkips/invoicer-api/internal/domain/repository"
	"github.com/sangkips/invoicer-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// DashboardService provides dashboard statistics
type DashboardService struct {
	analyticsRepo repository.AnalyticsRepository
	customerRepo  repository.CustomerRepository
	productRepo   repository.ProductRepository
	now           func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	analyticsRepo repository.AnalyticsRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
) *DashboardService {
	return &DashboardService{
		analyticsRepo: analyticsRepo,
		customerRepo:  customerRepo,
		productRepo:   productRepo,
		now:           time.Now,
	}
}

// DashboardStats represents dashboard statistics. Amounts are never summed
// across currencies.
type DashboardStats struct {
	TotalCustomers int64                      `json:"total_customers"`
	TotalProducts  int64                      `json:"total_products"`
	TotalInvoices  int64                      `json:"total_invoices"`
	ByStatus       []StatusSummary            `json:"by_status"`
	Outstanding    map[string]decimal.Decimal `json:"outstanding"`
	Overdue        map[string]decimal.Decimal `json:"overdue"`
	Paid           map[string]decimal.Decimal `json:"paid"`
	TopCustomers   []TopCustomer              `json:"top_customers"`
	MonthlyTotals  []MonthlyPoint             `json:"monthly_totals"`
}

// StatusSummary is the number and amount of invoices in one status and currency
type StatusSummary struct {
	Status   enum.InvoiceStatus `json:"status"`
	Currency string             `json:"currency"`
	Count    int64              `json:"count"`
	Total    decimal.Decimal    `json:"total"`
}

// TopCustomer represents a customer's invoiced amount in one currency
type TopCustomer struct {
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Currency     string          `json:"currency"`
	Total        decimal.Decimal `json:"total"`
	InvoiceCount int64           `json:"invoice_count"`
}

// MonthlyPoint represents the invoiced amount of one month and currency
type MonthlyPoint struct {
	Month    string          `json:"month"`
	Currency string          `json:"currency"`
	Total    decimal.Decimal `json:"total"`
}

const (
	topCustomerLimit = 5
	monthlyWindow    = 12
)

// GetDashboardStats returns dashboard statistics for the current owner
func (s *DashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{
		ByStatus:      []StatusSummary{},
		Outstanding:   map[string]decimal.Decimal{},
		Overdue:       map[string]decimal.Decimal{},
		Paid:          map[string]decimal.Decimal{},
		TopCustomers:  []TopCustomer{},
		MonthlyTotals: []MonthlyPoint{},
	}

	// We only need the counts
	countParams := &pagination.PaginationParams{Page: 1, PerPage: 1}

	_, customerCount, err := s.customerRepo.List(ctx, countParams, "")
	if err != nil {
		return nil, err
	}
	stats.TotalCustomers = customerCount

	_, productCount, err := s.productRepo.List(ctx, &repository.ProductFilterParams{Pagination: countParams})
	if err != nil {
		return nil, err
	}
	stats.TotalProducts = productCount

	statusTotals, err := s.analyticsRepo.GetStatusTotals(ctx)
	if err != nil {
		return nil, err
	}
	for _, st := range statusTotals {
		stats.TotalInvoices += st.Count
		stats.ByStatus = append(stats.ByStatus, StatusSummary{
			Status:   st.Status,
			Currency: st.Currency,
			Count:    st.Count,
			Total:    st.Total,
		})
		switch st.Status {
		case enum.InvoiceStatusPending:
			addTo(stats.Outstanding, st.Currency, st.Total)
		case enum.InvoiceStatusOverdue:
			addTo(stats.Outstanding, st.Currency, st.Total)
			addTo(stats.Overdue, st.Currency, st.Total)
		case enum.InvoiceStatusPaid:
			addTo(stats.Paid, st.Currency, st.Total)
		}
	}

	top, err := s.analyticsRepo.GetTopCustomers(ctx, topCustomerLimit)
	if err != nil {
		return nil, err
	}
	for _, c := range top {
		stats.TopCustomers = append(stats.TopCustomers, TopCustomer(c))
	}

	now := s.now().UTC()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(monthlyWindow - 1), 0)
	monthly, err := s.analyticsRepo.GetMonthlyTotals(ctx, since)
	if err != nil {
		return nil, err
	}
	for _, m := range monthly {
		stats.MonthlyTotals = append(stats.MonthlyTotals, MonthlyPoint{
			Month:    m.Month.Format("2006-01"),
			Currency: m.Currency,
			Total:    m.Total,
		})
	}
	sort.SliceStable(stats.MonthlyTotals, func(i, j int) bool {
		return stats.MonthlyTotals[i].Month < stats.MonthlyTotals[j].Month
	})

	return stats, nil
}

func addTo(totals map[string]decimal.Decimal, currency string, amount decimal.Decimal) {
	totals[currency] = totals[currency].Add(amount)
}
