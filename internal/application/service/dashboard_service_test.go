package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	"github.com/sangkips/invoicer-api/internal/domain/repository"
)

type fakeAnalyticsRepo struct {
	statuses []repository.StatusTotalResult
	top      []repository.TopCustomerResult
	monthly  []repository.MonthlyTotalResult
	since    time.Time
}

func (r *fakeAnalyticsRepo) GetStatusTotals(ctx context.Context) ([]repository.StatusTotalResult, error) {
	return r.statuses, nil
}

func (r *fakeAnalyticsRepo) GetTopCustomers(ctx context.Context, limit int) ([]repository.TopCustomerResult, error) {
	return r.top, nil
}

func (r *fakeAnalyticsRepo) GetMonthlyTotals(ctx context.Context, since time.Time) ([]repository.MonthlyTotalResult, error) {
	r.since = since
	return r.monthly, nil
}

func TestDashboardStats(t *testing.T) {
	s := newStore()
	s.addCustomer("Globex")
	s.addProduct("Widget", "1", "USD")
	analytics := &fakeAnalyticsRepo{
		statuses: []repository.StatusTotalResult{
			{Status: enum.InvoiceStatusDraft, Currency: "USD", Count: 4, Total: dec("400")},
			{Status: enum.InvoiceStatusPending, Currency: "USD", Count: 2, Total: dec("150")},
			{Status: enum.InvoiceStatusOverdue, Currency: "USD", Count: 1, Total: dec("50")},
			{Status: enum.InvoiceStatusOverdue, Currency: "EUR", Count: 1, Total: dec("70")},
			{Status: enum.InvoiceStatusPaid, Currency: "EUR", Count: 3, Total: dec("900")},
		},
		top: []repository.TopCustomerResult{
			{CustomerID: uuid.New(), CustomerName: "Globex", Currency: "EUR", Total: dec("970"), InvoiceCount: 4},
		},
		monthly: []repository.MonthlyTotalResult{
			{Month: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), Currency: "USD", Total: dec("10")},
			{Month: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), Currency: "USD", Total: dec("20")},
		},
	}
	svc := NewDashboardService(analytics, fakeCustomerRepo{s}, fakeProductRepo{s})
	svc.now = func() time.Time { return time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC) }

	stats, err := svc.GetDashboardStats(ownerCtx())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalCustomers != 1 || stats.TotalProducts != 1 || stats.TotalInvoices != 11 {
		t.Fatalf("unexpected counts %+v", stats)
	}
	if !stats.Outstanding["USD"].Equal(dec("200")) || !stats.Outstanding["EUR"].Equal(dec("70")) {
		t.Fatalf("outstanding is pending plus overdue per currency, got %v", stats.Outstanding)
	}
	if !stats.Overdue["USD"].Equal(dec("50")) || !stats.Paid["EUR"].Equal(dec("900")) {
		t.Fatalf("unexpected overdue/paid %v %v", stats.Overdue, stats.Paid)
	}
	if _, ok := stats.Paid["USD"]; ok {
		t.Fatalf("currencies without paid invoices must not appear")
	}
	if len(stats.TopCustomers) != 1 || stats.TopCustomers[0].CustomerName != "Globex" {
		t.Fatalf("unexpected top customers %+v", stats.TopCustomers)
	}
	if stats.MonthlyTotals[0].Month != "2026-02" || stats.MonthlyTotals[1].Month != "2026-04" {
		t.Fatalf("monthly totals must be in month order, got %+v", stats.MonthlyTotals)
	}
	if want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC); !analytics.since.Equal(want) {
		t.Fatalf("expected a twelve month window from %s got %s", want, analytics.since)
	}
}
