package editor

import (
	"sort"
	"strings"

	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SenderProfileOption is a sender profile as offered in the editor.
// Profiles without bank accounts are listed but cannot be selected.
type SenderProfileOption struct {
	Profile    *entity.SenderProfile `json:"profile"`
	Selectable bool                  `json:"selectable"`
}

// ProductOption is a catalogue product with the price that applies to the
// selected customer.
type ProductOption struct {
	Product        *entity.Product `json:"product"`
	Price          decimal.Decimal `json:"price"`
	Currency       string          `json:"currency"`
	HasCustomPrice bool            `json:"has_custom_price"`
}

// GroupedProducts splits active products by whether the selected customer
// has an override for them. A product appears in exactly one group.
type GroupedProducts struct {
	WithCustomPrices []ProductOption `json:"with_custom_prices"`
	Regular          []ProductOption `json:"regular"`
}

// DisplayTotals are the totals rounded to the invoice currency.
type DisplayTotals struct {
	Subtotal  string `json:"subtotal"`
	TaxAmount string `json:"tax_amount"`
	Total     string `json:"total"`
}

// ComputedView is everything the editor UI derives from a draft.
type ComputedView struct {
	SelectedSenderProfile *entity.SenderProfile `json:"selected_sender_profile,omitempty"`
	SelectedCustomer      *entity.Customer      `json:"selected_customer,omitempty"`
	SelectedBankAccount   *entity.BankAccount   `json:"selected_bank_account,omitempty"`
	InvoiceCurrency       string                `json:"invoice_currency"`
	AvailableBankAccounts []*entity.BankAccount `json:"available_bank_accounts"`
	SenderProfileOptions  []SenderProfileOption `json:"sender_profile_options"`
	GroupedProducts       GroupedProducts       `json:"grouped_products"`
	InvalidItems          []InvalidItem         `json:"invalid_items"`

	// Totals cover every item as entered, invalid ones included. The saved
	// invoice only carries valid items.
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`
	Display   DisplayTotals   `json:"display"`
}

// BuildView derives the computed view from the form and the reference
// indexes. It has no side effects.
func BuildView(form FormData, idx *Indexes) ComputedView {
	if idx == nil {
		idx = Normalize(ReferenceData{})
	}

	view := ComputedView{
		InvoiceCurrency:       form.Currency,
		AvailableBankAccounts: []*entity.BankAccount{},
	}

	if form.SenderProfileID != nil {
		view.SelectedSenderProfile = idx.SenderProfiles[*form.SenderProfileID]
		if accounts := idx.BankAccountsBySender[*form.SenderProfileID]; len(accounts) > 0 {
			view.AvailableBankAccounts = append(view.AvailableBankAccounts, accounts...)
		}
	}
	if form.CustomerID != nil {
		view.SelectedCustomer = idx.Customers[*form.CustomerID]
	}
	if form.BankAccountID != nil {
		view.SelectedBankAccount = idx.BankAccounts[*form.BankAccountID]
	}

	view.SenderProfileOptions = make([]SenderProfileOption, 0, len(idx.senderProfiles))
	for _, p := range idx.senderProfiles {
		view.SenderProfileOptions = append(view.SenderProfileOptions, SenderProfileOption{
			Profile:    p,
			Selectable: len(idx.BankAccountsBySender[p.ID]) > 0,
		})
	}

	view.GroupedProducts = groupProducts(form, idx)
	view.InvalidItems = AnalyzeItems(form, idx)

	totals := ComputeTotals(form.Items, form.Discount, form.Shipping, form.TaxRate)
	view.Subtotal = totals.Subtotal
	view.TaxAmount = totals.TaxAmount
	view.Total = totals.Total
	view.Display = DisplayTotals{
		Subtotal:  FormatAmount(totals.Subtotal, form.Currency),
		TaxAmount: FormatAmount(totals.TaxAmount, form.Currency),
		Total:     FormatAmount(totals.Total, form.Currency),
	}

	return view
}

func groupProducts(form FormData, idx *Indexes) GroupedProducts {
	groups := GroupedProducts{
		WithCustomPrices: []ProductOption{},
		Regular:          []ProductOption{},
	}

	for _, p := range idx.products {
		if !p.IsActive {
			continue
		}
		if form.CustomerID != nil {
			if cp := idx.CustomPriceFor(*form.CustomerID, p.ID); cp != nil {
				groups.WithCustomPrices = append(groups.WithCustomPrices, ProductOption{
					Product:        p,
					Price:          cp.Price,
					Currency:       cp.Currency,
					HasCustomPrice: true,
				})
				continue
			}
		}
		groups.Regular = append(groups.Regular, ProductOption{
			Product:  p,
			Price:    p.Price,
			Currency: p.Currency,
		})
	}

	sortOptions(groups.WithCustomPrices)
	sortOptions(groups.Regular)
	return groups
}

func sortOptions(options []ProductOption) {
	sort.SliceStable(options, func(i, j int) bool {
		return strings.ToLower(options[i].Product.Name) < strings.ToLower(options[j].Product.Name)
	})
}
