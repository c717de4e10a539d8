package editor

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Totals are the financial figures of a set of line items.
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`
}

// LineTotal is quantity × unit price at full precision.
func LineTotal(quantity, price decimal.Decimal) decimal.Decimal {
	return quantity.Mul(price)
}

// Subtotal sums quantity × price over items.
func Subtotal(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(LineTotal(it.Quantity, it.Price))
	}
	return sum
}

// TaxAmount applies the tax rate (a percentage) to the subtotal after the
// discount is taken off and shipping is added.
func TaxAmount(items []LineItem, discount, shipping, taxRate decimal.Decimal) decimal.Decimal {
	return taxOn(Subtotal(items), discount, shipping, taxRate)
}

// Total is subtotal - discount + shipping + tax. A discount larger than the
// taxable base yields a negative total.
func Total(items []LineItem, discount, shipping, taxRate decimal.Decimal) decimal.Decimal {
	return ComputeTotals(items, discount, shipping, taxRate).Total
}

// ComputeTotals derives all three figures in one pass over items.
func ComputeTotals(items []LineItem, discount, shipping, taxRate decimal.Decimal) Totals {
	sub := Subtotal(items)
	tax := taxOn(sub, discount, shipping, taxRate)
	return Totals{
		Subtotal:  sub,
		TaxAmount: tax,
		Total:     sub.Sub(discount).Add(shipping).Add(tax),
	}
}

// Shift(-2) divides by 100 without a rounding step.
func taxOn(subtotal, discount, shipping, taxRate decimal.Decimal) decimal.Decimal {
	return subtotal.Sub(discount).Add(shipping).Mul(taxRate).Shift(-2)
}

var zeroDecimalCurrencies = map[string]struct{}{
	"BIF": {}, "CLP": {}, "DJF": {}, "GNF": {}, "ISK": {}, "JPY": {}, "KMF": {}, "KRW": {},
	"PYG": {}, "RWF": {}, "UGX": {}, "VND": {}, "VUV": {}, "XAF": {}, "XOF": {}, "XPF": {},
}

var threeDecimalCurrencies = map[string]struct{}{
	"BHD": {}, "IQD": {}, "JOD": {}, "KWD": {}, "LYD": {}, "OMR": {}, "TND": {},
}

// MinorUnits returns the number of decimal places used by a currency.
func MinorUnits(currency string) int32 {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if _, ok := zeroDecimalCurrencies[code]; ok {
		return 0
	}
	if _, ok := threeDecimalCurrencies[code]; ok {
		return 3
	}
	return 2
}

// RoundForDisplay rounds an amount to the currency's minor unit.
func RoundForDisplay(amount decimal.Decimal, currency string) decimal.Decimal {
	return amount.Round(MinorUnits(currency))
}

// FormatAmount renders an amount with exactly the currency's minor units.
func FormatAmount(amount decimal.Decimal, currency string) string {
	return amount.StringFixed(MinorUnits(currency))
}
