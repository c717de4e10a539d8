package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus int

const (
	InvoiceStatusDraft     InvoiceStatus = 0
	InvoiceStatusPending   InvoiceStatus = 1
	InvoiceStatusPaid      InvoiceStatus = 2
	InvoiceStatusOverdue   InvoiceStatus = 3
	InvoiceStatusCancelled InvoiceStatus = 4
)

var invoiceStatusNames = [...]string{"Draft", "Pending", "Paid", "Overdue", "Cancelled"}

// AllInvoiceStatuses lists every status in display order
func AllInvoiceStatuses() []InvoiceStatus {
	return []InvoiceStatus{
		InvoiceStatusDraft,
		InvoiceStatusPending,
		InvoiceStatusPaid,
		InvoiceStatusOverdue,
		InvoiceStatusCancelled,
	}
}

func (s InvoiceStatus) String() string {
	if !s.IsValid() {
		return fmt.Sprintf("InvoiceStatus(%d)", int(s))
	}
	return invoiceStatusNames[s]
}

// IsValid reports whether s is one of the defined statuses
func (s InvoiceStatus) IsValid() bool {
	return s >= InvoiceStatusDraft && s <= InvoiceStatusCancelled
}

// ParseInvoiceStatus converts a status name into an InvoiceStatus
func ParseInvoiceStatus(name string) (InvoiceStatus, error) {
	for i, n := range invoiceStatusNames {
		if strings.EqualFold(n, name) {
			return InvoiceStatus(i), nil
		}
	}
	return InvoiceStatusDraft, fmt.Errorf("unknown invoice status %q", name)
}

func (s InvoiceStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *InvoiceStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		if !InvoiceStatus(i).IsValid() {
			return fmt.Errorf("unknown invoice status %d", i)
		}
		*s = InvoiceStatus(i)
		return nil
	}
	parsed, err := ParseInvoiceStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s InvoiceStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *InvoiceStatus) Scan(value interface{}) error {
	if value == nil {
		*s = InvoiceStatusDraft
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = InvoiceStatus(v)
	case int32:
		*s = InvoiceStatus(v)
	case int:
		*s = InvoiceStatus(v)
	}
	return nil
}

var invoiceTransitions = map[InvoiceStatus]map[InvoiceStatus]struct{}{
	InvoiceStatusDraft:     {InvoiceStatusPending: {}, InvoiceStatusCancelled: {}},
	InvoiceStatusPending:   {InvoiceStatusPaid: {}, InvoiceStatusOverdue: {}, InvoiceStatusCancelled: {}, InvoiceStatusDraft: {}},
	InvoiceStatusOverdue:   {InvoiceStatusPaid: {}, InvoiceStatusCancelled: {}, InvoiceStatusPending: {}},
	InvoiceStatusPaid:      {},
	InvoiceStatusCancelled: {InvoiceStatusDraft: {}},
}

// CanTransitionTo reports whether an invoice in status s may move to status to
func (s InvoiceStatus) CanTransitionTo(to InvoiceStatus) bool {
	if s == to {
		return true
	}
	allowed, ok := invoiceTransitions[s]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}
