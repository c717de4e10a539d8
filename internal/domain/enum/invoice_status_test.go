package enum

import (
	"encoding/json"
	"testing"
)

func TestInvoiceStatusJSON(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  InvoiceStatus
	}{
		{"by name", `"Overdue"`, InvoiceStatusOverdue},
		{"by number", `2`, InvoiceStatusPaid},
		{"draft", `"Draft"`, InvoiceStatusDraft},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got InvoiceStatus
			if err := json.Unmarshal([]byte(tc.input), &got); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v got %v", tc.want, got)
			}
		})
	}

	var s InvoiceStatus
	if err := json.Unmarshal([]byte(`"Archived"`), &s); err == nil {
		t.Fatal("expected error for unknown status name")
	}
	if err := json.Unmarshal([]byte(`9`), &s); err == nil {
		t.Fatal("expected error for out of range status")
	}

	out, err := json.Marshal(InvoiceStatusCancelled)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"Cancelled"` {
		t.Fatalf("expected \"Cancelled\" got %s", out)
	}
}

func TestInvoiceStatusTransitions(t *testing.T) {
	if !InvoiceStatusDraft.CanTransitionTo(InvoiceStatusPending) {
		t.Fatal("expected draft -> pending to be allowed")
	}
	if !InvoiceStatusPending.CanTransitionTo(InvoiceStatusPaid) {
		t.Fatal("expected pending -> paid to be allowed")
	}
	if !InvoiceStatusOverdue.CanTransitionTo(InvoiceStatusPaid) {
		t.Fatal("expected overdue -> paid to be allowed")
	}
	if InvoiceStatusPaid.CanTransitionTo(InvoiceStatusDraft) {
		t.Fatal("unexpected paid -> draft transition allowed")
	}
	if InvoiceStatusDraft.CanTransitionTo(InvoiceStatusPaid) {
		t.Fatal("unexpected draft -> paid transition allowed")
	}
}
