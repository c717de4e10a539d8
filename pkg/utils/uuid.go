package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DefaultNumberWidth is the zero padding of invoice sequence numbers
const DefaultNumberWidth = 4

// ParseUUID parses a string into a UUID
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(s))
}

// ParseOptionalUUID parses s, returning nil for an empty string
func ParseOptionalUUID(s string) (*uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	id, err := ParseUUID(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// FormatInvoiceNumber renders a sequence number as PREFIX-000N
func FormatInvoiceNumber(prefix string, seq, width int) string {
	if width < 1 {
		width = DefaultNumberWidth
	}
	return fmt.Sprintf("%s-%0*d", strings.ToUpper(strings.TrimSpace(prefix)), width, seq)
}

// ParseInvoiceSequence extracts the sequence from a number produced by
// FormatInvoiceNumber for the given prefix
func ParseInvoiceSequence(prefix, number string) (int, bool) {
	head := strings.ToUpper(strings.TrimSpace(prefix)) + "-"
	if !strings.HasPrefix(number, head) {
		return 0, false
	}
	digits := number[len(head):]
	if digits == "" {
		return 0, false
	}
	seq, err := strconv.Atoi(digits)
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}
