package repository

import "errors"

// Errors returned from transactional writes, where a nil result cannot
// signal a missing row.
var (
	ErrSenderProfileNotFound  = errors.New("sender profile not found")
	ErrInvoiceNotFound        = errors.New("invoice not found")
	ErrDuplicateInvoiceNumber = errors.New("invoice number already used by this sender profile")
)
