package editor

import "errors"

var (
	ErrUnknownField            = errors.New("editor: unknown field")
	ErrInvalidFieldValue       = errors.New("editor: invalid field value")
	ErrItemNotFound            = errors.New("editor: line item not found")
	ErrIndexOutOfRange         = errors.New("editor: item index out of range")
	ErrUnknownSenderProfile    = errors.New("editor: unknown sender profile")
	ErrSenderNotSelectable     = errors.New("editor: sender profile has no bank accounts")
	ErrUnknownBankAccount      = errors.New("editor: unknown bank account")
	ErrBankAccountNotAvailable = errors.New("editor: bank account does not belong to the selected sender profile")
	ErrUnknownCustomer         = errors.New("editor: unknown customer")
	ErrUnknownProduct          = errors.New("editor: unknown product")
	ErrSaveInProgress          = errors.New("editor: a save is already in progress")
)
