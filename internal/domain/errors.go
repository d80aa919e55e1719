package domain

import "errors"

var (
	ErrNotFound         = errors.New("record not found")
	ErrConflict         = errors.New("conflicting state transition")
	ErrUnauthorized     = errors.New("caller is not the ride owner")
	ErrLedgerSubmission = errors.New("ledger submission failed")
	ErrEventDecoding    = errors.New("event decoding failed")
	ErrNotImplemented   = errors.New("operation not implemented")
)
