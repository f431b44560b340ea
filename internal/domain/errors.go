package domain

import "errors"

var ErrRecordNotFound = errors.New("Record not found")
var ErrDuplicateKey = errors.New("Duplicate key")
var ErrAccountNotFound = errors.New("Account not found")
var ErrInvalidRequest = errors.New("Invalid request")
var ErrCurrencyMismatch = errors.New("Currency mismatch")
