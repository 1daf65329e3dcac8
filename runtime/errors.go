package runtime

import (
	"github.com/pkg/errors"

	"github.com/weegigs/wee-greetings/ledger"
)

var (
	ErrAlreadyExists      = errors.New("account already exists")
	ErrNotFound           = errors.New("account not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrOverflow           = errors.New("arithmetic overflow")
	ErrAlreadyProcessed   = errors.New("transaction already processed")
	ErrUnknownProgram     = errors.New("unknown program")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidInstruction = errors.New("invalid instruction")
)

type ErrorCode string

const (
	CodeAlreadyExists      ErrorCode = "already-exists"
	CodeNotFound           ErrorCode = "not-found"
	CodeUnauthorized       ErrorCode = "unauthorized"
	CodeInsufficientFunds  ErrorCode = "insufficient-funds"
	CodeOverflow           ErrorCode = "overflow"
	CodeAlreadyProcessed   ErrorCode = "already-processed"
	CodeUnknownProgram     ErrorCode = "unknown-program"
	CodeInvalidTransaction ErrorCode = "invalid-transaction"
	CodeInvalidInstruction ErrorCode = "invalid-instruction"
	CodeConflict           ErrorCode = "conflict"
	CodeInternal           ErrorCode = "internal"
)

var codes = []struct {
	code ErrorCode
	err  error
}{
	{CodeAlreadyExists, ErrAlreadyExists},
	{CodeNotFound, ErrNotFound},
	{CodeUnauthorized, ErrUnauthorized},
	{CodeInsufficientFunds, ErrInsufficientFunds},
	{CodeOverflow, ErrOverflow},
	{CodeAlreadyProcessed, ErrAlreadyProcessed},
	{CodeUnknownProgram, ErrUnknownProgram},
	{CodeInvalidTransaction, ErrInvalidTransaction},
	{CodeInvalidInstruction, ErrInvalidInstruction},
	{CodeConflict, ledger.RevisionConflict},
}

// CodeOf classifies err by the first sentinel it wraps.
func CodeOf(err error) ErrorCode {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}

	return CodeInternal
}

// ErrorFor returns the sentinel for a code, or nil for unknown codes.
func ErrorFor(code ErrorCode) error {
	for _, c := range codes {
		if c.code == code {
			return c.err
		}
	}

	return nil
}
