package core

import "errors"

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrEmptyCategory   = errors.New("empty category")
	ErrEmptyName       = errors.New("empty name")
	ErrInvalidLoanTerm = errors.New("invalid loan terms")

	// ErrNotFound also covers records owned by another user.
	ErrNotFound = errors.New("not found")

	ErrDuplicateCategory     = errors.New("category already exists")
	ErrNotADebt              = errors.New("transaction is not a debt")
	ErrRepayAmountOutOfRange = errors.New("repayment amount out of range")
	ErrNoRepayment           = errors.New("no repayment recorded")
	ErrUndoWindowExpired     = errors.New("undo window expired")

	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWeakPassword       = errors.New("password too short")
	ErrUnknownCurrency    = errors.New("unknown currency")
)

var rejections = []error{
	ErrInvalidDate, ErrInvalidAmount, ErrInvalidType, ErrEmptyCategory, ErrEmptyName,
	ErrInvalidLoanTerm, ErrNotFound, ErrDuplicateCategory, ErrNotADebt,
	ErrRepayAmountOutOfRange, ErrNoRepayment, ErrUndoWindowExpired, ErrUserExists,
	ErrInvalidCredentials, ErrWeakPassword, ErrUnknownCurrency,
}

// IsRejection reports whether err is a validation or ownership failure
// that left the ledger untouched, as opposed to a storage error.
func IsRejection(err error) bool {
	for _, r := range rejections {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}
