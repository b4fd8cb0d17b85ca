package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	FriendsCategory          = "Friends"
	FriendsPaymentCategory   = "Friends Payment"
	RepaymentSubcategory     = "Repayment"
	EMICategory              = "EMI"
	LoanRepaymentSubcategory = "Loan Repayment"

	// Epsilon absorbs float rounding when comparing repaid amounts.
	Epsilon = 0.1

	// UndoWindowDays is how many whole days a repayment stays reversible.
	UndoWindowDays = 2

	DefaultCurrency = "INR"
)

const (
	ResetPending  ResetStatus = "PENDING"
	ResetResolved ResetStatus = "RESOLVED"
)

type (
	ResetStatus string

	// LoanTerms is set on Debt entries that represent formal loans.
	LoanTerms struct {
		InterestRate float64 // annual, percent
		TenureMonths int
		EMI          float64
		StartDate    Date
		EndDate      Date
		LenderBank   string
	}

	Transaction struct {
		ID                  int64
		UserID              int64
		Date                Date
		Type                TxType
		Category            string
		Subcategory         string
		Amount              float64
		Description         string
		Account             string
		IsCreditCardPayment bool
		IsReinvestment      bool
		IsSelf              bool
		IsRepaid            bool
		PaidAmount          float64
		LinkedID            int64 // 0 when not a repayment
		Loan                *LoanTerms
		CreatedAt           time.Time
	}

	// TransactionPatch carries a partial update. Nil fields are left alone.
	TransactionPatch struct {
		Date                *Date
		Type                *TxType
		Category            *string
		Subcategory         *string
		Amount              *float64
		Description         *string
		Account             *string
		IsCreditCardPayment *bool
		IsReinvestment      *bool
		IsSelf              *bool
		IsRepaid            *bool
		PaidAmount          *float64
		Loan                *LoanTerms // replaces the stored terms
	}

	Category struct {
		ID       int64
		UserID   int64
		Name     string
		Type     TxType
		IsActive bool
		IsLoan   bool
	}

	RecurringItem struct {
		ID        int64
		UserID    int64
		Name      string
		Type      TxType
		Category  string
		Amount    float64
		IsActive  bool
		CreatedAt time.Time
	}

	User struct {
		ID           int64
		Username     string
		PasswordHash string
		IsAdmin      bool
		Currency     string
		CreatedAt    time.Time
	}

	PasswordResetRequest struct {
		ID          int64
		UserID      int64
		Username    string
		Status      ResetStatus
		RequestDate time.Time
	}

	// Filter narrows a transaction listing. Zero values match everything.
	Filter struct {
		Period   Period
		Type     TxType
		Category string
		LinkedID int64
		OnlySelf bool
		OnlyOpen bool
	}
)

// IsFriendsDebt reports whether t is an informal debt to a contact.
func (t Transaction) IsFriendsDebt() bool {
	return t.Type == Debt && t.Category == FriendsCategory
}

// HasEMI reports whether the loan terms fix a monthly installment.
func (t Transaction) HasEMI() bool {
	return t.Loan != nil && t.Loan.EMI > 0 && t.Loan.TenureMonths > 0
}

// TotalPayable is EMI × tenure for installment loans, otherwise Amount.
func (t Transaction) TotalPayable() float64 {
	if t.HasEMI() {
		return t.Loan.EMI * float64(t.Loan.TenureMonths)
	}
	return t.Amount
}

// Outstanding is what is still owed against TotalPayable.
func (t Transaction) Outstanding() float64 {
	return t.TotalPayable() - t.PaidAmount
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, t.Type)
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if len(t.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	if t.PaidAmount < 0 {
		return fmt.Errorf("%w: negative paid amount", ErrInvalidAmount)
	}
	if t.Loan != nil {
		if err := t.Loan.Validate(); err != nil {
			return err
		}
	}
	if t.PaidAmount > t.TotalPayable()+Epsilon {
		return fmt.Errorf("%w: paid %.2f exceeds %.2f payable", ErrInvalidAmount, t.PaidAmount, t.TotalPayable())
	}
	return nil
}

func (l LoanTerms) Validate() error {
	if l.InterestRate < 0 {
		return fmt.Errorf("%w: negative interest rate", ErrInvalidLoanTerm)
	}
	if l.TenureMonths < 0 {
		return fmt.Errorf("%w: negative tenure", ErrInvalidLoanTerm)
	}
	if l.EMI < 0 {
		return fmt.Errorf("%w: negative EMI", ErrInvalidLoanTerm)
	}
	if !l.StartDate.IsZero() && !l.EndDate.IsZero() && l.EndDate.Before(l.StartDate.Time) {
		return fmt.Errorf("%w: end date before start date", ErrInvalidLoanTerm)
	}
	return nil
}

// IsEmpty reports whether the patch changes nothing.
func (p TransactionPatch) IsEmpty() bool {
	return p.Date == nil && p.Type == nil && p.Category == nil && p.Subcategory == nil &&
		p.Amount == nil && p.Description == nil && p.Account == nil &&
		p.IsCreditCardPayment == nil && p.IsReinvestment == nil && p.IsSelf == nil &&
		p.IsRepaid == nil && p.PaidAmount == nil && p.Loan == nil
}

// Apply returns t with the non-nil patch fields written over it.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Subcategory != nil {
		t.Subcategory = *p.Subcategory
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Account != nil {
		t.Account = *p.Account
	}
	if p.IsCreditCardPayment != nil {
		t.IsCreditCardPayment = *p.IsCreditCardPayment
	}
	if p.IsReinvestment != nil {
		t.IsReinvestment = *p.IsReinvestment
	}
	if p.IsSelf != nil {
		t.IsSelf = *p.IsSelf
	}
	if p.IsRepaid != nil {
		t.IsRepaid = *p.IsRepaid
	}
	if p.PaidAmount != nil {
		t.PaidAmount = *p.PaidAmount
	}
	if p.Loan != nil {
		terms := *p.Loan
		t.Loan = &terms
	}
	return t
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, c.Type)
	}
	return nil
}

func (r RecurringItem) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if !r.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, r.Type)
	}
	if r.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
