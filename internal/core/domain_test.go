package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-05-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2025-05-03" || d.MonthKey() != "2025-05" {
		t.Fatalf("got %s / %s", d.String(), d.MonthKey())
	}
	if d, err := ParseDate(""); err != nil || !d.IsZero() {
		t.Fatalf("empty string should give zero date, got %v %v", d, err)
	}
	if _, err := ParseDate("03/05/2025"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestDaysSince(t *testing.T) {
	now := NewDate(2025, 3, 10)
	if got := now.DaysSince(NewDate(2025, 3, 8)); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := now.DaysSince(NewDate(2025, 2, 28)); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
}

func TestPeriodContains(t *testing.T) {
	may := MonthPeriod(2025, 5)
	if may.End.String() != "2025-05-31" {
		t.Fatalf("unexpected month end %s", may.End)
	}
	tests := []struct {
		name string
		p    Period
		d    Date
		want bool
	}{
		{"first day", may, NewDate(2025, 5, 1), true},
		{"last day", may, NewDate(2025, 5, 31), true},
		{"before", may, NewDate(2025, 4, 30), false},
		{"after", may, NewDate(2025, 6, 1), false},
		{"open start", Period{End: NewDate(2025, 1, 1)}, NewDate(1999, 1, 1), true},
		{"open end", Period{Start: NewDate(2025, 1, 1)}, NewDate(2099, 1, 1), true},
		{"unbounded", Period{}, NewDate(2025, 1, 1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Contains(tt.d); got != tt.want {
				t.Errorf("Contains(%s) = %v, want %v", tt.d, got, tt.want)
			}
		})
	}
}

func TestParseTxType(t *testing.T) {
	tests := []struct {
		in   string
		want TxType
		ok   bool
	}{
		{"Income", Income, true},
		{"expense", Expense, true},
		{"credit card", CreditCard, true},
		{"credit-card", CreditCard, true},
		{"  Subscriptions ", Subscriptions, true},
		{"Savings", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, err := ParseTxType(tt.in)
		if tt.ok && (err != nil || got != tt.want) {
			t.Fatalf("%q expected %q, got %q (err=%v)", tt.in, tt.want, got, err)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidType) {
			t.Fatalf("%q expected ErrInvalidType, got %v", tt.in, err)
		}
	}
	if len(AllTypes()) != 8 {
		t.Fatalf("expected 8 types, got %d", len(AllTypes()))
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:     NewDate(2025, 5, 1),
		Type:     Income,
		Category: "Salary",
		Amount:   50000,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	nearlyPaid := Transaction{Date: NewDate(2025, 1, 1), Type: Debt, Category: "c", Amount: 100, PaidAmount: 100.05}
	if err := nearlyPaid.Validate(); err != nil {
		t.Fatalf("paid within epsilon should pass, got %v", err)
	}
	loanPaid := Transaction{Date: NewDate(2025, 1, 1), Type: Debt, Category: "c", Amount: 100,
		PaidAmount: 130, Loan: &LoanTerms{EMI: 10, TenureMonths: 13}}
	if err := loanPaid.Validate(); err != nil {
		t.Fatalf("paid up to EMI x tenure should pass, got %v", err)
	}

	bads := []struct {
		name string
		tx   Transaction
		err  error
	}{
		{"zero date", Transaction{Type: Income, Category: "c", Amount: 1}, ErrInvalidDate},
		{"bad type", Transaction{Date: NewDate(2025, 1, 1), Type: "Gift", Category: "c", Amount: 1}, ErrInvalidType},
		{"empty category", Transaction{Date: NewDate(2025, 1, 1), Type: Income, Category: " ", Amount: 1}, ErrEmptyCategory},
		{"zero amount", Transaction{Date: NewDate(2025, 1, 1), Type: Income, Category: "c"}, ErrInvalidAmount},
		{"negative amount", Transaction{Date: NewDate(2025, 1, 1), Type: Income, Category: "c", Amount: -5}, ErrInvalidAmount},
		{"negative rate", Transaction{Date: NewDate(2025, 1, 1), Type: Debt, Category: "c", Amount: 5,
			Loan: &LoanTerms{InterestRate: -1}}, ErrInvalidLoanTerm},
		{"negative paid", Transaction{Date: NewDate(2025, 1, 1), Type: Debt, Category: "c", Amount: 5, PaidAmount: -1}, ErrInvalidAmount},
		{"paid above amount", Transaction{Date: NewDate(2025, 1, 1), Type: Debt, Category: "c", Amount: 100, PaidAmount: 900}, ErrInvalidAmount},
		{"paid above installments", Transaction{Date: NewDate(2025, 1, 1), Type: Debt, Category: "c", Amount: 100,
			PaidAmount: 131, Loan: &LoanTerms{EMI: 10, TenureMonths: 13}}, ErrInvalidAmount},
	}
	for _, tc := range bads {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.tx.Validate(); !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
		})
	}
}

func TestTotalPayable(t *testing.T) {
	friends := Transaction{Type: Debt, Category: FriendsCategory, Amount: 1000, PaidAmount: 400}
	if friends.TotalPayable() != 1000 || friends.Outstanding() != 600 {
		t.Fatalf("unexpected payable %v outstanding %v", friends.TotalPayable(), friends.Outstanding())
	}
	loan := Transaction{Type: Debt, Category: "Car Loan", Amount: 100000,
		Loan: &LoanTerms{EMI: 8791.59, TenureMonths: 12}}
	if got := Round2(loan.TotalPayable()); got != 105499.08 {
		t.Fatalf("expected 105499.08, got %v", got)
	}
	noEMI := Transaction{Type: Debt, Amount: 500, Loan: &LoanTerms{TenureMonths: 12}}
	if noEMI.TotalPayable() != 500 {
		t.Fatalf("loan without EMI should fall back to amount")
	}
}

func TestTransactionPatchApply(t *testing.T) {
	tx := Transaction{ID: 7, Category: "Rent", Amount: 100, Description: "old"}
	if !(TransactionPatch{}).IsEmpty() {
		t.Fatalf("zero patch should be empty")
	}
	amount := 250.0
	desc := "new"
	got := TransactionPatch{Amount: &amount, Description: &desc}.Apply(tx)
	if got.Amount != 250 || got.Description != "new" || got.Category != "Rent" || got.ID != 7 {
		t.Fatalf("unexpected patch result %+v", got)
	}
}

func TestIsRejection(t *testing.T) {
	if !IsRejection(ErrNotFound) || !IsRejection(errors.Join(errors.New("ctx"), ErrUndoWindowExpired)) {
		t.Fatalf("sentinel errors should be rejections")
	}
	if IsRejection(errors.New("disk full")) {
		t.Fatalf("storage errors are not rejections")
	}
}

func TestNewSession(t *testing.T) {
	s := NewSession(User{ID: 3, Username: "asha"})
	if s.UserID != 3 || s.Currency != DefaultCurrency || s.RequestID == "" {
		t.Fatalf("unexpected session %+v", s)
	}
	if NewSession(User{ID: 3}).RequestID == s.RequestID {
		t.Fatalf("request ids should differ")
	}
}

func TestDefaultCategories(t *testing.T) {
	seen := map[string]bool{}
	loans := 0
	for _, c := range DefaultCategories() {
		if err := c.Validate(); err != nil {
			t.Fatalf("default category %q invalid: %v", c.Name, err)
		}
		key := string(c.Type) + "/" + c.Name
		if seen[key] {
			t.Fatalf("duplicate default category %s", key)
		}
		seen[key] = true
		if c.IsLoan {
			loans++
		}
	}
	if !seen["Debt/Friends"] || loans != 4 {
		t.Fatalf("expected Friends debt and four loan categories, got loans=%d", loans)
	}
}
