package services

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

func (s *ServicesTestSuite) TestAddTransactionRejectsInvalidInput() {
	cases := []struct {
		name string
		tx   core.Transaction
		want error
	}{
		{"zero amount", core.Transaction{Date: day(2025, 5, 1), Type: core.Expense, Category: "Rent"}, core.ErrInvalidAmount},
		{"negative amount", core.Transaction{Date: day(2025, 5, 1), Type: core.Expense, Category: "Rent", Amount: -5}, core.ErrInvalidAmount},
		{"missing date", core.Transaction{Type: core.Expense, Category: "Rent", Amount: 5}, core.ErrInvalidDate},
		{"blank category", core.Transaction{Date: day(2025, 5, 1), Type: core.Expense, Category: "  ", Amount: 5}, core.ErrEmptyCategory},
		{"unknown type", core.Transaction{Date: day(2025, 5, 1), Type: "Lottery", Category: "Rent", Amount: 5}, core.ErrInvalidType},
		{
			"loan terms on expense",
			core.Transaction{Date: day(2025, 5, 1), Type: core.Expense, Category: "Rent", Amount: 5, Loan: &core.LoanTerms{TenureMonths: 3}},
			core.ErrInvalidLoanTerm,
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.ledger.AddTransaction(s.ctx, s.sess, tc.tx)
			assert.ErrorIs(s.T(), err, tc.want)
			assert.True(s.T(), core.IsRejection(err))
		})
	}

	txs, err := s.ledger.Transactions(s.ctx, s.sess, core.Filter{})
	require.NoError(s.T(), err)
	assert.Empty(s.T(), txs)
	assert.Empty(s.T(), s.publisher.kinds())
}

func (s *ServicesTestSuite) TestAddTransactionPublishesEvent() {
	id := s.add(core.Transaction{Date: day(2025, 5, 1), Type: core.Income, Category: "Salary", Amount: 50000})

	require.Len(s.T(), s.publisher.events, 1)
	ev := s.publisher.events[0]
	assert.Equal(s.T(), amqp.KindTransactionCreated, ev.Kind)
	assert.Equal(s.T(), id, ev.TransactionID)
	assert.Equal(s.T(), s.sess.UserID, ev.UserID)
	assert.Equal(s.T(), 50000.0, ev.Amount)
}

func (s *ServicesTestSuite) TestAddLoanComputesInstallment() {
	id := s.add(core.Transaction{
		Date:        day(2025, 1, 1),
		Type:        core.Debt,
		Category:    "Car Loan",
		Amount:      100000,
		Description: "Hatchback",
		Loan:        &core.LoanTerms{InterestRate: 10, TenureMonths: 12, LenderBank: "SBI"},
	})

	got := s.get(id)
	require.NotNil(s.T(), got.Loan)
	assert.InDelta(s.T(), 8791.59, got.Loan.EMI, 0.001)
	assert.Equal(s.T(), "2025-01-01", got.Loan.StartDate.String())
	assert.Equal(s.T(), "2026-01-01", got.Loan.EndDate.String())
	assert.Equal(s.T(), "SBI", got.Loan.LenderBank)
	assert.InDelta(s.T(), 105499.08, got.TotalPayable(), 0.001)
}

func (s *ServicesTestSuite) TestUpdateTransaction() {
	id := s.add(core.Transaction{Date: day(2025, 5, 3), Type: core.Expense, Category: "Groceries", Amount: 1200})

	amount := 1350.0
	desc := "weekly shop"
	require.NoError(s.T(), s.ledger.UpdateTransaction(s.ctx, s.sess, id, core.TransactionPatch{
		Amount:      &amount,
		Description: &desc,
	}))

	got := s.get(id)
	assert.Equal(s.T(), 1350.0, got.Amount)
	assert.Equal(s.T(), "weekly shop", got.Description)
	assert.Equal(s.T(), "Groceries", got.Category)

	bad := 0.0
	err := s.ledger.UpdateTransaction(s.ctx, s.sess, id, core.TransactionPatch{Amount: &bad})
	assert.ErrorIs(s.T(), err, core.ErrInvalidAmount)
	assert.Equal(s.T(), 1350.0, s.get(id).Amount)

	assert.Equal(s.T(), []string{amqp.KindTransactionCreated, amqp.KindTransactionUpdated}, s.publisher.kinds())
}

func (s *ServicesTestSuite) TestPaidAmountCannotExceedPayable() {
	_, err := s.ledger.AddTransaction(s.ctx, s.sess, core.Transaction{
		Date: day(2025, 5, 1), Type: core.Debt, Category: core.FriendsCategory, Amount: 100, PaidAmount: 900,
	})
	assert.ErrorIs(s.T(), err, core.ErrInvalidAmount)

	debt := s.friendsDebt(1000, "Rahul")
	over := 5000.0
	err = s.ledger.UpdateTransaction(s.ctx, s.sess, debt, core.TransactionPatch{PaidAmount: &over})
	assert.ErrorIs(s.T(), err, core.ErrInvalidAmount)

	_, err = s.debts.RepayDebt(s.ctx, s.sess, debt, 600, "Cash", day(2025, 5, 19))
	require.NoError(s.T(), err)
	shrink := 500.0
	err = s.ledger.UpdateTransaction(s.ctx, s.sess, debt, core.TransactionPatch{Amount: &shrink})
	assert.ErrorIs(s.T(), err, core.ErrInvalidAmount)

	d := s.get(debt)
	assert.Equal(s.T(), 1000.0, d.Amount)
	assert.Equal(s.T(), 600.0, d.PaidAmount)

	p, err := s.portfolio.Status(s.ctx, s.sess)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 400.0, p.Liabilities.FriendsDebt)

	// Loans may be paid up to EMI x tenure, above the principal.
	loanID := s.carLoan()
	paid := 100000.0 + 5000
	require.NoError(s.T(), s.ledger.UpdateTransaction(s.ctx, s.sess, loanID, core.TransactionPatch{PaidAmount: &paid}))
}

func (s *ServicesTestSuite) TestUpdateTransactionReplacesLoanTerms() {
	loanID := s.carLoan()
	before := s.get(loanID)
	require.NotNil(s.T(), before.Loan)

	err := s.ledger.UpdateTransaction(s.ctx, s.sess, loanID, core.TransactionPatch{
		Loan: &core.LoanTerms{InterestRate: 0, TenureMonths: 10, LenderBank: "ICICI"},
	})
	require.NoError(s.T(), err)

	got := s.get(loanID)
	require.NotNil(s.T(), got.Loan)
	assert.Equal(s.T(), 10000.0, got.Loan.EMI)
	assert.Equal(s.T(), 10, got.Loan.TenureMonths)
	assert.Equal(s.T(), "ICICI", got.Loan.LenderBank)
	assert.Equal(s.T(), before.Date, got.Loan.StartDate)
	assert.False(s.T(), got.Loan.EndDate.IsZero())
	assert.Equal(s.T(), before.Amount, got.Amount)

	rent := s.add(core.Transaction{Date: day(2025, 5, 1), Type: core.Expense, Category: "Rent", Amount: 9000})
	err = s.ledger.UpdateTransaction(s.ctx, s.sess, rent, core.TransactionPatch{Loan: &core.LoanTerms{TenureMonths: 3}})
	assert.ErrorIs(s.T(), err, core.ErrInvalidLoanTerm)
	assert.Nil(s.T(), s.get(rent).Loan)
}

func (s *ServicesTestSuite) TestTransactionsAreScopedToOwner() {
	other := s.newUser("ravi", false)
	id := s.addFor(other, core.Transaction{Date: day(2025, 5, 3), Type: core.Expense, Category: "Rent", Amount: 9000})

	_, err := s.ledger.Transaction(s.ctx, s.sess, id)
	assert.ErrorIs(s.T(), err, core.ErrNotFound)

	amount := 1.0
	assert.ErrorIs(s.T(), s.ledger.UpdateTransaction(s.ctx, s.sess, id, core.TransactionPatch{Amount: &amount}), core.ErrNotFound)
	assert.ErrorIs(s.T(), s.ledger.DeleteTransaction(s.ctx, s.sess, id), core.ErrNotFound)

	mine, err := s.ledger.Transactions(s.ctx, s.sess, core.Filter{})
	require.NoError(s.T(), err)
	assert.Empty(s.T(), mine)

	theirs, err := s.ledger.Transactions(s.ctx, other, core.Filter{})
	require.NoError(s.T(), err)
	assert.Len(s.T(), theirs, 1)
}

func (s *ServicesTestSuite) TestTransactionsFilterAndOrder() {
	s.add(core.Transaction{Date: day(2025, 4, 30), Type: core.Expense, Category: "Rent", Amount: 100})
	mid := s.add(core.Transaction{Date: day(2025, 5, 10), Type: core.Expense, Category: "Rent", Amount: 200})
	late := s.add(core.Transaction{Date: day(2025, 5, 31), Type: core.Expense, Category: "Groceries", Amount: 300, IsSelf: true})
	s.add(core.Transaction{Date: day(2025, 5, 15), Type: core.Income, Category: "Salary", Amount: 400})

	txs, err := s.ledger.Transactions(s.ctx, s.sess, core.Filter{Period: core.MonthPeriod(2025, 5), Type: core.Expense})
	require.NoError(s.T(), err)
	require.Len(s.T(), txs, 2)
	assert.Equal(s.T(), late, txs[0].ID)
	assert.Equal(s.T(), mid, txs[1].ID)

	self, err := s.ledger.Transactions(s.ctx, s.sess, core.Filter{OnlySelf: true})
	require.NoError(s.T(), err)
	require.Len(s.T(), self, 1)
	assert.Equal(s.T(), late, self[0].ID)
}

func (s *ServicesTestSuite) TestDeleteTransaction() {
	id := s.add(core.Transaction{Date: day(2025, 5, 3), Type: core.Expense, Category: "Rent", Amount: 9000})

	require.NoError(s.T(), s.ledger.DeleteTransaction(s.ctx, s.sess, id))
	_, err := s.ledger.Transaction(s.ctx, s.sess, id)
	assert.ErrorIs(s.T(), err, core.ErrNotFound)
	assert.ErrorIs(s.T(), s.ledger.DeleteTransaction(s.ctx, s.sess, id), core.ErrNotFound)
}

func (s *ServicesTestSuite) TestDeleteTransactionsByLink() {
	debt := s.add(core.Transaction{Date: day(2025, 5, 1), Type: core.Debt, Category: core.FriendsCategory, Amount: 1000})
	s.add(core.Transaction{Date: day(2025, 5, 2), Type: core.Expense, Category: core.FriendsPaymentCategory, Amount: 100, LinkedID: debt})
	s.add(core.Transaction{Date: day(2025, 5, 3), Type: core.Expense, Category: core.FriendsPaymentCategory, Amount: 200, LinkedID: debt})

	n, err := s.ledger.DeleteTransactionsByLink(s.ctx, s.sess, debt)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), n)

	n, err = s.ledger.DeleteTransactionsByLink(s.ctx, s.sess, debt)
	require.NoError(s.T(), err)
	assert.Zero(s.T(), n)
	assert.Equal(s.T(), debt, s.get(debt).ID)
}

func (s *ServicesTestSuite) TestNewUserHasDefaultCategories() {
	cats, err := s.ledger.Categories(s.ctx, s.sess, "")
	require.NoError(s.T(), err)
	assert.Len(s.T(), cats, len(core.DefaultCategories()))

	debtCats, err := s.ledger.Categories(s.ctx, s.sess, core.Debt)
	require.NoError(s.T(), err)
	names := make([]string, len(debtCats))
	for i, c := range debtCats {
		names[i] = c.Name
		assert.Equal(s.T(), core.Debt, c.Type)
	}
	assert.IsNonDecreasing(s.T(), names)
	assert.Contains(s.T(), names, core.FriendsCategory)
}

func (s *ServicesTestSuite) TestCategorySoftDeleteRoundTrip() {
	id, err := s.ledger.AddCategory(s.ctx, s.sess, core.Category{Name: "Gym", Type: core.Expense})
	require.NoError(s.T(), err)

	_, err = s.ledger.AddCategory(s.ctx, s.sess, core.Category{Name: "Gym", Type: core.Expense})
	assert.ErrorIs(s.T(), err, core.ErrDuplicateCategory)

	require.NoError(s.T(), s.ledger.DeleteCategory(s.ctx, s.sess, id))
	cats, err := s.ledger.Categories(s.ctx, s.sess, core.Expense)
	require.NoError(s.T(), err)
	for _, c := range cats {
		assert.NotEqual(s.T(), "Gym", c.Name)
	}

	again, err := s.ledger.AddCategory(s.ctx, s.sess, core.Category{Name: "Gym", Type: core.Expense})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), id, again)

	// Same name under another type is a different category.
	other, err := s.ledger.AddCategory(s.ctx, s.sess, core.Category{Name: "Gym", Type: core.Subscriptions})
	require.NoError(s.T(), err)
	assert.NotEqual(s.T(), id, other)
}

func (s *ServicesTestSuite) TestUpdateCategory() {
	id, err := s.ledger.AddCategory(s.ctx, s.sess, core.Category{Name: "Gym", Type: core.Expense})
	require.NoError(s.T(), err)

	err = s.ledger.UpdateCategory(s.ctx, s.sess, core.Category{ID: id, Name: "Rent", Type: core.Expense})
	assert.ErrorIs(s.T(), err, core.ErrDuplicateCategory)

	require.NoError(s.T(), s.ledger.UpdateCategory(s.ctx, s.sess, core.Category{ID: id, Name: "Fitness", Type: core.Expense}))
	cats, err := s.ledger.Categories(s.ctx, s.sess, core.Expense)
	require.NoError(s.T(), err)
	var found bool
	for _, c := range cats {
		if c.ID == id {
			found = true
			assert.Equal(s.T(), "Fitness", c.Name)
		}
	}
	assert.True(s.T(), found)

	err = s.ledger.UpdateCategory(s.ctx, s.sess, core.Category{ID: 99999, Name: "X", Type: core.Expense})
	assert.ErrorIs(s.T(), err, core.ErrNotFound)
}

func (s *ServicesTestSuite) TestRecurringItems() {
	salary, err := s.ledger.AddRecurringItem(s.ctx, s.sess, core.RecurringItem{Name: "Salary", Type: core.Income, Amount: 80000, IsActive: true})
	require.NoError(s.T(), err)
	_, err = s.ledger.AddRecurringItem(s.ctx, s.sess, core.RecurringItem{Name: "Rent", Type: core.Expense, Amount: 20000, IsActive: true})
	require.NoError(s.T(), err)
	_, err = s.ledger.AddRecurringItem(s.ctx, s.sess, core.RecurringItem{Name: "Bad", Type: core.Expense})
	assert.ErrorIs(s.T(), err, core.ErrInvalidAmount)

	require.NoError(s.T(), s.ledger.UpdateRecurringItem(s.ctx, s.sess, core.RecurringItem{
		ID: salary, Name: "Salary", Type: core.Income, Amount: 85000, IsActive: false,
	}))

	active, err := s.ledger.RecurringItems(s.ctx, s.sess, true)
	require.NoError(s.T(), err)
	require.Len(s.T(), active, 1)
	assert.Equal(s.T(), "Rent", active[0].Name)

	all, err := s.ledger.RecurringItems(s.ctx, s.sess, false)
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, 2)

	require.NoError(s.T(), s.ledger.DeleteRecurringItem(s.ctx, s.sess, salary))
	assert.ErrorIs(s.T(), s.ledger.DeleteRecurringItem(s.ctx, s.sess, salary), core.ErrNotFound)
}
