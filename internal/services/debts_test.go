package services

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

func (s *ServicesTestSuite) friendsDebt(amount float64, who string) int64 {
	return s.add(core.Transaction{
		Date:        day(2025, 5, 1),
		Type:        core.Debt,
		Category:    core.FriendsCategory,
		Amount:      amount,
		Description: who,
	})
}

func (s *ServicesTestSuite) carLoan() int64 {
	return s.add(core.Transaction{
		Date:     day(2025, 1, 1),
		Type:     core.Debt,
		Category: "Car Loan",
		Amount:   100000,
		Loan:     &core.LoanTerms{InterestRate: 10, TenureMonths: 12, LenderBank: "SBI"},
	})
}

func (s *ServicesTestSuite) TestRepayDebtPartThenFinal() {
	debt := s.friendsDebt(1000, "Rahul")

	first, err := s.debts.RepayDebt(s.ctx, s.sess, debt, 400, "Cash", day(2025, 5, 18))
	require.NoError(s.T(), err)

	d := s.get(debt)
	assert.Equal(s.T(), 400.0, d.PaidAmount)
	assert.False(s.T(), d.IsRepaid)

	rep := s.get(first)
	assert.Equal(s.T(), core.Expense, rep.Type)
	assert.Equal(s.T(), core.FriendsPaymentCategory, rep.Category)
	assert.Equal(s.T(), core.RepaymentSubcategory, rep.Subcategory)
	assert.Equal(s.T(), "Repayment to Rahul (Part)", rep.Description)
	assert.Equal(s.T(), "Cash", rep.Account)
	assert.Equal(s.T(), debt, rep.LinkedID)

	second, err := s.debts.RepayDebt(s.ctx, s.sess, debt, 600, "Cash", day(2025, 5, 19))
	require.NoError(s.T(), err)

	d = s.get(debt)
	assert.Equal(s.T(), 1000.0, d.PaidAmount)
	assert.True(s.T(), d.IsRepaid)
	assert.Equal(s.T(), "Repayment to Rahul (Final)", s.get(second).Description)

	assert.Equal(s.T(), []string{
		amqp.KindTransactionCreated, amqp.KindDebtRepaid, amqp.KindDebtRepaid,
	}, s.publisher.kinds())
}

func (s *ServicesTestSuite) TestRepayDebtDefaultsToToday() {
	debt := s.friendsDebt(500, "Meera")
	id, err := s.debts.RepayDebt(s.ctx, s.sess, debt, 100, "", core.Date{})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "2025-05-20", s.get(id).Date.String())
}

func (s *ServicesTestSuite) TestRepayDebtToleratesRounding() {
	debt := s.friendsDebt(1000, "Rahul")
	_, err := s.debts.RepayDebt(s.ctx, s.sess, debt, 999.95, "Cash", day(2025, 5, 19))
	require.NoError(s.T(), err)
	assert.True(s.T(), s.get(debt).IsRepaid)
}

func (s *ServicesTestSuite) TestRepayDebtRejectsOutOfRange() {
	debt := s.friendsDebt(1000, "Rahul")
	_, err := s.debts.RepayDebt(s.ctx, s.sess, debt, 400, "Cash", day(2025, 5, 18))
	require.NoError(s.T(), err)

	for _, amount := range []float64{0, -10, 700} {
		_, err := s.debts.RepayDebt(s.ctx, s.sess, debt, amount, "Cash", day(2025, 5, 19))
		assert.ErrorIs(s.T(), err, core.ErrRepayAmountOutOfRange, "amount %v", amount)
	}

	d := s.get(debt)
	assert.Equal(s.T(), 400.0, d.PaidAmount)
	assert.False(s.T(), d.IsRepaid)

	history, err := s.debts.RepaymentHistory(s.ctx, s.sess, debt)
	require.NoError(s.T(), err)
	assert.Len(s.T(), history, 1)
}

func (s *ServicesTestSuite) TestRepayDebtRejectsNonDebtAndForeignIDs() {
	rent := s.add(core.Transaction{Date: day(2025, 5, 1), Type: core.Expense, Category: "Rent", Amount: 9000})
	_, err := s.debts.RepayDebt(s.ctx, s.sess, rent, 100, "Cash", day(2025, 5, 2))
	assert.ErrorIs(s.T(), err, core.ErrNotADebt)

	other := s.newUser("ravi", false)
	theirs := s.addFor(other, core.Transaction{Date: day(2025, 5, 1), Type: core.Debt, Category: core.FriendsCategory, Amount: 100})
	_, err = s.debts.RepayDebt(s.ctx, s.sess, theirs, 50, "Cash", day(2025, 5, 2))
	assert.ErrorIs(s.T(), err, core.ErrNotFound)

	_, err = s.debts.RepayDebt(s.ctx, s.sess, 424242, 50, "Cash", day(2025, 5, 2))
	assert.ErrorIs(s.T(), err, core.ErrNotFound)
}

func (s *ServicesTestSuite) TestPayEMIUntilClosed() {
	loanID := s.carLoan()
	emi := s.get(loanID).Loan.EMI

	first, err := s.debts.PayEMI(s.ctx, s.sess, loanID, emi, "HDFC", day(2025, 2, 1))
	require.NoError(s.T(), err)

	rep := s.get(first)
	assert.Equal(s.T(), core.EMICategory, rep.Category)
	assert.Equal(s.T(), core.LoanRepaymentSubcategory, rep.Subcategory)
	assert.Equal(s.T(), "EMI for Car Loan (SBI)", rep.Description)
	assert.Equal(s.T(), loanID, rep.LinkedID)

	for m := 3; m <= 13; m++ {
		_, err := s.debts.PayEMI(s.ctx, s.sess, loanID, emi, "HDFC", day(2025, 1, 1).AddDays(31*(m-1)))
		require.NoError(s.T(), err)
	}

	loan := s.get(loanID)
	assert.InDelta(s.T(), 105499.08, loan.PaidAmount, 0.001)
	assert.True(s.T(), loan.IsRepaid)

	_, err = s.debts.PayEMI(s.ctx, s.sess, loanID, emi, "HDFC", day(2025, 5, 20))
	assert.ErrorIs(s.T(), err, core.ErrRepayAmountOutOfRange)

	sum, err := s.agg.Summary(s.ctx, s.sess, core.Period{})
	require.NoError(s.T(), err)
	assert.InDelta(s.T(), 105499.08, sum.DebtRepayment, 0.001)
}

func (s *ServicesTestSuite) TestPayEMIWithoutLender() {
	loanID := s.add(core.Transaction{
		Date:     day(2025, 1, 1),
		Type:     core.Debt,
		Category: "Personal Loan",
		Amount:   12000,
		Loan:     &core.LoanTerms{TenureMonths: 12},
	})
	id, err := s.debts.PayEMI(s.ctx, s.sess, loanID, 1000, "", day(2025, 2, 1))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "EMI for Personal Loan", s.get(id).Description)
	assert.Equal(s.T(), 1000.0, s.get(loanID).Loan.EMI)
}

func (s *ServicesTestSuite) TestUndoRepaymentWithinWindow() {
	debt := s.friendsDebt(1000, "Rahul")
	_, err := s.debts.RepayDebt(s.ctx, s.sess, debt, 400, "Cash", day(2025, 5, 17))
	require.NoError(s.T(), err)
	_, err = s.debts.RepayDebt(s.ctx, s.sess, debt, 600, "Cash", day(2025, 5, 18))
	require.NoError(s.T(), err)
	require.True(s.T(), s.get(debt).IsRepaid)

	el, err := s.debts.UndoEligibility(s.ctx, s.sess, debt)
	require.NoError(s.T(), err)
	assert.True(s.T(), el.Allowed)
	assert.Equal(s.T(), 2, el.DaysAgo)
	assert.Equal(s.T(), "2025-05-18", el.LastPayment.String())

	removed, err := s.debts.UndoRepayment(s.ctx, s.sess, debt)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), removed)

	d := s.get(debt)
	assert.Zero(s.T(), d.PaidAmount)
	assert.False(s.T(), d.IsRepaid)

	history, err := s.debts.RepaymentHistory(s.ctx, s.sess, debt)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), history)
	assert.Contains(s.T(), s.publisher.kinds(), amqp.KindRepaymentUndone)

	_, err = s.debts.UndoRepayment(s.ctx, s.sess, debt)
	assert.ErrorIs(s.T(), err, core.ErrNoRepayment)
}

func (s *ServicesTestSuite) TestUndoRepaymentAfterWindowFails() {
	debt := s.friendsDebt(1000, "Rahul")
	_, err := s.debts.RepayDebt(s.ctx, s.sess, debt, 400, "Cash", day(2025, 5, 17))
	require.NoError(s.T(), err)

	el, err := s.debts.UndoEligibility(s.ctx, s.sess, debt)
	require.NoError(s.T(), err)
	assert.False(s.T(), el.Allowed)
	assert.Equal(s.T(), 3, el.DaysAgo)

	_, err = s.debts.UndoRepayment(s.ctx, s.sess, debt)
	assert.ErrorIs(s.T(), err, core.ErrUndoWindowExpired)

	d := s.get(debt)
	assert.Equal(s.T(), 400.0, d.PaidAmount)
	history, err := s.debts.RepaymentHistory(s.ctx, s.sess, debt)
	require.NoError(s.T(), err)
	assert.Len(s.T(), history, 1)
}

func (s *ServicesTestSuite) TestUndoRepaymentDatedInFutureFails() {
	debt := s.friendsDebt(1000, "Rahul")
	_, err := s.debts.RepayDebt(s.ctx, s.sess, debt, 400, "Cash", day(2025, 12, 1))
	require.NoError(s.T(), err)

	el, err := s.debts.UndoEligibility(s.ctx, s.sess, debt)
	require.NoError(s.T(), err)
	assert.False(s.T(), el.Allowed)
	assert.Negative(s.T(), el.DaysAgo)

	_, err = s.debts.UndoRepayment(s.ctx, s.sess, debt)
	assert.ErrorIs(s.T(), err, core.ErrUndoWindowExpired)
	assert.Equal(s.T(), 400.0, s.get(debt).PaidAmount)
}

func (s *ServicesTestSuite) TestUndoEligibilityWithoutRepayment() {
	debt := s.friendsDebt(1000, "Rahul")
	_, err := s.debts.UndoEligibility(s.ctx, s.sess, debt)
	assert.ErrorIs(s.T(), err, core.ErrNoRepayment)
}

func (s *ServicesTestSuite) TestToggleRepaid() {
	debt := s.friendsDebt(300, "Kiran")

	repaid, err := s.debts.ToggleRepaid(s.ctx, s.sess, debt)
	require.NoError(s.T(), err)
	assert.True(s.T(), repaid)
	assert.True(s.T(), s.get(debt).IsRepaid)

	repaid, err = s.debts.ToggleRepaid(s.ctx, s.sess, debt)
	require.NoError(s.T(), err)
	assert.False(s.T(), repaid)

	_, err = s.debts.ToggleRepaid(s.ctx, s.sess, 999999)
	assert.ErrorIs(s.T(), err, core.ErrNotFound)
}

func (s *ServicesTestSuite) TestFriendsDebtsAndLoans() {
	older := s.friendsDebt(300, "Kiran")
	newer := s.add(core.Transaction{Date: day(2025, 5, 9), Type: core.Debt, Category: core.FriendsCategory, Amount: 800, Description: "Anu"})
	loanID := s.carLoan()

	friends, err := s.debts.FriendsDebts(s.ctx, s.sess)
	require.NoError(s.T(), err)
	require.Len(s.T(), friends, 2)
	assert.Equal(s.T(), newer, friends[0].ID)
	assert.Equal(s.T(), older, friends[1].ID)

	_, err = s.debts.PayEMI(s.ctx, s.sess, loanID, 8791.59, "HDFC", day(2025, 2, 1))
	require.NoError(s.T(), err)

	loans, err := s.debts.Loans(s.ctx, s.sess)
	require.NoError(s.T(), err)
	require.Len(s.T(), loans, 1)
	st := loans[0]
	assert.Equal(s.T(), loanID, st.Loan.ID)
	assert.InDelta(s.T(), 105499.08, st.TotalPayable, 0.001)
	assert.InDelta(s.T(), 5499.08, st.TotalInterest, 0.001)
	assert.InDelta(s.T(), 96707.49, st.BalanceLeft, 0.001)
	assert.InDelta(s.T(), 1, st.MonthsPaid, 0.0001)
	assert.InDelta(s.T(), 11, st.MonthsLeft, 0.0001)
}
