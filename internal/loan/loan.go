// Package loan computes installment figures for amortizing loans.
package loan

import (
	"math"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// DaysPerMonth approximates the average month length for end dates.
const DaysPerMonth = 30.44

// Quote is the amortization summary for a loan at entry time.
type Quote struct {
	EMI           float64
	TotalPayable  float64
	TotalInterest float64
	EndDate       core.Date
}

// EMI returns the equated monthly installment for principal p at an
// annual rate in percent over n months, rounded to two places.
// A zero rate degrades to p/n.
func EMI(principal, annualRate float64, months int) float64 {
	if months <= 0 || principal <= 0 {
		return 0
	}
	p := decimal.NewFromFloat(principal)
	n := decimal.NewFromInt(int64(months))
	if annualRate == 0 {
		return p.Div(n).Round(2).InexactFloat64()
	}
	r := decimal.NewFromFloat(annualRate).Div(decimal.NewFromInt(1200))
	growth := decimal.NewFromInt(1).Add(r).Pow(n)
	emi := p.Mul(r).Mul(growth).Div(growth.Sub(decimal.NewFromInt(1)))
	return emi.Round(2).InexactFloat64()
}

// EndDate is start + round(30.44 × months) days.
func EndDate(start core.Date, months int) core.Date {
	return start.AddDays(int(math.Round(DaysPerMonth * float64(months))))
}

// NewQuote amortizes a loan starting on start.
func NewQuote(principal, annualRate float64, months int, start core.Date) Quote {
	emi := EMI(principal, annualRate, months)
	total := core.Round2(emi * float64(months))
	q := Quote{
		EMI:           emi,
		TotalPayable:  total,
		TotalInterest: core.Round2(total - principal),
	}
	if !start.IsZero() {
		q.EndDate = EndDate(start, months)
	}
	return q
}

// Fill completes EMI and end date on a loan that only carries rate and
// tenure. Terms that already have an EMI are returned unchanged.
func Fill(principal float64, terms core.LoanTerms) core.LoanTerms {
	if terms.TenureMonths <= 0 {
		return terms
	}
	if terms.EMI == 0 {
		terms.EMI = EMI(principal, terms.InterestRate, terms.TenureMonths)
	}
	if terms.EndDate.IsZero() && !terms.StartDate.IsZero() {
		terms.EndDate = EndDate(terms.StartDate, terms.TenureMonths)
	}
	return terms
}

// Progress reports how far a loan debt is from closure.
func Progress(t core.Transaction) core.LoanStatus {
	st := core.LoanStatus{
		Loan:         t,
		TotalPayable: t.TotalPayable(),
	}
	st.BalanceLeft = st.TotalPayable - t.PaidAmount
	if t.HasEMI() {
		st.TotalInterest = st.TotalPayable - t.Amount
		st.MonthsPaid = t.PaidAmount / t.Loan.EMI
		st.MonthsLeft = math.Max(0, float64(t.Loan.TenureMonths)-st.MonthsPaid)
	}
	if st.TotalPayable > 0 {
		st.ProgressRatio = math.Min(1, t.PaidAmount/st.TotalPayable)
	}
	return st
}
