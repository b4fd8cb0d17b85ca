package storage

import (
	"database/sql"
	"time"

	"fintrack/internal/core"
)

func toTransactionRow(t core.Transaction) Transaction {
	row := Transaction{
		ID:                  t.ID,
		UserID:              t.UserID,
		Date:                t.Date.String(),
		Type:                string(t.Type),
		Category:            t.Category,
		Subcategory:         t.Subcategory,
		Amount:              t.Amount,
		Description:         t.Description,
		Account:             t.Account,
		IsCreditCardPayment: t.IsCreditCardPayment,
		IsReinvestment:      t.IsReinvestment,
		IsSelf:              t.IsSelf,
		IsRepaid:            t.IsRepaid,
		PaidAmount:          t.PaidAmount,
	}
	if t.LinkedID != 0 {
		row.LinkedID = sql.NullInt64{Int64: t.LinkedID, Valid: true}
	}
	if l := t.Loan; l != nil {
		row.LoanInterestRate = sql.NullFloat64{Float64: l.InterestRate, Valid: true}
		row.LoanTenureMonths = sql.NullInt64{Int64: int64(l.TenureMonths), Valid: true}
		row.LoanEmi = sql.NullFloat64{Float64: l.EMI, Valid: true}
		row.LoanStartDate = nullString(l.StartDate.String())
		row.LoanEndDate = nullString(l.EndDate.String())
		row.LoanLenderBank = nullString(l.LenderBank)
	}
	return row
}

func fromTransactionRow(row Transaction) core.Transaction {
	date, _ := core.ParseDate(row.Date)
	t := core.Transaction{
		ID:                  row.ID,
		UserID:              row.UserID,
		Date:                date,
		Type:                core.TxType(row.Type),
		Category:            row.Category,
		Subcategory:         row.Subcategory,
		Amount:              row.Amount,
		Description:         row.Description,
		Account:             row.Account,
		IsCreditCardPayment: row.IsCreditCardPayment,
		IsReinvestment:      row.IsReinvestment,
		IsSelf:              row.IsSelf,
		IsRepaid:            row.IsRepaid,
		PaidAmount:          row.PaidAmount,
		LinkedID:            row.LinkedID.Int64,
		CreatedAt:           parseTimestamp(row.CreatedAt),
	}
	if row.LoanInterestRate.Valid || row.LoanTenureMonths.Valid || row.LoanEmi.Valid || row.LoanLenderBank.Valid {
		start, _ := core.ParseDate(row.LoanStartDate.String)
		end, _ := core.ParseDate(row.LoanEndDate.String)
		t.Loan = &core.LoanTerms{
			InterestRate: row.LoanInterestRate.Float64,
			TenureMonths: int(row.LoanTenureMonths.Int64),
			EMI:          row.LoanEmi.Float64,
			StartDate:    start,
			EndDate:      end,
			LenderBank:   row.LoanLenderBank.String,
		}
	}
	return t
}

func fromCategoryRow(row Category) core.Category {
	return core.Category{
		ID:       row.ID,
		UserID:   row.UserID,
		Name:     row.Name,
		Type:     core.TxType(row.Type),
		IsActive: row.IsActive,
		IsLoan:   row.IsLoan,
	}
}

func fromUserRow(row User) core.User {
	return core.User{
		ID:           row.ID,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		IsAdmin:      row.IsAdmin,
		Currency:     row.Currency,
		CreatedAt:    parseTimestamp(row.CreatedAt),
	}
}

func fromPasswordRequestRow(row PasswordRequest) core.PasswordResetRequest {
	return core.PasswordResetRequest{
		ID:          row.ID,
		UserID:      row.UserID,
		Username:    row.Username,
		Status:      core.ResetStatus(row.Status),
		RequestDate: parseTimestamp(row.RequestDate),
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// parseTimestamp reads SQLite CURRENT_TIMESTAMP values. Unparseable input
// yields the zero time.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{timestampLayout, time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
