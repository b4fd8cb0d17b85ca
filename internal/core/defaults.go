package core

// DefaultCategories is the category set every new user starts with.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Salary", Type: Income},
		{Name: "Bonus", Type: Income},
		{Name: "Other Income", Type: Income},
		{Name: "Interest", Type: Income},

		{Name: "Rent", Type: Expense},
		{Name: "EMI", Type: Expense},
		{Name: "Insurance", Type: Expense},
		{Name: "Utilities", Type: Expense},
		{Name: "Groceries", Type: Expense},
		{Name: "Transport", Type: Expense},
		{Name: "Entertainment", Type: Expense},
		{Name: "Healthcare", Type: Expense},
		{Name: "Education", Type: Expense},
		{Name: "Shopping", Type: Expense},
		{Name: "Other Expense", Type: Expense},

		{Name: "SIP", Type: Investment},
		{Name: "Stocks", Type: Investment},
		{Name: "Mutual Funds", Type: Investment},
		{Name: "FD/RD", Type: Investment},
		{Name: "Gold", Type: Investment},
		{Name: "PPF/EPF", Type: Investment},

		{Name: "HDFC Credit Card", Type: CreditCard},
		{Name: "ICICI Credit Card", Type: CreditCard},
		{Name: "Other Credit Card", Type: CreditCard},

		{Name: "Bank Transfer", Type: Banking},
		{Name: "Cash Withdrawal", Type: Banking},
		{Name: "Deposit", Type: Banking},

		// tracking only
		{Name: "Car Fuel", Type: Vehicle},
		{Name: "Bike Fuel", Type: Vehicle},
		{Name: "Garage", Type: Vehicle},
		{Name: "Vehicle Insurance", Type: Vehicle},

		{Name: "Personal Loan", Type: Debt, IsLoan: true},
		{Name: "Home Loan", Type: Debt, IsLoan: true},
		{Name: "Education Loan", Type: Debt, IsLoan: true},
		{Name: "Car Loan", Type: Debt, IsLoan: true},
		{Name: "Credit Card Payment", Type: Debt},
		{Name: FriendsCategory, Type: Debt},
	}
}
