package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionFilter is the closed set of named filters supported by
// transaction queries. Zero values mean "not filtered".
type TransactionFilter struct {
	From       *time.Time
	To         *time.Time
	CategoryID int64
	Type       TransactionType
}

// CategorySummary is one row of a category breakdown: grouped expense
// totals annotated with the share of the period total.
type CategorySummary struct {
	CategoryName     string
	Amount           decimal.Decimal
	ColorCode        string
	TransactionCount int
	Percentage       decimal.Decimal // 0 when the period total is 0
}

// BudgetProgress is the spend-versus-limit state of one budget.
type BudgetProgress struct {
	CategoryName string
	ColorCode    string
	BudgetLimit  decimal.Decimal
	AmountSpent  decimal.Decimal
	Remaining    decimal.Decimal // may be negative
	PercentUsed  decimal.Decimal // 0 when the limit is 0
	OverBudget   bool
}

// BudgetItem is BudgetProgress enriched for the budget list page.
type BudgetItem struct {
	BudgetProgress
	BudgetID int64
	Icon     string
	Month    int
	Year     int
}

// BudgetList is the budget page view model for one month.
type BudgetList struct {
	Budgets     []BudgetItem
	Month       int
	Year        int
	TotalBudget decimal.Decimal
	TotalSpent  decimal.Decimal
}

// DashboardSnapshot is the consolidated read-only summary of a user's
// finances at a point in time.
type DashboardSnapshot struct {
	TotalBalance    decimal.Decimal
	MonthlyIncome   decimal.Decimal
	MonthlyExpenses decimal.Decimal
	MonthlySavings  decimal.Decimal
	Recent          []Transaction
	ByCategory      []CategorySummary
	BudgetProgress  []BudgetProgress
}

// EmptySnapshot returns a zeroed but well-formed snapshot. The dashboard
// degrades to this instead of surfacing an error page.
func EmptySnapshot() DashboardSnapshot {
	return DashboardSnapshot{
		TotalBalance:    decimal.Zero,
		MonthlyIncome:   decimal.Zero,
		MonthlyExpenses: decimal.Zero,
		MonthlySavings:  decimal.Zero,
		Recent:          []Transaction{},
		ByCategory:      []CategorySummary{},
		BudgetProgress:  []BudgetProgress{},
	}
}
