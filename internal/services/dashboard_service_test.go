package services

import (
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

func (s *ServiceSuite) TestSnapshotFebruaryScenario() {
	s.addTransaction(core.Expense, catFood, "120", day(2026, time.February, 10))
	s.addTransaction(core.Income, catSalary, "2000", day(2026, time.February, 1))
	s.addBudget(catFood, "100", 2, 2026)

	snap := s.dash.SnapshotAt(s.ctx, s.user.ID, day(2026, time.February, 15))

	s.True(snap.MonthlyIncome.Equal(decimal.NewFromInt(2000)))
	s.True(snap.MonthlyExpenses.Equal(decimal.NewFromInt(120)))
	s.True(snap.MonthlySavings.Equal(decimal.NewFromInt(1880)))
	s.True(snap.TotalBalance.Equal(decimal.NewFromInt(1880)))

	s.Require().Len(snap.BudgetProgress, 1)
	p := snap.BudgetProgress[0]
	s.True(p.AmountSpent.Equal(decimal.NewFromInt(120)))
	s.True(p.Remaining.Equal(decimal.NewFromInt(-20)))
	s.True(p.PercentUsed.Equal(decimal.NewFromInt(120)))
	s.True(p.OverBudget)

	s.Require().Len(snap.ByCategory, 1)
	s.Equal("Food & Dining", snap.ByCategory[0].CategoryName)
	s.Len(snap.Recent, 2)
}

func (s *ServiceSuite) TestSnapshotSavingsIdentity() {
	s.addTransaction(core.Income, catSalary, "1500.75", day(2026, time.May, 1))
	s.addTransaction(core.Expense, catFood, "0.10", day(2026, time.May, 3))
	s.addTransaction(core.Expense, catFood, "0.20", day(2026, time.May, 4))
	s.addTransaction(core.Expense, catTransport, "99.99", day(2026, time.May, 5))

	snap := s.dash.SnapshotAt(s.ctx, s.user.ID, day(2026, time.May, 20))
	s.True(snap.MonthlySavings.Equal(snap.MonthlyIncome.Sub(snap.MonthlyExpenses)))
	s.True(snap.MonthlySavings.Equal(decimal.RequireFromString("1400.46")))
}

func (s *ServiceSuite) TestSnapshotBalanceSpansAllMonths() {
	s.addTransaction(core.Income, catSalary, "1000", day(2025, time.December, 1))
	s.addTransaction(core.Expense, catFood, "400", day(2026, time.January, 10))

	snap := s.dash.SnapshotAt(s.ctx, s.user.ID, day(2026, time.February, 1))
	s.True(snap.TotalBalance.Equal(decimal.NewFromInt(600)))
	s.True(snap.MonthlyIncome.IsZero())
	s.True(snap.MonthlyExpenses.IsZero())
}

func (s *ServiceSuite) TestSnapshotEmptyUser() {
	snap := s.dash.SnapshotAt(s.ctx, s.user.ID, day(2026, time.February, 1))
	s.True(snap.TotalBalance.IsZero())
	s.NotNil(snap.Recent)
	s.NotNil(snap.ByCategory)
	s.NotNil(snap.BudgetProgress)
	s.Empty(snap.Recent)
}

func (s *ServiceSuite) TestSnapshotDegradesOnStoreFailure() {
	s.addTransaction(core.Income, catSalary, "2000", day(2026, time.February, 1))
	s.repo.Close()

	snap := s.dash.SnapshotAt(s.ctx, s.user.ID, day(2026, time.February, 15))
	s.Equal(core.EmptySnapshot(), snap)
}
