package services

import (
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

func (s *ServiceSuite) TestProgressOverspentBudget() {
	s.addBudget(catFood, "100", 2, 2026)
	s.addTransaction(core.Expense, catFood, "120", day(2026, time.February, 10))
	s.addTransaction(core.Income, catSalary, "2000", day(2026, time.February, 1))

	progress, err := s.budget.Progress(s.ctx, s.user.ID, 2, 2026)
	s.Require().NoError(err)
	s.Require().Len(progress, 1)

	p := progress[0]
	s.Equal("Food & Dining", p.CategoryName)
	s.True(p.AmountSpent.Equal(decimal.NewFromInt(120)))
	s.True(p.Remaining.Equal(decimal.NewFromInt(-20)))
	s.True(p.PercentUsed.Equal(decimal.NewFromInt(120)))
	s.True(p.OverBudget)
}

func (s *ServiceSuite) TestProgressIgnoresOutOfWindowAndIncome() {
	s.addBudget(catFood, "200", 2, 2026)
	s.addTransaction(core.Expense, catFood, "50", day(2026, time.February, 28))
	s.addTransaction(core.Expense, catFood, "75", day(2026, time.March, 1))
	s.addTransaction(core.Expense, catTransport, "40", day(2026, time.February, 5))
	s.addTransaction(core.Income, catSalary, "1000", day(2026, time.February, 5))

	progress, err := s.budget.Progress(s.ctx, s.user.ID, 2, 2026)
	s.Require().NoError(err)
	s.Require().Len(progress, 1)
	s.True(progress[0].AmountSpent.Equal(decimal.NewFromInt(50)))
	s.False(progress[0].OverBudget)
}

func (s *ServiceSuite) TestProgressSortedByPercentUsed() {
	s.addBudget(catFood, "100", 6, 2026)
	s.addBudget(catTransport, "100", 6, 2026)
	s.addTransaction(core.Expense, catFood, "30", day(2026, time.June, 3))
	s.addTransaction(core.Expense, catTransport, "90", day(2026, time.June, 3))

	progress, err := s.budget.Progress(s.ctx, s.user.ID, 6, 2026)
	s.Require().NoError(err)
	s.Require().Len(progress, 2)
	s.Equal("Transportation", progress[0].CategoryName)
	s.Equal("Food & Dining", progress[1].CategoryName)
}

func (s *ServiceSuite) TestProgressZeroLimit() {
	// The store constraint forbids zero limits, so exercise the math directly.
	p := progressFor(core.Budget{
		CategoryID:  catFood,
		LimitAmount: decimal.Zero,
		Category:    core.CategoryRef{Name: "Food & Dining"},
	}, decimal.NewFromInt(50))
	s.True(p.PercentUsed.IsZero())
	s.True(p.OverBudget)
}

func (s *ServiceSuite) TestListViewMatchesProgress() {
	s.addBudget(catFood, "300", 7, 2026)
	s.addBudget(catTransport, "150", 7, 2026)
	s.addTransaction(core.Expense, catFood, "100.50", day(2026, time.July, 4))
	s.addTransaction(core.Expense, catTransport, "25", day(2026, time.July, 8))

	list, err := s.budget.ListView(s.ctx, s.user.ID, 7, 2026)
	s.Require().NoError(err)
	s.Require().Len(list.Budgets, 2)
	s.Equal(7, list.Month)
	s.Equal(2026, list.Year)
	s.True(list.TotalBudget.Equal(decimal.NewFromInt(450)))
	s.True(list.TotalSpent.Equal(decimal.RequireFromString("125.50")))

	progress, err := s.budget.Progress(s.ctx, s.user.ID, 7, 2026)
	s.Require().NoError(err)
	for i, item := range list.Budgets {
		s.Equal(progress[i], item.BudgetProgress)
		s.NotZero(item.BudgetID)
		s.NotEmpty(item.Icon)
	}
}

func (s *ServiceSuite) TestCreateDuplicateBudget() {
	s.addBudget(catFood, "100", 2, 2026)

	err := s.budget.Create(s.ctx, core.Budget{
		UserID:      s.user.ID,
		CategoryID:  catFood,
		LimitAmount: decimal.NewFromInt(250),
		Month:       2,
		Year:        2026,
	})
	s.ErrorIs(err, ErrDuplicateBudget)

	// Same category, different month is fine.
	s.addBudget(catFood, "250", 3, 2026)
}

func (s *ServiceSuite) TestUpdateUnknownBudget() {
	err := s.budget.Update(s.ctx, core.Budget{
		ID:          4242,
		UserID:      s.user.ID,
		CategoryID:  catFood,
		LimitAmount: decimal.NewFromInt(10),
		Month:       1,
		Year:        2026,
	})
	s.ErrorIs(err, ErrNotFound)
}
