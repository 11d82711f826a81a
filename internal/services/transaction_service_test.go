package services

import (
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

func (s *ServiceSuite) TestTotalsExactOverDecimalAmounts() {
	// Amounts chosen so float accumulation would drift.
	s.addTransaction(core.Expense, catFood, "0.10", day(2026, time.March, 1))
	s.addTransaction(core.Expense, catFood, "0.20", day(2026, time.March, 2))
	s.addTransaction(core.Expense, catTransport, "0.30", day(2026, time.March, 3))
	s.addTransaction(core.Income, catSalary, "1234.56", day(2026, time.March, 5))

	income, err := s.txns.TotalIncome(s.ctx, s.user.ID, nil, nil)
	s.Require().NoError(err)
	s.True(income.Equal(decimal.RequireFromString("1234.56")))

	expenses, err := s.txns.TotalExpenses(s.ctx, s.user.ID, nil, nil)
	s.Require().NoError(err)
	s.True(expenses.Equal(decimal.RequireFromString("0.60")))
}

func (s *ServiceSuite) TestTotalsEmptyIsZero() {
	income, err := s.txns.TotalIncome(s.ctx, s.user.ID, nil, nil)
	s.Require().NoError(err)
	s.True(income.IsZero())

	expenses, err := s.txns.TotalExpenses(s.ctx, s.user.ID, nil, nil)
	s.Require().NoError(err)
	s.True(expenses.IsZero())
}

func (s *ServiceSuite) TestExpensesByCategoryReconstructsTotal() {
	s.addTransaction(core.Expense, catFood, "45.50", day(2026, time.April, 2))
	s.addTransaction(core.Expense, catFood, "12.25", day(2026, time.April, 9))
	s.addTransaction(core.Expense, catTransport, "30.00", day(2026, time.April, 15))
	s.addTransaction(core.Income, catSalary, "2000", day(2026, time.April, 1))

	from, to := core.MonthWindow(2026, 4)
	summaries, err := s.txns.ExpensesByCategory(s.ctx, s.user.ID, &from, &to)
	s.Require().NoError(err)
	s.Require().Len(summaries, 2)

	// Sorted descending by amount; income never appears.
	s.Equal("Food & Dining", summaries[0].CategoryName)
	s.True(summaries[0].Amount.Equal(decimal.RequireFromString("57.75")))
	s.Equal(2, summaries[0].TransactionCount)
	s.Equal("Transportation", summaries[1].CategoryName)

	sum := decimal.Zero
	pct := decimal.Zero
	for _, c := range summaries {
		sum = sum.Add(c.Amount)
		pct = pct.Add(c.Percentage)
	}
	total, err := s.txns.TotalExpenses(s.ctx, s.user.ID, &from, &to)
	s.Require().NoError(err)
	s.True(sum.Equal(total))
	s.True(pct.Sub(decimal.NewFromInt(100)).Abs().LessThan(decimal.RequireFromString("0.0001")))
}

func (s *ServiceSuite) TestExpensesByCategoryZeroTotal() {
	summaries, err := s.txns.ExpensesByCategory(s.ctx, s.user.ID, nil, nil)
	s.Require().NoError(err)
	s.Empty(summaries)
}

func (s *ServiceSuite) TestCreateRejectsInvalid() {
	err := s.txns.Create(s.ctx, core.Transaction{
		UserID:      s.user.ID,
		Description: "bad",
		Amount:      decimal.NewFromInt(-5),
		CategoryID:  catFood,
		Type:        core.Expense,
		Date:        day(2026, time.March, 1),
	})
	s.ErrorIs(err, core.ErrInvalidAmount)
}

func (s *ServiceSuite) TestGetUnknownTransaction() {
	_, err := s.txns.Get(s.ctx, 9999, s.user.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *ServiceSuite) TestDeleteOtherUsersTransaction() {
	s.addTransaction(core.Expense, catFood, "10", day(2026, time.March, 1))
	all, err := s.txns.List(s.ctx, s.user.ID, core.TransactionFilter{})
	s.Require().NoError(err)
	s.Require().Len(all, 1)

	other, err := s.repo.CreateUser(s.ctx, "bob", "bob@example.com", HashPassword("hunter22"))
	s.Require().NoError(err)

	s.ErrorIs(s.txns.Delete(s.ctx, all[0].ID, other.ID), ErrNotFound)
	s.NoError(s.txns.Delete(s.ctx, all[0].ID, s.user.ID))
}
