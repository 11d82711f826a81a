package services

import (
	"context"
	"log/slog"
	"time"

	"fintrack/internal/core"

	"golang.org/x/sync/errgroup"
)

// DashboardService assembles the landing-page snapshot from the
// transaction and budget services.
type DashboardService struct {
	transactions *TransactionService
	budgets      *BudgetService
	recentLimit  int
}

func NewDashboardService(transactions *TransactionService, budgets *BudgetService, recentLimit int) *DashboardService {
	return &DashboardService{
		transactions: transactions,
		budgets:      budgets,
		recentLimit:  recentLimit,
	}
}

// Snapshot builds the dashboard for the current calendar month.
func (s *DashboardService) Snapshot(ctx context.Context, userID int64) core.DashboardSnapshot {
	return s.SnapshotAt(ctx, userID, time.Now().UTC())
}

// SnapshotAt builds the dashboard as of the month containing now. The six
// reads run concurrently; if any of them fails the whole snapshot degrades
// to an empty, well-formed one rather than surfacing the error.
func (s *DashboardService) SnapshotAt(ctx context.Context, userID int64, now time.Time) core.DashboardSnapshot {
	month, year := int(now.Month()), now.Year()
	start, end := core.MonthWindow(year, month)

	var snap core.DashboardSnapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		income, err := s.transactions.TotalIncome(gctx, userID, nil, nil)
		if err != nil {
			return err
		}
		expenses, err := s.transactions.TotalExpenses(gctx, userID, nil, nil)
		if err != nil {
			return err
		}
		snap.TotalBalance = income.Sub(expenses)
		return nil
	})
	g.Go(func() error {
		var err error
		snap.MonthlyIncome, err = s.transactions.TotalIncome(gctx, userID, &start, &end)
		return err
	})
	g.Go(func() error {
		var err error
		snap.MonthlyExpenses, err = s.transactions.TotalExpenses(gctx, userID, &start, &end)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Recent, err = s.transactions.Recent(gctx, userID, s.recentLimit)
		return err
	})
	g.Go(func() error {
		var err error
		snap.ByCategory, err = s.transactions.ExpensesByCategory(gctx, userID, &start, &end)
		return err
	})
	g.Go(func() error {
		var err error
		snap.BudgetProgress, err = s.budgets.Progress(gctx, userID, month, year)
		return err
	})

	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "Dashboard snapshot failed", "user_id", userID, "error", err)
		return core.EmptySnapshot()
	}

	snap.MonthlySavings = snap.MonthlyIncome.Sub(snap.MonthlyExpenses)
	if snap.Recent == nil {
		snap.Recent = []core.Transaction{}
	}
	if snap.ByCategory == nil {
		snap.ByCategory = []core.CategorySummary{}
	}
	if snap.BudgetProgress == nil {
		snap.BudgetProgress = []core.BudgetProgress{}
	}
	return snap
}
