package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"

	"github.com/shopspring/decimal"
)

// BudgetService manages budgets and derives their spend-versus-limit
// progress from the transaction aggregation layer.
type BudgetService struct {
	store        *storage.Repository
	transactions *TransactionService
}

func NewBudgetService(store *storage.Repository, transactions *TransactionService) *BudgetService {
	return &BudgetService{store: store, transactions: transactions}
}

func (s *BudgetService) Get(ctx context.Context, id, userID int64) (core.Budget, error) {
	b, err := s.store.BudgetByID(ctx, id, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Budget{}, ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

func (s *BudgetService) List(ctx context.Context, userID int64, month, year int) ([]core.Budget, error) {
	budgets, err := s.store.Budgets(ctx, userID, month, year)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}

// Create rejects a second budget for the same (user, category, month, year)
// tuple with ErrDuplicateBudget before the store's constraint ever fires.
func (s *BudgetService) Create(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	exists, err := s.store.BudgetExists(ctx, b.UserID, b.CategoryID, b.Month, b.Year)
	if err != nil {
		return fmt.Errorf("check budget: %w", err)
	}
	if exists {
		return ErrDuplicateBudget
	}
	id, err := s.store.CreateBudget(ctx, b)
	if err != nil {
		return fmt.Errorf("create budget: %w", err)
	}
	slog.InfoContext(ctx, "Budget created",
		"id", id,
		"user_id", b.UserID,
		"category_id", b.CategoryID,
		"month", b.Month,
		"year", b.Year)
	return nil
}

func (s *BudgetService) Update(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	affected, err := s.store.UpdateBudget(ctx, b)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BudgetService) Delete(ctx context.Context, id, userID int64) error {
	affected, err := s.store.DeleteBudget(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	slog.InfoContext(ctx, "Budget deleted", "id", id, "user_id", userID)
	return nil
}

// Progress returns one record per budget the user holds for the month,
// sorted non-increasing by percent used.
func (s *BudgetService) Progress(ctx context.Context, userID int64, month, year int) ([]core.BudgetProgress, error) {
	items, err := s.items(ctx, userID, month, year)
	if err != nil {
		return nil, err
	}
	progress := make([]core.BudgetProgress, len(items))
	for i, item := range items {
		progress[i] = item.BudgetProgress
	}
	return progress, nil
}

// ListView is the richer budget page shape. It projects the same per-item
// records Progress does, so the two views cannot disagree.
func (s *BudgetService) ListView(ctx context.Context, userID int64, month, year int) (core.BudgetList, error) {
	items, err := s.items(ctx, userID, month, year)
	if err != nil {
		return core.BudgetList{}, err
	}

	list := core.BudgetList{
		Budgets:     items,
		Month:       month,
		Year:        year,
		TotalBudget: decimal.Zero,
		TotalSpent:  decimal.Zero,
	}
	for _, item := range items {
		list.TotalBudget = list.TotalBudget.Add(item.BudgetLimit)
		list.TotalSpent = list.TotalSpent.Add(item.AmountSpent)
	}
	return list, nil
}

func (s *BudgetService) items(ctx context.Context, userID int64, month, year int) ([]core.BudgetItem, error) {
	budgets, err := s.List(ctx, userID, month, year)
	if err != nil {
		return nil, err
	}

	start, end := core.MonthWindow(year, month)
	items := make([]core.BudgetItem, 0, len(budgets))
	for _, b := range budgets {
		spent, err := s.spent(ctx, b, start, end)
		if err != nil {
			return nil, err
		}
		items = append(items, core.BudgetItem{
			BudgetProgress: progressFor(b, spent),
			BudgetID:       b.ID,
			Icon:           b.Category.Icon,
			Month:          b.Month,
			Year:           b.Year,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PercentUsed.Cmp(items[j].PercentUsed) > 0
	})
	return items, nil
}

func (s *BudgetService) spent(ctx context.Context, b core.Budget, start, end time.Time) (decimal.Decimal, error) {
	transactions, err := s.transactions.List(ctx, b.UserID, core.TransactionFilter{
		From:       &start,
		To:         &end,
		CategoryID: b.CategoryID,
		Type:       core.Expense,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("budget spend: %w", err)
	}
	spent := decimal.Zero
	for _, tx := range transactions {
		spent = spent.Add(tx.Amount)
	}
	return spent, nil
}

// progressFor is the single place the per-budget math lives. Remaining may
// go negative; a zero limit reads as 0% used, never a division fault.
func progressFor(b core.Budget, spent decimal.Decimal) core.BudgetProgress {
	percent := decimal.Zero
	if b.LimitAmount.IsPositive() {
		percent = spent.Mul(decimal.NewFromInt(100)).Div(b.LimitAmount)
	}
	return core.BudgetProgress{
		CategoryName: b.Category.Name,
		ColorCode:    b.Category.ColorCode,
		BudgetLimit:  b.LimitAmount,
		AmountSpent:  spent,
		Remaining:    b.LimitAmount.Sub(spent),
		PercentUsed:  percent,
		OverBudget:   spent.GreaterThan(b.LimitAmount),
	}
}

// ExpenseCategories lists the categories a budget may target.
func (s *BudgetService) ExpenseCategories(ctx context.Context) ([]core.Category, error) {
	return s.store.ExpenseCategories(ctx)
}
