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

// TransactionService is the read/aggregation layer over a user's
// transactions plus the owner-scoped mutations.
type TransactionService struct {
	store *storage.Repository
}

func NewTransactionService(store *storage.Repository) *TransactionService {
	return &TransactionService{store: store}
}

// List returns the user's transactions matching the filter, newest first.
func (s *TransactionService) List(ctx context.Context, userID int64, f core.TransactionFilter) ([]core.Transaction, error) {
	transactions, err := s.store.Transactions(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return transactions, nil
}

// Get returns one transaction; ErrNotFound when the id does not exist or
// belongs to another user.
func (s *TransactionService) Get(ctx context.Context, id, userID int64) (core.Transaction, error) {
	tx, err := s.store.TransactionByID(ctx, id, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// Recent returns the n newest transactions of any type.
func (s *TransactionService) Recent(ctx context.Context, userID int64, n int) ([]core.Transaction, error) {
	transactions, err := s.store.RecentTransactions(ctx, userID, n)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	return transactions, nil
}

func (s *TransactionService) Create(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	id, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction created",
		"id", id,
		"user_id", t.UserID,
		"type", string(t.Type),
		"amount", t.Amount.String())
	return nil
}

func (s *TransactionService) Update(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	affected, err := s.store.UpdateTransaction(ctx, t)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *TransactionService) Delete(ctx context.Context, id, userID int64) error {
	affected, err := s.store.DeleteTransaction(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id, "user_id", userID)
	return nil
}

// TotalIncome sums income amounts within the optional date bounds.
// No matching rows yields zero, never an absent value.
func (s *TransactionService) TotalIncome(ctx context.Context, userID int64, from, to *time.Time) (decimal.Decimal, error) {
	return s.totalByType(ctx, userID, core.Income, from, to)
}

// TotalExpenses sums expense amounts within the optional date bounds.
func (s *TransactionService) TotalExpenses(ctx context.Context, userID int64, from, to *time.Time) (decimal.Decimal, error) {
	return s.totalByType(ctx, userID, core.Expense, from, to)
}

func (s *TransactionService) totalByType(ctx context.Context, userID int64, t core.TransactionType, from, to *time.Time) (decimal.Decimal, error) {
	transactions, err := s.store.Transactions(ctx, userID, core.TransactionFilter{
		From: from,
		To:   to,
		Type: t,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("total %s: %w", t, err)
	}

	total := decimal.Zero
	for _, tx := range transactions {
		total = total.Add(tx.Amount)
	}
	return total, nil
}

// ExpensesByCategory groups the user's expense transactions by category
// for the optional date bounds. Each group carries its share of the
// overall filtered total; when that total is zero every share is zero.
// Groups are sorted descending by amount.
func (s *TransactionService) ExpensesByCategory(ctx context.Context, userID int64, from, to *time.Time) ([]core.CategorySummary, error) {
	transactions, err := s.store.Transactions(ctx, userID, core.TransactionFilter{
		From: from,
		To:   to,
		Type: core.Expense,
	})
	if err != nil {
		return nil, fmt.Errorf("expenses by category: %w", err)
	}

	type group struct {
		name  string
		color string
		sum   decimal.Decimal
		count int
	}
	groups := make(map[int64]*group)
	total := decimal.Zero
	for _, tx := range transactions {
		g, ok := groups[tx.CategoryID]
		if !ok {
			g = &group{name: tx.Category.Name, color: tx.Category.ColorCode, sum: decimal.Zero}
			groups[tx.CategoryID] = g
		}
		g.sum = g.sum.Add(tx.Amount)
		g.count++
		total = total.Add(tx.Amount)
	}

	hundred := decimal.NewFromInt(100)
	summaries := make([]core.CategorySummary, 0, len(groups))
	for _, g := range groups {
		pct := decimal.Zero
		if total.IsPositive() {
			pct = g.sum.Mul(hundred).Div(total)
		}
		summaries = append(summaries, core.CategorySummary{
			CategoryName:     g.name,
			Amount:           g.sum,
			ColorCode:        g.color,
			TransactionCount: g.count,
			Percentage:       pct,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if c := summaries[i].Amount.Cmp(summaries[j].Amount); c != 0 {
			return c > 0
		}
		return summaries[i].CategoryName < summaries[j].CategoryName
	})
	return summaries, nil
}

// Categories lists all categories for form dropdowns.
func (s *TransactionService) Categories(ctx context.Context) ([]core.Category, error) {
	return s.store.Categories(ctx)
}
