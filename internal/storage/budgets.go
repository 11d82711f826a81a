package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

const budgetColumns = `
	b.id, b.user_id, b.category_id, b.limit_amount, b.month, b.year,
	b.created_at, c.name, c.color_code, c.icon`

// Budgets returns a user's budgets for one month, category metadata
// materialized.
func (r *Repository) Budgets(ctx context.Context, userID int64, month, year int) ([]core.Budget, error) {
	query := `SELECT ` + budgetColumns + `
		FROM budgets b
		JOIN categories c ON b.category_id = c.id
		WHERE b.user_id = ? AND b.month = ? AND b.year = ?
		ORDER BY b.id`
	rows, err := r.db.QueryContext(ctx, query, userID, month, year)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows.Scan)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (r *Repository) BudgetByID(ctx context.Context, id, userID int64) (core.Budget, error) {
	query := `SELECT ` + budgetColumns + `
		FROM budgets b
		JOIN categories c ON b.category_id = c.id
		WHERE b.id = ? AND b.user_id = ?`
	row := r.db.QueryRowContext(ctx, query, id, userID)

	b, err := scanBudget(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, ErrNotFound
	}
	if err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

// BudgetExists reports whether the (user, category, month, year) tuple is
// already taken.
func (r *Repository) BudgetExists(ctx context.Context, userID, categoryID int64, month, year int) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM budgets WHERE user_id = ? AND category_id = ? AND month = ? AND year = ?`,
		userID, categoryID, month, year).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count budgets: %w", err)
	}
	return n > 0, nil
}

func (r *Repository) CreateBudget(ctx context.Context, b core.Budget) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, category_id, limit_amount, month, year)
		 VALUES (?, ?, ?, ?, ?)`,
		b.UserID, b.CategoryID, b.LimitAmount.String(), b.Month, b.Year)
	if err != nil {
		return 0, fmt.Errorf("insert budget: %w", err)
	}
	return res.LastInsertId()
}

func (r *Repository) UpdateBudget(ctx context.Context, b core.Budget) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets
		 SET category_id = ?, limit_amount = ?, month = ?, year = ?
		 WHERE id = ? AND user_id = ?`,
		b.CategoryID, b.LimitAmount.String(), b.Month, b.Year, b.ID, b.UserID)
	if err != nil {
		return 0, fmt.Errorf("update budget: %w", err)
	}
	return res.RowsAffected()
}

func (r *Repository) DeleteBudget(ctx context.Context, id, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return 0, fmt.Errorf("delete budget: %w", err)
	}
	return res.RowsAffected()
}

func scanBudget(scan func(...any) error) (core.Budget, error) {
	var (
		b        core.Budget
		limitStr string
	)
	err := scan(&b.ID, &b.UserID, &b.CategoryID, &limitStr, &b.Month, &b.Year,
		&b.CreatedAt, &b.Category.Name, &b.Category.ColorCode, &b.Category.Icon)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Budget{}, err
		}
		return core.Budget{}, fmt.Errorf("scan budget: %w", err)
	}

	b.LimitAmount, err = decimal.NewFromString(limitStr)
	if err != nil {
		return core.Budget{}, fmt.Errorf("parse limit %q: %w", limitStr, err)
	}
	return b, nil
}
