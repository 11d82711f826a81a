package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

const transactionColumns = `
	t.id, t.user_id, t.description, t.amount, t.category_id, t.type,
	t.tx_date, t.created_at, c.name, c.color_code, c.icon`

// Transactions returns a user's transactions matching the filter, newest
// first. Category metadata arrives materialized on every row.
func (r *Repository) Transactions(ctx context.Context, userID int64, f core.TransactionFilter) ([]core.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions t
		JOIN categories c ON t.category_id = c.id
		WHERE t.user_id = ?`
	args := []any{userID}

	if f.From != nil {
		query += ` AND t.tx_date >= ?`
		args = append(args, f.From.Format(dateLayout))
	}
	if f.To != nil {
		query += ` AND t.tx_date <= ?`
		args = append(args, f.To.Format(dateLayout))
	}
	if f.CategoryID > 0 {
		query += ` AND t.category_id = ?`
		args = append(args, f.CategoryID)
	}
	if f.Type != "" {
		query += ` AND t.type = ?`
		args = append(args, string(f.Type))
	}
	query += ` ORDER BY t.tx_date DESC, t.id DESC`

	return r.queryTransactions(ctx, query, args...)
}

// RecentTransactions returns the n newest transactions of any type.
func (r *Repository) RecentTransactions(ctx context.Context, userID int64, n int) ([]core.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions t
		JOIN categories c ON t.category_id = c.id
		WHERE t.user_id = ?
		ORDER BY t.tx_date DESC, t.id DESC
		LIMIT ?`
	return r.queryTransactions(ctx, query, userID, n)
}

func (r *Repository) TransactionByID(ctx context.Context, id, userID int64) (core.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions t
		JOIN categories c ON t.category_id = c.id
		WHERE t.id = ? AND t.user_id = ?`
	row := r.db.QueryRowContext(ctx, query, id, userID)

	tx, err := scanTransaction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, description, amount, category_id, type, tx_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Description, t.Amount.String(), t.CategoryID, string(t.Type),
		t.Date.Format(dateLayout))
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	return res.LastInsertId()
}

// UpdateTransaction rewrites a transaction scoped to its owner. Returns the
// number of rows touched; 0 means the id was absent or not the caller's.
func (r *Repository) UpdateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET description = ?, amount = ?, category_id = ?, type = ?, tx_date = ?
		 WHERE id = ? AND user_id = ?`,
		t.Description, t.Amount.String(), t.CategoryID, string(t.Type),
		t.Date.Format(dateLayout), t.ID, t.UserID)
	if err != nil {
		return 0, fmt.Errorf("update transaction: %w", err)
	}
	return res.RowsAffected()
}

func (r *Repository) DeleteTransaction(ctx context.Context, id, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return 0, fmt.Errorf("delete transaction: %w", err)
	}
	return res.RowsAffected()
}

func (r *Repository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

func scanTransaction(scan func(...any) error) (core.Transaction, error) {
	var (
		tx        core.Transaction
		amountStr string
		typeStr   string
		dateStr   string
	)
	err := scan(&tx.ID, &tx.UserID, &tx.Description, &amountStr, &tx.CategoryID,
		&typeStr, &dateStr, &tx.CreatedAt,
		&tx.Category.Name, &tx.Category.ColorCode, &tx.Category.Icon)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	tx.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", amountStr, err)
	}
	tx.Type = core.TransactionType(typeStr)
	tx.Date, err = time.ParseInLocation(dateLayout, dateStr, time.UTC)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", dateStr, err)
	}
	return tx, nil
}
