package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
	CategoryBoth    CategoryType = "both"
)

type (
	TransactionType string
	CategoryType    string

	// User is an account holder. PasswordHash is a base64-encoded SHA-256
	// digest of the plaintext password.
	User struct {
		ID           int64
		Username     string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}

	// CategoryRef carries the display metadata of a category, materialized
	// at the query boundary so consumers never trigger follow-up fetches.
	CategoryRef struct {
		Name      string
		ColorCode string
		Icon      string
	}

	// Category is immutable reference data seeded by migrations.
	Category struct {
		ID          int64
		Name        string
		Description string
		Type        CategoryType
		ColorCode   string // for chart visualization, e.g. #fd7e14
		Icon        string // icon class name, e.g. fa-utensils
	}

	// Transaction is a single dated income or expense record.
	Transaction struct {
		ID          int64
		UserID      int64
		Description string
		Amount      decimal.Decimal // always > 0; direction is carried by Type
		CategoryID  int64
		Type        TransactionType
		Date        time.Time
		CreatedAt   time.Time
		Category    CategoryRef
	}

	// Budget is a per-category spending limit for one calendar month.
	Budget struct {
		ID          int64
		UserID      int64
		CategoryID  int64
		LimitAmount decimal.Decimal
		Month       int // 1-12
		Year        int
		CreatedAt   time.Time
		Category    CategoryRef
	}

	// Session is a server-side login session referenced by a cookie token.
	Session struct {
		Token     string
		UserID    int64
		ExpiresAt time.Time
	}
)

var (
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrEmptyDescription = errors.New("empty description")
	ErrLongDescription  = errors.New("description too long (max 200 characters)")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidMonth     = errors.New("month must be between 1 and 12")
	ErrInvalidYear      = errors.New("invalid year")
	ErrInvalidUsername  = errors.New("username must be between 3 and 50 characters")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrShortPassword    = errors.New("password must be at least 6 characters")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (c CategoryType) Valid() bool {
	return c == CategoryIncome || c == CategoryExpense || c == CategoryBoth
}

// Allows reports whether a category of this type can carry transactions of
// the given type. Nothing enforces this today; callers may use it to warn
// about mismatches.
func (c CategoryType) Allows(t TransactionType) bool {
	switch c {
	case CategoryBoth:
		return true
	case CategoryIncome:
		return t == Income
	case CategoryExpense:
		return t == Expense
	}
	return false
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return ErrLongDescription
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if t.CategoryID <= 0 {
		return ErrInvalidCategory
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (b Budget) Validate() error {
	if !b.LimitAmount.IsPositive() {
		return ErrInvalidAmount
	}
	if b.CategoryID <= 0 {
		return ErrInvalidCategory
	}
	if b.Month < 1 || b.Month > 12 {
		return ErrInvalidMonth
	}
	if b.Year < 1970 || b.Year > 9999 {
		return ErrInvalidYear
	}
	return nil
}

// ValidateRegistration checks the fields a new account is created from.
func ValidateRegistration(username, email, password string) error {
	if n := len(strings.TrimSpace(username)); n < 3 || n > 50 {
		return ErrInvalidUsername
	}
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || len(email) > 100 {
		return ErrInvalidEmail
	}
	if len(password) < 6 {
		return ErrShortPassword
	}
	return nil
}

// MonthWindow returns the inclusive [first day, last day] bounds of a
// calendar month, at midnight UTC.
func MonthWindow(year, month int) (start, end time.Time) {
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, 0).AddDate(0, 0, -1)
	return start, end
}
