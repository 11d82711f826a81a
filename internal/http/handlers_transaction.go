package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/services"

	"github.com/shopspring/decimal"
)

type transactionListData struct {
	Transactions []core.Transaction
	Categories   []core.Category
	Filter       transactionFilterForm
}

type transactionFilterForm struct {
	From       string
	To         string
	CategoryID int64
	Type       string
}

type transactionFormData struct {
	Transaction core.Transaction
	Categories  []core.Category
	Editing     bool
	Error       string
}

func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())

	form, filter := parseTransactionFilter(r)
	transactions, err := s.transactions.List(r.Context(), u.ID, filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction list failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	categories, err := s.transactions.Categories(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Category list failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "transactions.html", "Transactions", transactionListData{
		Transactions: transactions,
		Categories:   categories,
		Filter:       form,
	})
}

func (s *Server) handleTransactionForm(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())

	data := transactionFormData{
		Transaction: core.Transaction{Date: time.Now().UTC(), Type: core.Expense},
	}
	if id, ok := pathID(r); ok {
		tx, err := s.transactions.Get(r.Context(), id, u.ID)
		if errors.Is(err, services.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "Transaction fetch failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		data.Transaction = tx
		data.Editing = true
	}

	categories, err := s.transactions.Categories(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Category list failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	data.Categories = categories

	title := "New Transaction"
	if data.Editing {
		title = "Edit Transaction"
	}
	s.render(w, r, "transaction_form.html", title, data)
}

func (s *Server) handleTransactionCreate(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())

	tx, formErr := parseTransactionForm(r)
	tx.UserID = u.ID
	if formErr == nil {
		formErr = s.transactions.Create(r.Context(), tx)
	}
	if formErr != nil {
		s.renderTransactionError(w, r, tx, false, formErr)
		return
	}

	s.setFlash(w, "Transaction added.")
	http.Redirect(w, r, "/transactions", http.StatusSeeOther)
}

func (s *Server) handleTransactionUpdate(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	tx, formErr := parseTransactionForm(r)
	tx.ID = id
	tx.UserID = u.ID
	if formErr == nil {
		formErr = s.transactions.Update(r.Context(), tx)
	}
	if errors.Is(formErr, services.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if formErr != nil {
		s.renderTransactionError(w, r, tx, true, formErr)
		return
	}

	s.setFlash(w, "Transaction updated.")
	http.Redirect(w, r, "/transactions", http.StatusSeeOther)
}

func (s *Server) handleTransactionDelete(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	err := s.transactions.Delete(r.Context(), id, u.ID)
	if errors.Is(err, services.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction delete failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.setFlash(w, "Transaction deleted.")
	http.Redirect(w, r, "/transactions", http.StatusSeeOther)
}

func (s *Server) renderTransactionError(w http.ResponseWriter, r *http.Request, tx core.Transaction, editing bool, formErr error) {
	status := http.StatusUnprocessableEntity
	var msg string
	switch {
	case isValidationError(formErr):
		msg = formErr.Error()
	default:
		slog.ErrorContext(r.Context(), "Transaction save failed", "error", formErr)
		status = http.StatusInternalServerError
		msg = "Something went wrong. Please try again."
	}

	categories, err := s.transactions.Categories(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	title := "New Transaction"
	if editing {
		title = "Edit Transaction"
	}
	s.renderStatus(w, r, status, "transaction_form.html", title, transactionFormData{
		Transaction: tx,
		Categories:  categories,
		Editing:     editing,
		Error:       msg,
	})
}

func parseTransactionFilter(r *http.Request) (transactionFilterForm, core.TransactionFilter) {
	q := r.URL.Query()
	form := transactionFilterForm{
		From: strings.TrimSpace(q.Get("from")),
		To:   strings.TrimSpace(q.Get("to")),
		Type: strings.TrimSpace(q.Get("type")),
	}

	var filter core.TransactionFilter
	if t, err := time.Parse("2006-01-02", form.From); err == nil {
		filter.From = &t
	} else {
		form.From = ""
	}
	if t, err := time.Parse("2006-01-02", form.To); err == nil {
		filter.To = &t
	} else {
		form.To = ""
	}
	if id, err := strconv.ParseInt(q.Get("category"), 10, 64); err == nil && id > 0 {
		form.CategoryID = id
		filter.CategoryID = id
	}
	if tt := core.TransactionType(form.Type); tt.Valid() {
		filter.Type = tt
	} else {
		form.Type = ""
	}
	return form, filter
}

func parseTransactionForm(r *http.Request) (core.Transaction, error) {
	if err := r.ParseForm(); err != nil {
		return core.Transaction{}, core.ErrInvalidAmount
	}

	tx := core.Transaction{
		Description: sanitizeInput(r.Form.Get("description")),
		Type:        core.TransactionType(strings.TrimSpace(r.Form.Get("type"))),
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(r.Form.Get("amount")))
	if err != nil {
		return tx, core.ErrInvalidAmount
	}
	tx.Amount = amount

	categoryID, err := strconv.ParseInt(r.Form.Get("category"), 10, 64)
	if err != nil {
		return tx, core.ErrInvalidCategory
	}
	tx.CategoryID = categoryID

	date, err := time.Parse("2006-01-02", strings.TrimSpace(r.Form.Get("date")))
	if err != nil {
		return tx, core.ErrInvalidDate
	}
	tx.Date = date

	return tx, nil
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidAmount,
		core.ErrEmptyDescription,
		core.ErrLongDescription,
		core.ErrInvalidCategory,
		core.ErrInvalidType,
		core.ErrInvalidDate,
		core.ErrInvalidMonth,
		core.ErrInvalidYear,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
