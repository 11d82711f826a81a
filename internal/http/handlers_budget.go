package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/services"

	"github.com/shopspring/decimal"
)

type budgetListData struct {
	List      core.BudgetList
	MonthName string
	PrevMonth int
	PrevYear  int
	NextMonth int
	NextYear  int
}

type budgetFormData struct {
	Budget     core.Budget
	Categories []core.Category
	Editing    bool
	Error      string
}

func (s *Server) handleBudgetList(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	month, year := parseMonthYear(r)

	list, err := s.budgets.ListView(r.Context(), u.ID, month, year)
	if err != nil {
		slog.ErrorContext(r.Context(), "Budget list failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	prev := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	next := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	s.render(w, r, "budgets.html", "Budgets", budgetListData{
		List:      list,
		MonthName: time.Month(month).String(),
		PrevMonth: int(prev.Month()),
		PrevYear:  prev.Year(),
		NextMonth: int(next.Month()),
		NextYear:  next.Year(),
	})
}

func (s *Server) handleBudgetForm(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	month, year := parseMonthYear(r)

	data := budgetFormData{
		Budget: core.Budget{Month: month, Year: year},
	}
	if id, ok := pathID(r); ok {
		b, err := s.budgets.Get(r.Context(), id, u.ID)
		if errors.Is(err, services.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "Budget fetch failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		data.Budget = b
		data.Editing = true
	}

	categories, err := s.budgets.ExpenseCategories(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Category list failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	data.Categories = categories

	title := "New Budget"
	if data.Editing {
		title = "Edit Budget"
	}
	s.render(w, r, "budget_form.html", title, data)
}

func (s *Server) handleBudgetCreate(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())

	b, formErr := parseBudgetForm(r)
	b.UserID = u.ID
	if formErr == nil {
		formErr = s.budgets.Create(r.Context(), b)
	}
	if formErr != nil {
		s.renderBudgetError(w, r, b, false, formErr)
		return
	}

	s.setFlash(w, "Budget created.")
	http.Redirect(w, r, budgetListURL(b.Month, b.Year), http.StatusSeeOther)
}

func (s *Server) handleBudgetUpdate(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	b, formErr := parseBudgetForm(r)
	b.ID = id
	b.UserID = u.ID
	if formErr == nil {
		formErr = s.budgets.Update(r.Context(), b)
	}
	if errors.Is(formErr, services.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if formErr != nil {
		s.renderBudgetError(w, r, b, true, formErr)
		return
	}

	s.setFlash(w, "Budget updated.")
	http.Redirect(w, r, budgetListURL(b.Month, b.Year), http.StatusSeeOther)
}

func (s *Server) handleBudgetDelete(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	err := s.budgets.Delete(r.Context(), id, u.ID)
	if errors.Is(err, services.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Budget delete failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.setFlash(w, "Budget deleted.")
	month, year := parseMonthYear(r)
	http.Redirect(w, r, budgetListURL(month, year), http.StatusSeeOther)
}

func (s *Server) renderBudgetError(w http.ResponseWriter, r *http.Request, b core.Budget, editing bool, formErr error) {
	status := http.StatusUnprocessableEntity
	var msg string
	switch {
	case errors.Is(formErr, services.ErrDuplicateBudget):
		status = http.StatusConflict
		msg = formErr.Error()
	case isValidationError(formErr):
		msg = formErr.Error()
	default:
		slog.ErrorContext(r.Context(), "Budget save failed", "error", formErr)
		status = http.StatusInternalServerError
		msg = "Something went wrong. Please try again."
	}

	categories, err := s.budgets.ExpenseCategories(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	title := "New Budget"
	if editing {
		title = "Edit Budget"
	}
	s.renderStatus(w, r, status, "budget_form.html", title, budgetFormData{
		Budget:     b,
		Categories: categories,
		Editing:    editing,
		Error:      msg,
	})
}

func budgetListURL(month, year int) string {
	return fmt.Sprintf("/budgets?month=%d&year=%d", month, year)
}

func parseBudgetForm(r *http.Request) (core.Budget, error) {
	if err := r.ParseForm(); err != nil {
		return core.Budget{}, core.ErrInvalidAmount
	}

	var b core.Budget
	limit, err := decimal.NewFromString(strings.TrimSpace(r.Form.Get("limit")))
	if err != nil {
		return b, core.ErrInvalidAmount
	}
	b.LimitAmount = limit

	categoryID, err := strconv.ParseInt(r.Form.Get("category"), 10, 64)
	if err != nil {
		return b, core.ErrInvalidCategory
	}
	b.CategoryID = categoryID

	month, err := strconv.Atoi(r.Form.Get("month"))
	if err != nil {
		return b, core.ErrInvalidMonth
	}
	b.Month = month

	year, err := strconv.Atoi(r.Form.Get("year"))
	if err != nil {
		return b, core.ErrInvalidYear
	}
	b.Year = year

	return b, nil
}
