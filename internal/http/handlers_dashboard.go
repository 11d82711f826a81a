package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"fintrack/internal/core"
)

type dashboardData struct {
	Snapshot core.DashboardSnapshot
	Month    string
	Year     int
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	now := time.Now().UTC()

	snap := s.dashboard.Snapshot(r.Context(), u.ID)
	s.render(w, r, "dashboard.html", "Dashboard", dashboardData{
		Snapshot: snap,
		Month:    now.Month().String(),
		Year:     now.Year(),
	})
}

// handleChartData feeds the expense breakdown chart. Amounts are emitted as
// floats for the chart library; the page itself renders exact strings.
func (s *Server) handleChartData(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	month, year := parseMonthYear(r)
	from, to := core.MonthWindow(year, month)

	summaries, err := s.transactions.ExpensesByCategory(r.Context(), u.ID, &from, &to)
	if err != nil {
		slog.ErrorContext(r.Context(), "Chart data failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	payload := struct {
		Labels  []string  `json:"labels"`
		Amounts []float64 `json:"amounts"`
		Colors  []string  `json:"colors"`
	}{
		Labels:  make([]string, 0, len(summaries)),
		Amounts: make([]float64, 0, len(summaries)),
		Colors:  make([]string, 0, len(summaries)),
	}
	for _, c := range summaries {
		payload.Labels = append(payload.Labels, c.CategoryName)
		payload.Amounts = append(payload.Amounts, c.Amount.InexactFloat64())
		payload.Colors = append(payload.Colors, c.ColorCode)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.ErrorContext(r.Context(), "Chart data encode failed", "error", err)
	}
}
