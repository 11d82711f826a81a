package http

import (
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"5", "$5.00"},
		{"45.5", "$45.50"},
		{"1234.56", "$1,234.56"},
		{"1234567.8", "$1,234,567.80"},
		{"-20", "-$20.00"},
		{"999", "$999.00"},
		{"1000", "$1,000.00"},
	}
	for _, tt := range tests {
		got := formatMoney(decimal.RequireFromString(tt.in))
		if got != tt.want {
			t.Errorf("formatMoney(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseMonthYearDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/budgets?month=13&year=12", nil)
	month, year := parseMonthYear(r)
	if month < 1 || month > 12 {
		t.Errorf("month out of range: %d", month)
	}
	if year < 1970 {
		t.Errorf("year out of range: %d", year)
	}

	r = httptest.NewRequest("GET", "/budgets?month=2&year=2026", nil)
	month, year = parseMonthYear(r)
	if month != 2 || year != 2026 {
		t.Errorf("got %d/%d, want 2/2026", month, year)
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  hello\x00world  "); got != "helloworld" {
		t.Errorf("sanitizeInput = %q", got)
	}
	if got := sanitizeInput("multi\nline"); got != "multi\nline" {
		t.Errorf("newlines should survive, got %q", got)
	}
}

func TestRateLimiterWindow(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < rateLimitPerMinute; i++ {
		if !rl.allow("10.1.2.3") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.allow("10.1.2.3") {
		t.Error("request over the limit should be denied")
	}
	if !rl.allow("10.9.9.9") {
		t.Error("other clients are unaffected")
	}
}
