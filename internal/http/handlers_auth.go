package http

import (
	"errors"
	"log/slog"
	"net/http"

	"fintrack/internal/services"
)

type authFormData struct {
	Error    string
	Username string
	Email    string
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if s.loggedIn(r) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.render(w, r, "login.html", "Sign In", authFormData{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	username := sanitizeInput(r.Form.Get("username"))
	password := r.Form.Get("password")

	u, err := s.auth.Authenticate(r.Context(), username, password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		s.renderStatus(w, r, http.StatusUnauthorized, "login.html", "Sign In", authFormData{
			Error:    "Invalid username or password.",
			Username: username,
		})
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Login failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	sess, err := s.auth.StartSession(r.Context(), u.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Session start failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.setSessionCookie(w, sess)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	if s.loggedIn(r) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.render(w, r, "register.html", "Create Account", authFormData{})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	username := sanitizeInput(r.Form.Get("username"))
	email := sanitizeInput(r.Form.Get("email"))
	password := r.Form.Get("password")

	u, err := s.auth.Register(r.Context(), username, email, password)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, services.ErrUserExists) {
			status = http.StatusConflict
		}
		s.renderStatus(w, r, status, "register.html", "Create Account", authFormData{
			Error:    err.Error(),
			Username: username,
			Email:    email,
		})
		return
	}

	sess, err := s.auth.StartSession(r.Context(), u.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Session start failed", "error", err)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	s.setSessionCookie(w, sess)
	s.setFlash(w, "Welcome to FinTrack!")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if err := s.auth.EndSession(r.Context(), cookie.Value); err != nil {
			slog.ErrorContext(r.Context(), "Session end failed", "error", err)
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) loggedIn(r *http.Request) bool {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return false
	}
	_, err = s.auth.SessionUser(r.Context(), cookie.Value)
	return err == nil
}
