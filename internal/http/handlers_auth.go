package http

import (
	"errors"
	"net/http"

	"kakeibo/internal/auth"
	appLog "kakeibo/internal/log"
)

type loginPage struct {
	Error string
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if s.gate.Session(r).Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", loginPage{})
}

// handleLogin re-renders the form on a wrong password; there is no lockout
// beyond the POST rate limit.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := appLog.FromContext(ctx).WithComponent(appLog.ComponentAuth)

	password, err := ParsePassword(w, r)
	if err != nil {
		logger.WarnContext(ctx, "Invalid login request", appLog.FieldError, err)
		s.render(w, r, http.StatusBadRequest, "login.html", loginPage{Error: MsgBadRequest})
		return
	}

	if err := s.gate.Login(w, r, password); err != nil {
		if errors.Is(err, auth.ErrAuthenticationFailed) {
			s.render(w, r, http.StatusOK, "login.html", loginPage{Error: MsgLoginFailed})
			return
		}
		logger.ErrorContext(ctx, "Login failed", appLog.FieldOperation, appLog.OpLogin, appLog.FieldError, err)
		s.render(w, r, http.StatusInternalServerError, "login.html", loginPage{Error: MsgSessionError})
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.gate.Logout(w, r); err != nil {
		appLog.FromContext(ctx).WithComponent(appLog.ComponentAuth).
			ErrorContext(ctx, "Logout failed", appLog.FieldOperation, appLog.OpLogout, appLog.FieldError, err)
		http.Error(w, MsgSessionError, http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
