package api

import (
	"errors"
	"net/http"

	"github.com/MikeSquared-Agency/faqbase/internal/auth"
)

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Role    string `json:"role"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := s.auth.Login(r.Context(), req.Password)
	switch {
	case errors.Is(err, auth.ErrPasswordRequired):
		writeError(w, http.StatusBadRequest, "パスワードが必要です")
	case errors.Is(err, auth.ErrInvalidPassword):
		writeError(w, http.StatusUnauthorized, "パスワードが正しくありません")
	case err != nil:
		s.logger.Error("login", "error", err)
		writeError(w, http.StatusInternalServerError, "認証エラーが発生しました")
	default:
		writeJSON(w, http.StatusOK, loginResponse{Success: true, Token: token, Role: auth.RoleAdmin})
	}
}

func (s *Server) checkAuth(w http.ResponseWriter, r *http.Request) {
	ok, role := s.auth.Check(r)
	writeJSON(w, http.StatusOK, map[string]any{"authenticated": ok, "role": role})
}

// audit logs an admin mutation together with the ID of the token that
// authorised it.
func (s *Server) audit(r *http.Request, msg string, args ...any) {
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		args = append(args, "token_id", claims.ID)
	}
	s.logger.Info(msg, args...)
}
