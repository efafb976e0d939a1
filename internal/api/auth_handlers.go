package api

import (
	"net/http"

	"github.com/mirrorlog/mirrorlog-server/internal/http/response"
	"github.com/mirrorlog/mirrorlog-server/internal/service"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !s.decode(w, r, &req) {
		return
	}

	user, err := s.authService.Register(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, user, "account created", s.logger)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.authService.Login(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, "login successful", s.logger)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req service.RefreshRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.authService.Refresh(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, "token refreshed", s.logger)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if err := s.authService.Logout(r.Context(), user.ID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, nil, "logged out", s.logger)
}
