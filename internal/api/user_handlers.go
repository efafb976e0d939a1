package api

import (
	"net/http"

	"github.com/mirrorlog/mirrorlog-server/internal/http/response"
	"github.com/mirrorlog/mirrorlog-server/internal/service"
)

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	me, err := s.userService.GetMe(r.Context(), user.ID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, me, "", s.logger)
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	var req service.UpdateMeRequest
	if !s.decode(w, r, &req) {
		return
	}

	updated, err := s.userService.UpdateMe(r.Context(), user.ID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, updated, "account updated", s.logger)
}

func (s *Server) handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	var req service.DeleteMeRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.userService.DeleteMe(r.Context(), user.ID, req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	users, err := s.userService.ListUsers(r.Context(), user)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, users, "", s.logger)
}
