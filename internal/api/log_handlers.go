package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mirrorlog/mirrorlog-server/internal/http/response"
	"github.com/mirrorlog/mirrorlog-server/internal/service"
)

func (s *Server) handleCreateLog(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	var req service.CreateLogRequest
	if !s.decode(w, r, &req) {
		return
	}

	entry, err := s.logService.Create(r.Context(), user.ID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, entry, "log created", s.logger)
}

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	q := r.URL.Query()
	req := service.ListLogsRequest{
		PageID:  q.Get("pageId"),
		TagID:   q.Get("tagId"),
		Search:  q.Get("search"),
		From:    q.Get("from"),
		To:      q.Get("to"),
		PageNum: intQuery(r, "pageNum"),
		Limit:   intQuery(r, "limit"),
	}

	page, err := s.logService.List(r.Context(), user.ID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, page, "", s.logger)
}

func (s *Server) handleGetLog(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	entry, err := s.logService.Get(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, entry, "", s.logger)
}

func (s *Server) handleUpdateLog(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	var req service.UpdateLogRequest
	if !s.decode(w, r, &req) {
		return
	}

	entry, err := s.logService.Update(r.Context(), chi.URLParam(r, "id"), user.ID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, entry, "log updated", s.logger)
}

func (s *Server) handleDeleteLog(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if err := s.logService.Delete(r.Context(), chi.URLParam(r, "id"), user.ID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
