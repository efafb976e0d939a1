package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mirrorlog/mirrorlog-server/internal/http/response"
	"github.com/mirrorlog/mirrorlog-server/internal/service"
)

func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	var req service.CreatePageRequest
	if !s.decode(w, r, &req) {
		return
	}

	page, err := s.pageService.Create(r.Context(), user.ID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, page, "page created", s.logger)
}

func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	pages, err := s.pageService.List(r.Context(), user.ID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, pages, "", s.logger)
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	page, err := s.pageService.Get(r.Context(), chi.URLParam(r, "pageID"), user.ID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, page, "", s.logger)
}

func (s *Server) handleUpdatePage(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	var req service.UpdatePageRequest
	if !s.decode(w, r, &req) {
		return
	}

	page, err := s.pageService.Update(r.Context(), chi.URLParam(r, "pageID"), user.ID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, page, "page updated", s.logger)
}

func (s *Server) handleDeletePage(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if err := s.pageService.Delete(r.Context(), chi.URLParam(r, "pageID"), user.ID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
