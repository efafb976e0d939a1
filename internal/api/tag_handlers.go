package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mirrorlog/mirrorlog-server/internal/http/response"
	"github.com/mirrorlog/mirrorlog-server/internal/service"
)

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	var req service.CreateTagRequest
	if !s.decode(w, r, &req) {
		return
	}

	tag, err := s.tagService.Create(r.Context(), user, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, tag, "tag created", s.logger)
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	tags, err := s.tagService.List(r.Context(), chi.URLParam(r, "pageID"), user.ID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, tags, "", s.logger)
}

func (s *Server) handleUpdateTag(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	var req service.UpdateTagRequest
	if !s.decode(w, r, &req) {
		return
	}

	tag, err := s.tagService.Update(r.Context(), chi.URLParam(r, "id"), user, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, tag, "tag updated", s.logger)
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if err := s.tagService.Delete(r.Context(), chi.URLParam(r, "id"), user); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
