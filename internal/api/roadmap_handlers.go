package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mirrorlog/mirrorlog-server/internal/http/response"
	"github.com/mirrorlog/mirrorlog-server/internal/service"
)

func (s *Server) handleCreateRoadmap(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	var req service.CreateRoadmapRequest
	if !s.decode(w, r, &req) {
		return
	}

	view, err := s.roadmapService.CreateForPage(r.Context(), user.ID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, view, "roadmap created", s.logger)
}

func (s *Server) handleGetRoadmap(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	view, err := s.roadmapService.GetByPage(r.Context(), chi.URLParam(r, "pageID"), user.ID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, view, "", s.logger)
}

func (s *Server) handleReplaceSubheadings(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	var req service.ReplaceSubheadingsRequest
	if !s.decode(w, r, &req) {
		return
	}

	view, err := s.roadmapService.ReplaceSubheadings(r.Context(), chi.URLParam(r, "roadmapID"), user.ID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, view, "roadmap updated", s.logger)
}

func (s *Server) handleAddSubheading(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	var req service.AddSubheadingRequest
	if !s.decode(w, r, &req) {
		return
	}

	view, idx, err := s.roadmapService.AddSubheading(r.Context(), chi.URLParam(r, "roadmapID"), user.ID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, map[string]any{"roadmap": view, "index": idx}, "subheading added", s.logger)
}

func (s *Server) handleDeleteRoadmap(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if err := s.roadmapService.Delete(r.Context(), chi.URLParam(r, "roadmapID"), user.ID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

func (s *Server) handleAddTodo(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	idx, ok := pathIndex(r, "idx")
	if !ok {
		response.BadRequest(w, "invalid subheading index", s.logger)
		return
	}

	var req service.AddTodoRequest
	if !s.decode(w, r, &req) {
		return
	}

	todo, err := s.roadmapService.AddTodo(r.Context(), chi.URLParam(r, "roadmapID"), idx, user.ID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, todo, "todo added", s.logger)
}

func (s *Server) handleToggleTodo(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	todo, err := s.roadmapService.ToggleTodo(r.Context(), chi.URLParam(r, "todoID"), user.ID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, todo, "todo toggled", s.logger)
}

func (s *Server) handleRemoveTodo(w http.ResponseWriter, r *http.Request) {
	user, err := requester(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	idx, ok := pathIndex(r, "idx")
	if !ok {
		response.BadRequest(w, "invalid subheading index", s.logger)
		return
	}

	err = s.roadmapService.RemoveTodo(r.Context(), chi.URLParam(r, "roadmapID"), idx, chi.URLParam(r, "todoID"), user.ID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
