package api

import (
	"net/http"

	"github.com/mirrorlog/mirrorlog-server/internal/http/response"
)

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{"status": "ok"}, "", s.logger)
}
