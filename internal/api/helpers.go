package api

import (
	"net/http"
	"strconv"

	"encoding/json/v2"
	"github.com/go-chi/chi/v5"

	"github.com/mirrorlog/mirrorlog-server/internal/http/response"
)

// decode unmarshals the request body into v, writing a 400 response on
// failure. Returns false when the caller should abort.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.UnmarshalRead(r.Body, v); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return false
	}
	return true
}

// intQuery parses an integer query parameter, returning 0 when absent
// or malformed. Services fall back to defaults for zero values.
func intQuery(r *http.Request, name string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// pathIndex parses a numeric path parameter such as a subheading index.
func pathIndex(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
