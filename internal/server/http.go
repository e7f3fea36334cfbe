package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alfredjeanlab/nobel/internal/auth"
	"github.com/alfredjeanlab/nobel/internal/model"
	"github.com/alfredjeanlab/nobel/internal/ratelimit"
	"github.com/alfredjeanlab/nobel/internal/store"
)

// authRealm is sent in WWW-Authenticate challenges.
const authRealm = "nobel"

// NewHTTPHandler returns an http.Handler with all routes registered.
// Query routes use the default rate-limit tier; mutations use the strict
// tier and require Basic credentials.
func (s *PrizeServer) NewHTTPHandler() http.Handler {
	mux := http.NewServeMux()

	query := func(h http.HandlerFunc) http.Handler { return s.rateLimit(ratelimit.TierDefault, h) }
	mutate := func(h http.HandlerFunc) http.Handler { return s.rateLimit(ratelimit.TierStrict, h) }

	mux.Handle("GET /{$}", query(s.handleStatus))
	mux.Handle("GET /security/info", query(s.handleSecurityInfo))
	mux.Handle("GET /prizes", query(s.handleListPrizes))
	mux.Handle("GET /prizes/year/{year}", query(s.handlePrizesByYear))
	mux.Handle("GET /prizes/category/{category}", query(s.handlePrizesByCategory))
	mux.Handle("GET /prizes/motivation/{year}/{category}", query(s.handleMotivation))
	mux.Handle("GET /laureates/search", query(s.handleSearchLaureates))
	mux.Handle("GET /laureates/{year}/{category}", query(s.handleLaureates))
	mux.Handle("POST /prizes", mutate(s.handleCreatePrize))
	mux.Handle("PUT /prizes/{year}/{category}", mutate(s.handleUpdatePrize))
	mux.Handle("DELETE /prizes/{year}/{category}", mutate(s.handleDeletePrize))

	mux.Handle("GET /events/{year}/{category}", query(s.handleGetEvents))
	mux.HandleFunc("GET /events/stream", s.handleEventStream)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	return RecoveryMiddleware(s.logger, LoggingMiddleware(s.logger, s.metrics, mux))
}

// handleHealth handles GET /health.
func (s *PrizeServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.Count(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "prizes": n})
}

// authenticate verifies Basic credentials and runs authorize for the user.
// action names the operation in a 403. On failure it writes the response
// and returns nil.
func (s *PrizeServer) authenticate(w http.ResponseWriter, r *http.Request, action auth.Action, authorize func(*auth.User) error) *auth.User {
	username, password, ok := r.BasicAuth()
	if !ok {
		writeUnauthorized(w, "authentication required")
		return nil
	}
	user, err := s.credentials.Verify(username, password)
	if err != nil {
		writeUnauthorized(w, err.Error())
		return nil
	}
	if err := authorize(user); err != nil {
		if errors.Is(err, auth.ErrForbidden) {
			writeError(w, http.StatusForbidden, "insufficient permissions: "+string(action)+" requires a different role")
			return nil
		}
		s.logger.Error("authorization failed", "user", user.Name, "action", action, "error", err)
		writeError(w, http.StatusInternalServerError, "authorization failed")
		return nil
	}
	return user
}

// allowed authorizes action through the role policy.
func (s *PrizeServer) allowed(action auth.Action) func(*auth.User) error {
	return func(u *auth.User) error { return s.policy.Authorize(u, action) }
}

// writeStoreError maps store and validation errors to HTTP responses.
func (s *PrizeServer) writeStoreError(w http.ResponseWriter, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusUnprocessableEntity, ve.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error("store operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// notePersistWarning logs and counts a mutation whose document rewrite
// failed. It reports whether err is such a warning (or nil), in which case
// the mutation succeeded.
func (s *PrizeServer) notePersistWarning(err error, op, year, category string) bool {
	if err == nil {
		return true
	}
	if !store.IsPersistWarning(err) {
		return false
	}
	s.logger.Warn("mutation applied in memory but not persisted", "op", op, "year", year, "category", category, "error", err)
	s.metrics.PersistWarning()
	return true
}

// decodeBody decodes a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeUnauthorized writes a 401 with a Basic challenge.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+authRealm+`"`)
	writeError(w, http.StatusUnauthorized, message)
}
