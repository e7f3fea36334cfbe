package server

import (
	"net/http"
	"strings"

	"github.com/alfredjeanlab/nobel/internal/model"
	"github.com/alfredjeanlab/nobel/internal/query"
)

// snapshot returns the current prizes, writing a 500 on failure.
func (s *PrizeServer) snapshot(w http.ResponseWriter, r *http.Request) ([]*model.Prize, bool) {
	prizes, err := s.store.ListPrizes(r.Context())
	if err != nil {
		s.logger.Error("failed to list prizes", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	return prizes, true
}

// handleStatus handles GET /.
func (s *PrizeServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.status(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleSecurityInfo handles GET /security/info.
func (s *PrizeServer) handleSecurityInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.securityInfo())
}

// handleListPrizes handles GET /prizes.
func (s *PrizeServer) handleListPrizes(w http.ResponseWriter, r *http.Request) {
	prizes, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	all := query.All(prizes)
	if len(all) == 0 {
		writeError(w, http.StatusNotFound, "no Nobel prize data available")
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// handlePrizesByYear handles GET /prizes/year/{year}.
func (s *PrizeServer) handlePrizesByYear(w http.ResponseWriter, r *http.Request) {
	year := r.PathValue("year")
	prizes, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	found := query.ByYear(prizes, year)
	if len(found) == 0 {
		writeError(w, http.StatusNotFound, "no prizes found for year "+year)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

// handlePrizesByCategory handles GET /prizes/category/{category}.
func (s *PrizeServer) handlePrizesByCategory(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	prizes, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	found := query.ByCategory(prizes, category)
	if len(found) == 0 {
		writeError(w, http.StatusNotFound, "no prizes found for category '"+category+"'")
		return
	}
	writeJSON(w, http.StatusOK, found)
}

// handleMotivation handles GET /prizes/motivation/{year}/{category}. The
// body is a JSON string.
func (s *PrizeServer) handleMotivation(w http.ResponseWriter, r *http.Request) {
	year, category := r.PathValue("year"), r.PathValue("category")
	prizes, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	text, found := query.Motivation(prizes, year, category)
	if !found {
		writeError(w, http.StatusNotFound, "no "+category+" prize found for "+year)
		return
	}
	writeJSON(w, http.StatusOK, text)
}

// handleSearchLaureates handles GET /laureates/search?firstname=&surname=.
func (s *PrizeServer) handleSearchLaureates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	firstname, surname := q.Get("firstname"), q.Get("surname")
	var missing []string
	if !q.Has("firstname") {
		missing = append(missing, "firstname")
	}
	if !q.Has("surname") {
		missing = append(missing, "surname")
	}
	if len(missing) > 0 {
		writeError(w, http.StatusUnprocessableEntity, "missing query parameter: "+strings.Join(missing, ", "))
		return
	}
	prizes, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	found := query.SearchLaureate(prizes, firstname, surname)
	if len(found) == 0 {
		writeError(w, http.StatusNotFound, "no prizes found for laureate '"+strings.TrimSpace(firstname+" "+surname)+"'")
		return
	}
	writeJSON(w, http.StatusOK, found)
}

// handleLaureates handles GET /laureates/{year}/{category}. A missing prize
// and a prize without laureates are both 404, with different messages.
func (s *PrizeServer) handleLaureates(w http.ResponseWriter, r *http.Request) {
	year, category := r.PathValue("year"), r.PathValue("category")
	prizes, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	laureates, found := query.LaureatesOf(prizes, year, category)
	switch {
	case !found:
		writeError(w, http.StatusNotFound, "no "+category+" prize found for "+year)
	case len(laureates) == 0:
		writeError(w, http.StatusNotFound, "the "+year+" "+category+" prize has no laureates")
	default:
		writeJSON(w, http.StatusOK, laureates)
	}
}

// handleGetEvents handles GET /events/{year}/{category}: the mutation
// journal for one prize, oldest first.
func (s *PrizeServer) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	year, category := r.PathValue("year"), r.PathValue("category")
	evts, err := s.journal.List(r.Context(), year, category)
	if err != nil {
		s.logger.Error("failed to list events", "year", year, "category", category, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if evts == nil {
		evts = []*model.Event{}
	}
	writeJSON(w, http.StatusOK, evts)
}
