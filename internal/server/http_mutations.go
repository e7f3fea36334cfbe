package server

import (
	"net/http"

	"github.com/alfredjeanlab/nobel/internal/auth"
	"github.com/alfredjeanlab/nobel/internal/events"
	"github.com/alfredjeanlab/nobel/internal/model"
)

// handleCreatePrize handles POST /prizes.
func (s *PrizeServer) handleCreatePrize(w http.ResponseWriter, r *http.Request) {
	user := s.authenticate(w, r, auth.ActionCreate, s.allowed(auth.ActionCreate))
	if user == nil {
		return
	}

	var prize model.Prize
	if err := decodeBody(w, r, &prize); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}

	created, err := s.store.CreatePrize(r.Context(), &prize)
	if !s.notePersistWarning(err, "create", prize.Year, prize.Category) {
		s.writeStoreError(w, err)
		return
	}

	s.logger.Info("prize created", "year", created.Year, "category", created.Category, "user", user.Name)
	s.recordAndPublish(r.Context(), events.TopicPrizeCreated, created.Year, created.Category, user.Name,
		events.PrizeCreated{Prize: created, Actor: user.Name})

	writeJSON(w, http.StatusCreated, created)
}

// handleUpdatePrize handles PUT /prizes/{year}/{category}. Only fields
// present in the body change; null clears optional fields.
func (s *PrizeServer) handleUpdatePrize(w http.ResponseWriter, r *http.Request) {
	year, category := r.PathValue("year"), r.PathValue("category")
	user := s.authenticate(w, r, auth.ActionUpdate, s.allowed(auth.ActionUpdate))
	if user == nil {
		return
	}

	var update model.PrizeUpdate
	if err := decodeBody(w, r, &update); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}

	updated, err := s.store.UpdatePrize(r.Context(), year, category, &update)
	if !s.notePersistWarning(err, "update", year, category) {
		s.writeStoreError(w, err)
		return
	}

	s.logger.Info("prize updated", "year", year, "category", category, "user", user.Name)
	s.recordAndPublish(r.Context(), events.TopicPrizeUpdated, updated.Year, updated.Category, user.Name,
		events.PrizeUpdated{
			Year:     year,
			Category: category,
			Prize:    updated,
			Changes:  update.Changes(),
			Actor:    user.Name,
		})

	writeJSON(w, http.StatusOK, updated)
}

// handleDeletePrize handles DELETE /prizes/{year}/{category}. Admin only.
func (s *PrizeServer) handleDeletePrize(w http.ResponseWriter, r *http.Request) {
	year, category := r.PathValue("year"), r.PathValue("category")
	user := s.authenticate(w, r, auth.ActionDelete, s.policy.RequireAdmin)
	if user == nil {
		return
	}

	err := s.store.DeletePrize(r.Context(), year, category)
	if !s.notePersistWarning(err, "delete", year, category) {
		s.writeStoreError(w, err)
		return
	}

	s.logger.Info("prize deleted", "year", year, "category", category, "user", user.Name)
	s.recordAndPublish(r.Context(), events.TopicPrizeDeleted, year, category, user.Name,
		events.PrizeDeleted{Year: year, Category: category, Removed: 1, Actor: user.Name})

	w.WriteHeader(http.StatusNoContent)
}
