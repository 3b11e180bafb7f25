package api

import (
	"context"
	"net/http"

	"staybnb/internal/auth"
	"staybnb/internal/db"
	"staybnb/internal/listing"
	"staybnb/internal/search"
)

type PropertyService interface {
	Search(ctx context.Context, c search.Criteria, viewerID int) ([]db.Property, error)
	Get(ctx context.Context, id, viewerID int) (*db.Property, error)
	ListByHost(ctx context.Context, hostID int) ([]db.Property, error)
	Create(ctx context.Context, hostID int, in listing.Input) (*db.Property, error)
	Update(ctx context.Context, userID, id int, in listing.Input) (*db.Property, error)
	Delete(ctx context.Context, userID, id int) error
	AddFavorite(ctx context.Context, userID, propertyID int) error
	RemoveFavorite(ctx context.Context, userID, propertyID int) error
}

type PropertyList struct {
	Total      int           `json:"total"`
	Properties []db.Property `json:"properties"`
}

type PropertyHandler struct {
	Service PropertyService
}

func NewPropertyHandler(svc PropertyService) *PropertyHandler {
	return &PropertyHandler{Service: svc}
}

// Search takes the same query parameters the client keeps in its URL.
func (h *PropertyHandler) Search(w http.ResponseWriter, r *http.Request) {
	criteria := search.FromQuery(r.URL.Query())
	properties, err := h.Service.Search(r.Context(), criteria, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PropertyList{Total: len(properties), Properties: properties})
}

func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.Service.Get(r.Context(), id, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PropertyHandler) MyProperties(w http.ResponseWriter, r *http.Request) {
	properties, err := h.Service.ListByHost(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if properties == nil {
		properties = []db.Property{}
	}
	writeJSON(w, http.StatusOK, PropertyList{Total: len(properties), Properties: properties})
}

func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in listing.Input
	if !decode(w, r, &in) {
		return
	}
	p, err := h.Service.Create(r.Context(), auth.UserID(r.Context()), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in listing.Input
	if !decode(w, r, &in) {
		return
	}
	p, err := h.Service.Update(r.Context(), auth.UserID(r.Context()), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), auth.UserID(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PropertyHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Service.AddFavorite(r.Context(), auth.UserID(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "added to favorites"})
}

func (h *PropertyHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Service.RemoveFavorite(r.Context(), auth.UserID(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "removed from favorites"})
}
