package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Rrens/meeting-buddy/internal/api/middleware"
	"github.com/Rrens/meeting-buddy/internal/api/response"
	"github.com/Rrens/meeting-buddy/internal/domain"
	"github.com/Rrens/meeting-buddy/internal/store"
)

// StoreSource returns the domain store of a user
type StoreSource interface {
	For(ctx context.Context, user domain.User) (*store.Store, error)
}

// session resolves the caller and their store, writing the error response
// when either is unavailable
func session(w http.ResponseWriter, r *http.Request, stores StoreSource) (domain.User, *store.Store, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return domain.User{}, nil, false
	}

	st, err := stores.For(r.Context(), user)
	if err != nil {
		response.FromError(w, err)
		return domain.User{}, nil, false
	}
	return user, st, true
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		response.BadRequest(w, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.BadRequest(w, "invalid request body")
		return false
	}
	return true
}

// visibleHub returns the hub if the user belongs to it
func visibleHub(w http.ResponseWriter, st *store.Store, user domain.User, hubID uuid.UUID) (domain.Hub, bool) {
	hub, ok := st.Hub(hubID)
	if !ok {
		response.NotFound(w, "hub not found")
		return domain.Hub{}, false
	}
	if _, ok := hub.Member(user.ID); !ok {
		response.Forbidden(w, "not a member of this hub")
		return domain.Hub{}, false
	}
	return hub, true
}
