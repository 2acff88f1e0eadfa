package api

import (
	"net/http"

	"github.com/garnizeh/jobboard/pkg/repository"
)

type ProfileHandler struct {
	profileRepo repository.ProfileRepo
}

func NewProfileHandler(pr repository.ProfileRepo) *ProfileHandler {
	return &ProfileHandler{profileRepo: pr}
}

type profileRequest struct {
	DisplayName string `json:"displayName" validate:"omitempty,max=200"`
	PhotoURL    string `json:"photoURL" validate:"omitempty,url"`
	Preferences *struct {
		Notifications bool `json:"notifications"`
		EmailUpdates  bool `json:"emailUpdates"`
	} `json:"preferences"`
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.profileRepo.GetByUserID(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if p == nil {
		http.Error(w, "profile not found", http.StatusNotFound)
		return
	}
	writeJSON(w, p, http.StatusOK)
}

// UpdateProfile changes display fields and notification preferences. Fields
// left out of the body keep their value.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	p, err := h.profileRepo.GetByUserID(ctx, UserID(ctx))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if p == nil {
		http.Error(w, "profile not found", http.StatusNotFound)
		return
	}

	if req.DisplayName != "" {
		p.DisplayName = req.DisplayName
	}
	if req.PhotoURL != "" {
		p.PhotoURL = req.PhotoURL
	}
	if req.Preferences != nil {
		p.Preferences.Notifications = req.Preferences.Notifications
		p.Preferences.EmailUpdates = req.Preferences.EmailUpdates
	}
	if err := h.profileRepo.UpdateProfile(ctx, p); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, p, http.StatusOK)
}
