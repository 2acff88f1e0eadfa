package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/garnizeh/jobboard/internal/catalog"
	"github.com/garnizeh/jobboard/internal/wizard"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/gorilla/mux"
)

// WizardHandler validates posting drafts step by step for a client-side
// form and stores the final submission.
type WizardHandler struct {
	catalog *catalog.Catalog
}

func NewWizardHandler(c *catalog.Catalog) *WizardHandler {
	return &WizardHandler{catalog: c}
}

type stepResult struct {
	Step   int                      `json:"step"`
	Valid  bool                     `json:"valid"`
	Errors []wizard.ValidationError `json:"errors"`
}

func (h *WizardHandler) ValidateStep(w http.ResponseWriter, r *http.Request) {
	step, err := strconv.Atoi(mux.Vars(r)["step"])
	if err != nil {
		http.Error(w, "invalid step", http.StatusBadRequest)
		return
	}
	var draft models.Job
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	errs, err := wizard.ValidateStep(step, draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if errs == nil {
		errs = []wizard.ValidationError{}
	}
	writeJSON(w, stepResult{Step: step, Valid: len(errs) == 0, Errors: errs}, http.StatusOK)
}

func (h *WizardHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var draft models.Job
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	var created *models.Job
	wz := wizard.New(func(ctx context.Context, job models.Job) error {
		j, err := h.catalog.CreateJob(ctx, job)
		created = j
		return err
	}, wizard.WithDraft(draft))

	// an invalid draft is reported without fields; ValidateStep names them
	if err := wz.Submit(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, created, http.StatusCreated)
}
