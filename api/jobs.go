package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/garnizeh/jobboard/internal/catalog"
	"github.com/garnizeh/jobboard/internal/wizard"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/gorilla/mux"
)

type JobsHandler struct {
	catalog *catalog.Catalog
	now     func() time.Time
}

func NewJobsHandler(c *catalog.Catalog) *JobsHandler {
	return &JobsHandler{catalog: c, now: time.Now}
}

func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	jobs, err := h.catalog.ListJobs(r.Context(), catalog.JobFilter{
		Role:     q.Get("role"),
		Category: q.Get("category"),
		Status:   models.JobStatus(q.Get("status")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"total": len(jobs), "items": jobs}, http.StatusOK)
}

func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.catalog.GetJob(r.Context(), mux.Vars(r)["jobId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, job, http.StatusOK)
}

// CreateJob stores a finished posting. It must pass the same checks as a
// wizard submission.
func (h *JobsHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var job models.Job
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	job = wizard.ApplyDefaults(job, h.now())
	if errs := wizard.ValidateAll(job); len(errs) > 0 {
		writeJSON(w, errorResponse{Error: wizard.ErrDraftInvalid.Error(), Fields: errs}, http.StatusBadRequest)
		return
	}

	created, err := h.catalog.CreateJob(r.Context(), job)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, created, http.StatusCreated)
}

func (h *JobsHandler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	jobID := mux.Vars(r)["jobId"]
	if err := h.catalog.UpdateJob(r.Context(), jobID, fields); err != nil {
		writeError(w, r, err)
		return
	}
	job, err := h.catalog.GetJob(r.Context(), jobID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, job, http.StatusOK)
}

func (h *JobsHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteJob(r.Context(), mux.Vars(r)["jobId"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type categoryRequest struct {
	Label string `json:"label" validate:"required"`
}

func (h *JobsHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, cats, http.StatusOK)
}

func (h *JobsHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	cat, err := h.catalog.AddCategory(r.Context(), req.Label)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, cat, http.StatusOK)
}
