package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/garnizeh/jobboard/internal/tracker"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/gorilla/mux"
)

type InterestsHandler struct {
	tracker *tracker.Tracker
}

func NewInterestsHandler(t *tracker.Tracker) *InterestsHandler {
	return &InterestsHandler{tracker: t}
}

type addInterestRequest struct {
	JobID    string                `json:"jobId" validate:"required"`
	Status   models.InterestStatus `json:"status"`
	Comment  string                `json:"comment"`
	Deadline string                `json:"deadline"`
}

type statusRequest struct {
	Status  models.InterestStatus `json:"status" validate:"required"`
	Comment string                `json:"comment"`
}

type noteRequest struct {
	Text   string                `json:"text" validate:"required"`
	Status models.InterestStatus `json:"status"`
}

type priorityRequest struct {
	Priority models.Priority `json:"priority" validate:"required"`
}

type tagsRequest struct {
	Tags []string `json:"tags"`
}

func (h *InterestsHandler) AddInterest(w http.ResponseWriter, r *http.Request) {
	var req addInterestRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	id, err := h.tracker.AddJobInterest(ctx, UserID(ctx), req.JobID, tracker.AddInterest{
		Status:   req.Status,
		Comment:  req.Comment,
		Deadline: req.Deadline,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"id": id}, http.StatusCreated)
}

func (h *InterestsHandler) ListInterests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.tracker.GetUserInterests(ctx, UserID(ctx))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, list, http.StatusOK)
}

func (h *InterestsHandler) GetInterest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	in, err := h.tracker.GetInterestByJob(ctx, UserID(ctx), mux.Vars(r)["jobId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	if in == nil {
		writeError(w, r, tracker.ErrInterestNotFound)
		return
	}
	writeJSON(w, in, http.StatusOK)
}

func (h *InterestsHandler) Bookmarked(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ok, err := h.tracker.IsJobBookmarked(ctx, UserID(ctx), mux.Vars(r)["jobId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]bool{"bookmarked": ok}, http.StatusOK)
}

func (h *InterestsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	if err := h.tracker.UpdateJobInterestStatus(ctx, UserID(ctx), mux.Vars(r)["jobId"], req.Status, req.Comment); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InterestsHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	if err := h.tracker.AddCommentToInterest(ctx, UserID(ctx), mux.Vars(r)["jobId"], req.Text, req.Status); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InterestsHandler) UpdatePriority(w http.ResponseWriter, r *http.Request) {
	var req priorityRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	if err := h.tracker.UpdateInterestPriority(ctx, UserID(ctx), mux.Vars(r)["jobId"], req.Priority); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InterestsHandler) UpdateTags(w http.ResponseWriter, r *http.Request) {
	var req tagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	if err := h.tracker.UpdateInterestTags(ctx, UserID(ctx), mux.Vars(r)["jobId"], req.Tags); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InterestsHandler) DeleteInterest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.tracker.DeleteJobInterest(ctx, UserID(ctx), mux.Vars(r)["jobId"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InterestsHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	alerts, err := h.tracker.GetJobsWithApproachingDeadlines(ctx, UserID(ctx))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, alerts, http.StatusOK)
}

func (h *InterestsHandler) Coverage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.tracker.CalculateCoverageRate(ctx, UserID(ctx))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, stats, http.StatusOK)
}

func (h *InterestsHandler) WithJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.tracker.GetInterestsWithJobs(ctx, UserID(ctx))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, list, http.StatusOK)
}

// Stream pushes the user's full interest list as a server-sent event on
// every change until the client goes away. Snapshots that arrive faster than
// the client reads are coalesced to the newest one.
func (h *InterestsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	updates := make(chan []models.JobInterest, 1)
	unsubscribe, err := h.tracker.SubscribeToUserInterests(ctx, UserID(ctx), func(list []models.JobInterest) {
		for {
			select {
			case updates <- list:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			return
		case list := <-updates:
			b, err := json.Marshal(list)
			if err != nil {
				logger.Error("encode interests event", "err", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: interests\ndata: %s\n\n", b); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
