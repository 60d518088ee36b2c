package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/collection-tools/registrar/internal/models"
)

func (h *Handler) HandleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, h.store.GetAll())
	case "POST":
		var req models.JobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		if len(req.Inputs) == 0 {
			h.writeError(w, "No input files given", http.StatusBadRequest)
			return
		}

		job, err := h.store.Create(req)
		if err != nil {
			h.writeError(w, err.Error(), http.StatusConflict)
			return
		}
		h.startJob(job)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(job); err != nil {
			h.writeError(w, "Internal server error", http.StatusInternalServerError)
		}
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleJobDetail(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	jobID, action, _ := strings.Cut(rest, "/")

	job, ok := h.store.Get(jobID)
	if !ok {
		h.writeError(w, "Job not found", http.StatusNotFound)
		return
	}

	switch {
	case action == "" && r.Method == "GET":
		h.writeJSON(w, job)
	case action == "cancel" && r.Method == "POST":
		if job.Finished() {
			h.writeError(w, "Job already finished", http.StatusConflict)
			return
		}
		if !h.store.Cancel(job.ID) {
			h.writeError(w, "Job is not cancellable", http.StatusConflict)
			return
		}
		h.writeJSON(w, map[string]string{"id": job.ID, "status": "cancelling"})
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
