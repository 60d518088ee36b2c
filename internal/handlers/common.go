package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/collection-tools/registrar/internal/models"
	"github.com/collection-tools/registrar/internal/pipeline"
	"github.com/collection-tools/registrar/internal/progress"
	"github.com/collection-tools/registrar/internal/storage"
)

type Handler struct {
	store  *storage.JobStore
	hub    *progress.Hub
	runner *pipeline.Runner
}

func New(store *storage.JobStore, hub *progress.Hub, runner *pipeline.Runner) *Handler {
	return &Handler{
		store:  store,
		hub:    hub,
		runner: runner,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// startJob runs the pipeline for one job in its own goroutine. The HTTP
// surface never blocks on it; progress flows through the store log and
// the websocket hub.
func (h *Handler) startJob(job models.Job) {
	ctx, cancel := context.WithCancel(context.Background())
	h.store.SetCancel(job.ID, cancel)

	go func() {
		defer cancel()

		h.store.SetStatus(job.ID, models.JobRunning, "")
		h.publish(job.ID, "job", "Job started", 0, 0)

		runner := *h.runner
		runner.Observe = func(stage, message string, done, total int) {
			h.publish(job.ID, stage, message, done, total)
		}

		summary, err := runner.Run(ctx, job.Request)
		switch {
		case errors.Is(err, context.Canceled):
			h.store.SetStatus(job.ID, models.JobCancelled, "")
			h.publish(job.ID, "job", "Job cancelled", 0, 0)
		case err != nil:
			h.store.SetStatus(job.ID, models.JobFailed, err.Error())
			h.publish(job.ID, "job", "Job failed: "+err.Error(), 0, 0)
		default:
			h.store.SetStatus(job.ID, models.JobSucceeded, "")
			h.publish(job.ID, "job", fmt.Sprintf("Job finished: %d ok, %d fallback, %d failed",
				summary.Captioned, summary.Fallbacks, summary.Failed), 0, 0)
		}
	}()
}

func (h *Handler) publish(jobID, stage, message string, done, total int) {
	h.store.AppendLog(jobID, fmt.Sprintf("[%s] %s", stage, message))
	h.hub.Publish(progress.Event{
		JobID:   jobID,
		Stage:   stage,
		Message: message,
		Done:    done,
		Total:   total,
	})
}
