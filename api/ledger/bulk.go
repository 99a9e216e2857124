package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"GestAsd/api"
	"GestAsd/api/audit"
	"GestAsd/api/constants"
	"GestAsd/internal/bulkmeta"
	"GestAsd/internal/logger"
	"GestAsd/internal/progress"
	"GestAsd/internal/stream"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
)

type bulkSelectedRequest struct {
	UserID string   `json:"user_id"`
	IDs    []string `json:"ids"`
	metaRequest
}

type bulkAllRequest struct {
	UserID string `json:"user_id"`
	listRequest
	metaRequest
}

// runBulk executes the mutator in the background and mirrors its state into
// the tracker. Applied rows stay applied whatever happens.
func runBulk(tracker *progress.Tracker, hub *stream.Hub, jobID string, ctx context.Context, total int, run func(ctx context.Context) (int, error)) {
	go func() {
		done, err := run(ctx)
		switch {
		case err == nil:
			tracker.Succeed(jobID, done, max(total, done))
		case errors.Is(err, context.Canceled):
			tracker.MarkCancelled(jobID, done, max(total, done))
		default:
			logger.Errorf("bulk job %s failed after %d rows: %v", jobID, done, err)
			tracker.Fail(jobID, err.Error(), done, max(total, done))
		}
		if snap, ok := tracker.Get(jobID); ok {
			hub.Publish(jobID, snap)
		}
	}()
}

func publishProgress(tracker *progress.Tracker, hub *stream.Hub, jobID string) {
	if snap, ok := tracker.Get(jobID); ok {
		hub.Publish(jobID, snap)
	}
}

// BulkUpdateSelected handles POST /movimenti/bulk/selected: applies the
// patch to the listed ids and returns a job id to poll.
func BulkUpdateSelected(store *Store, pool *pgxpool.Pool, tracker *progress.Tracker, hub *stream.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		var req bulkSelectedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		if len(req.IDs) == 0 {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrNoIDsSelected)
			return
		}
		patch := req.patch()
		if patch.IsZero() {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrEmptyPatch)
			return
		}

		jobID, jobCtx := tracker.Start("bulk_meta_selected", userID)
		mutator := &bulkmeta.Mutator{
			Store: store,
			OnProgress: func(percent, done, total int, phase string) {
				tracker.Update(jobID, phase, percent, done, total)
				publishProgress(tracker, hub, jobID)
			},
		}
		audit.FromRequest(r, pool, userID, "entry_bulk_meta_selected", "", map[string]interface{}{
			"job_id": jobID, "count": len(req.IDs),
		})
		ids := req.IDs
		runBulk(tracker, hub, jobID, jobCtx, len(ids), func(ctx context.Context) (int, error) {
			return mutator.ApplySelected(ctx, userID, ids, patch)
		})
		api.RespondWithPayload(w, true, "", map[string]string{"job_id": jobID})
	}
}

// BulkUpdateAll handles POST /movimenti/bulk/all: applies the patch to every
// entry matching the filters. Collection and apply run server side; the
// caller polls the returned job id.
func BulkUpdateAll(store *Store, pool *pgxpool.Pool, tracker *progress.Tracker, hub *stream.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		var req bulkAllRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		patch := req.patch()
		if patch.IsZero() {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrEmptyPatch)
			return
		}

		jobID, jobCtx := tracker.Start("bulk_meta_all", userID)
		mutator := &bulkmeta.Mutator{
			Store: store,
			OnProgress: func(percent, done, total int, phase string) {
				tracker.Update(jobID, phase, percent, done, total)
				publishProgress(tracker, hub, jobID)
			},
		}
		filter := req.filter()
		audit.FromRequest(r, pool, userID, "entry_bulk_meta_all", "", map[string]interface{}{
			"job_id": jobID, "filter": filter,
		})
		runBulk(tracker, hub, jobID, jobCtx, 0, func(ctx context.Context) (int, error) {
			return mutator.ApplyAll(ctx, userID, filter, patch)
		})
		api.RespondWithPayload(w, true, "", map[string]string{"job_id": jobID})
	}
}

// BulkJobStatus handles POST /movimenti/bulk/status/{id}
func BulkJobStatus(tracker *progress.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		snap, ok := tracker.Get(mux.Vars(r)["id"])
		if !ok || snap.UserID != userID {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrJobNotFound)
			return
		}
		api.RespondWithPayload(w, true, "", snap)
	}
}

// BulkJobStream handles GET /movimenti/bulk/stream/{id}: live job updates
// over SSE, starting from the current snapshot.
func BulkJobStream(tracker *progress.Tracker, hub *stream.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		id := mux.Vars(r)["id"]
		snap, ok := tracker.Get(id)
		if !ok || snap.UserID != userID {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrJobNotFound)
			return
		}
		hub.ServeSSE(w, r, id, snap)
	}
}

// BulkJobCancel handles POST /movimenti/bulk/cancel/{id}: cooperative
// cancel, the worker stops at the next row boundary.
func BulkJobCancel(tracker *progress.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		id := mux.Vars(r)["id"]
		snap, ok := tracker.Get(id)
		if !ok || snap.UserID != userID {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrJobNotFound)
			return
		}
		if !tracker.Cancel(id) {
			api.RespondWithError(w, http.StatusConflict, constants.ErrJobNotCancelable)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}
