package progress

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
	StatusCancelled Status = "cancelled"
)

// Snapshot is the pollable state of a long-running job.
type Snapshot struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	UserID     string    `json:"user_id"`
	Phase      string    `json:"phase"`
	Percent    int       `json:"percent"`
	Done       int       `json:"done"`
	Total      int       `json:"total"`
	Status     Status    `json:"status"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

type job struct {
	snap   Snapshot
	cancel context.CancelFunc
}

// Tracker keeps in-flight bulk jobs so the frontend can poll percentages and
// request cancellation. Finished jobs stay around until swept.
type Tracker struct {
	mu   sync.Mutex
	jobs map[string]*job
	now  func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		jobs: make(map[string]*job),
		now:  time.Now,
	}
}

// Start registers a job and returns its id together with a context that is
// cancelled when Cancel is called for that id.
func (t *Tracker) Start(kind, userID string) (string, context.Context) {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()
	t.mu.Lock()
	t.jobs[id] = &job{
		snap: Snapshot{
			ID:        id,
			Kind:      kind,
			UserID:    userID,
			Status:    StatusRunning,
			StartedAt: t.now(),
		},
		cancel: cancel,
	}
	t.mu.Unlock()
	return id, ctx
}

func (t *Tracker) Update(id, phase string, percent, done, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	j, ok := t.jobs[id]
	if !ok || j.snap.Status != StatusRunning {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	j.snap.Phase = phase
	j.snap.Percent = percent
	j.snap.Done = done
	j.snap.Total = total
}

func (t *Tracker) Succeed(id string, done, total int) {
	t.finish(id, StatusSuccess, "", done, total)
}

func (t *Tracker) Fail(id, errMsg string, done, total int) {
	t.finish(id, StatusError, errMsg, done, total)
}

func (t *Tracker) MarkCancelled(id string, done, total int) {
	t.finish(id, StatusCancelled, "", done, total)
}

func (t *Tracker) finish(id string, status Status, errMsg string, done, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	j, ok := t.jobs[id]
	if !ok {
		return
	}
	j.snap.Status = status
	j.snap.Error = errMsg
	j.snap.Done = done
	j.snap.Total = total
	if status == StatusSuccess {
		j.snap.Percent = 100
	}
	j.snap.FinishedAt = t.now()
	j.cancel()
}

// Cancel requests cooperative cancellation. Work already applied is not
// rolled back; the worker stops at the next unit boundary.
func (t *Tracker) Cancel(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	j, ok := t.jobs[id]
	if !ok || j.snap.Status != StatusRunning {
		return false
	}
	j.cancel()
	return true
}

func (t *Tracker) Get(id string) (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	j, ok := t.jobs[id]
	if !ok {
		return Snapshot{}, false
	}
	return j.snap, true
}

// Sweep removes finished jobs older than maxAge and returns how many it
// dropped.
func (t *Tracker) Sweep(maxAge time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	cutoff := t.now().Add(-maxAge)
	for id, j := range t.jobs {
		if j.snap.Status == StatusRunning {
			continue
		}
		if j.snap.FinishedAt.Before(cutoff) {
			delete(t.jobs, id)
			n++
		}
	}
	return n
}
