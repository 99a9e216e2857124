package progress

import (
	"testing"
	"time"
)

func TestTrackerLifecycle(t *testing.T) {
	tr := NewTracker()
	id, ctx := tr.Start("bulk_meta", "u1")

	snap, ok := tr.Get(id)
	if !ok || snap.Status != StatusRunning {
		t.Fatalf("got %+v, want running job", snap)
	}

	tr.Update(id, "apply", 50, 250, 500)
	snap, _ = tr.Get(id)
	if snap.Percent != 50 || snap.Done != 250 || snap.Phase != "apply" {
		t.Fatalf("update not applied: %+v", snap)
	}

	tr.Succeed(id, 500, 500)
	snap, _ = tr.Get(id)
	if snap.Status != StatusSuccess || snap.Percent != 100 {
		t.Fatalf("got %+v, want success at 100%%", snap)
	}
	select {
	case <-ctx.Done():
	default:
		t.Fatal("context should be cancelled once the job finished")
	}
}

func TestTrackerCancel(t *testing.T) {
	tr := NewTracker()
	id, ctx := tr.Start("bulk_meta_all", "u1")

	if !tr.Cancel(id) {
		t.Fatal("cancel of a running job must succeed")
	}
	select {
	case <-ctx.Done():
	default:
		t.Fatal("cancel must fire the job context")
	}

	// The worker reports back after observing cancellation.
	tr.MarkCancelled(id, 120, 500)
	snap, _ := tr.Get(id)
	if snap.Status != StatusCancelled || snap.Done != 120 {
		t.Fatalf("got %+v, want cancelled at 120", snap)
	}
	if tr.Cancel(id) {
		t.Fatal("cancel of a finished job must report false")
	}
}

func TestTrackerUpdateClampsPercent(t *testing.T) {
	tr := NewTracker()
	id, _ := tr.Start("import", "u1")
	tr.Update(id, "collect", 130, 0, 0)
	snap, _ := tr.Get(id)
	if snap.Percent != 100 {
		t.Fatalf("percent %d, want clamped to 100", snap.Percent)
	}
}

func TestTrackerSweep(t *testing.T) {
	tr := NewTracker()
	base := time.Now()
	tr.now = func() time.Time { return base }

	doneID, _ := tr.Start("import", "u1")
	tr.Succeed(doneID, 1, 1)
	runningID, _ := tr.Start("import", "u1")

	tr.now = func() time.Time { return base.Add(time.Hour) }
	if n := tr.Sweep(30 * time.Minute); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
	if _, ok := tr.Get(doneID); ok {
		t.Fatal("finished job should be swept")
	}
	if _, ok := tr.Get(runningID); !ok {
		t.Fatal("running job must never be swept")
	}
}
