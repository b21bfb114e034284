package agent

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"robotops-sim/internal/collector"
	"robotops-sim/internal/geo"
	"robotops-sim/internal/store"
)

func newTestCollector(t *testing.T) (*store.DB, *collector.Server, *httptest.Server) {
	t.Helper()
	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	hash, err := collector.HashPassword("secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := db.UpsertUser("robot-1", hash); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	srv := collector.NewServer(db, "", nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return db, srv, ts
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestRunnerEndToEnd(t *testing.T) {
	db, srv, ts := newTestCollector(t)
	if err := db.ReplaceObstacles([]geo.Obstacle{
		{Name: "rack", Shape: geo.ShapeRectangle, X: 10, Y: 10, Width: 5, Height: 5},
	}); err != nil {
		t.Fatalf("seed obstacles: %v", err)
	}

	client, err := NewClient(ts.URL, "robot-1", "robot-1", "secret")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	a := New("robot-1")
	runner := NewRunner(a, client, RunnerConfig{
		TelemetryInterval:    20 * time.Millisecond,
		CommandInterval:      20 * time.Millisecond,
		SessionCheckInterval: 50 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	// Telemetry reaches the collector and the startup version report lands.
	if !waitFor(t, 2*time.Second, func() bool {
		last, err := db.LastHealth("robot-1")
		return err == nil && last != nil
	}) {
		t.Fatal("no telemetry persisted")
	}
	versions, err := db.Versions("robot-1")
	if err != nil {
		t.Fatalf("versions: %v", err)
	}
	if versions[ComponentPCU] == "" {
		t.Errorf("startup version report missing, got %v", versions)
	}

	// A queued command is drained and executed.
	srv.Mailbox().Enqueue("robot-1", "move_up")
	if !waitFor(t, 2*time.Second, func() bool {
		return a.StateCopy().Y > geo.CenterY
	}) {
		t.Fatalf("move_up not executed, state %+v", a.StateCopy())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runner exited with error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop on cancellation")
	}
}

func TestRunnerResumesFromLastState(t *testing.T) {
	db, _, ts := newTestCollector(t)

	// Prior history: the agent was at (30, 70) with two power cycles.
	seedSample := func() {
		s := New("robot-1").Snapshot(time.Now().UTC())
		s.X, s.Y, s.CycleCount = 30, 70, 2
		if err := db.EnsureAgent("robot-1"); err != nil {
			t.Fatalf("ensure agent: %v", err)
		}
		if err := db.InsertHealth(s); err != nil {
			t.Fatalf("insert health: %v", err)
		}
		if err := db.InsertPath(s); err != nil {
			t.Fatalf("insert path: %v", err)
		}
	}
	seedSample()

	client, err := NewClient(ts.URL, "robot-1", "robot-1", "secret")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	a := New("robot-1")
	runner := NewRunner(a, client, RunnerConfig{
		TelemetryInterval:    20 * time.Millisecond,
		CommandInterval:      20 * time.Millisecond,
		SessionCheckInterval: 50 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	if !waitFor(t, 2*time.Second, func() bool {
		st := a.StateCopy()
		return st.X == 30 && st.Y == 70 && st.CycleCount == 2
	}) {
		t.Fatalf("agent did not resume, state %+v", a.StateCopy())
	}

	cancel()
	<-done
}

func TestRunnerLoginFailureIsFatal(t *testing.T) {
	_, _, ts := newTestCollector(t)

	client, err := NewClient(ts.URL, "robot-1", "robot-1", "wrong")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	runner := NewRunner(New("robot-1"), client, DefaultRunnerConfig())
	if err := runner.Run(context.Background()); err == nil {
		t.Fatal("expected startup login failure")
	}
}
