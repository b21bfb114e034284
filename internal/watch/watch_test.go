package watch

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"robotops-sim/internal/collector"
	"robotops-sim/internal/store"
	"robotops-sim/internal/telemetry"
)

func newTestCollector(t *testing.T) (*store.DB, *httptest.Server) {
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
	if err := db.UpsertUser("operator", hash); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	srv := collector.NewServer(db, "", nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return db, ts
}

func seedAgent(t *testing.T, db *store.DB, id, status string) {
	t.Helper()
	if err := db.EnsureAgent(id); err != nil {
		t.Fatalf("ensure agent: %v", err)
	}
	s := telemetry.Sample{
		AgentID: id, Timestamp: time.Now().UTC(),
		BatteryVoltage: 24.5, Temperature: 45, Status: status,
		X: 50, Y: 50,
	}
	if err := db.InsertHealth(s); err != nil {
		t.Fatalf("insert health: %v", err)
	}
	if err := db.InsertPath(s); err != nil {
		t.Fatalf("insert path: %v", err)
	}
}

func TestClientFleet(t *testing.T) {
	db, ts := newTestCollector(t)
	seedAgent(t, db, "robot-1", "STANDBY")
	seedAgent(t, db, "robot-2", "MOVING")

	c, err := NewClient(ts.URL, "operator", "secret")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx := context.Background()
	if err := c.Login(ctx); err != nil {
		t.Fatalf("login: %v", err)
	}

	rows, err := c.Fleet(ctx)
	if err != nil {
		t.Fatalf("fleet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("fleet rows = %d, want 2", len(rows))
	}
	for _, r := range rows {
		if r.Last == nil {
			t.Errorf("%s: missing last state", r.Info.ID)
		}
	}
}

func TestClientFleetStaleAgent(t *testing.T) {
	db, ts := newTestCollector(t)
	// Known agent with no telemetry at all.
	if err := db.EnsureAgent("robot-ghost"); err != nil {
		t.Fatalf("ensure agent: %v", err)
	}

	c, err := NewClient(ts.URL, "operator", "secret")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx := context.Background()
	if err := c.Login(ctx); err != nil {
		t.Fatalf("login: %v", err)
	}

	rows, err := c.Fleet(ctx)
	if err != nil {
		t.Fatalf("fleet: %v", err)
	}
	if len(rows) != 1 || rows[0].Last != nil {
		t.Fatalf("rows = %+v, want one agent without state", rows)
	}
}

func TestClientLoginRejected(t *testing.T) {
	_, ts := newTestCollector(t)
	c, err := NewClient(ts.URL, "operator", "wrong")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := c.Login(context.Background()); err == nil {
		t.Fatal("expected login rejection")
	}
}

func TestModelStatusTransitionEvents(t *testing.T) {
	m := newModel(nil, time.Second)
	m.vp.Width = 80
	m.vp.Height = 10

	at := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	last := &telemetry.LastState{AgentID: "robot-1", Status: "STANDBY", Timestamp: at}
	rows := []AgentRow{{Info: store.AgentInfo{ID: "robot-1", Status: "STANDBY"}, Last: last}}

	m.apply(rows, at)
	if len(m.events) != 0 {
		t.Fatalf("first observation produced events: %v", m.events)
	}

	moved := *last
	moved.Status = "MOVING"
	rows[0].Last = &moved
	m.apply(rows, at.Add(2*time.Second))
	if len(m.events) != 1 || !strings.Contains(m.events[0], "STANDBY -> MOVING") {
		t.Fatalf("events = %v, want one STANDBY -> MOVING transition", m.events)
	}
}

func TestModelQuitKey(t *testing.T) {
	m := newModel(nil, time.Second)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Fatalf("cmd() = %v, want tea.Quit", msg)
	}
}

func TestPrintSnapshot(t *testing.T) {
	var buf bytes.Buffer
	at := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	printSnapshot(&buf, []AgentRow{
		{
			Info: store.AgentInfo{ID: "robot-1", Status: "STANDBY"},
			Last: &telemetry.LastState{AgentID: "robot-1", Status: "STANDBY", BatteryVoltage: 24.5, Temperature: 45, X: 50, Y: 50, Timestamp: at},
		},
		{Info: store.AgentInfo{ID: "robot-2", Status: "OFFLINE"}},
	})
	out := buf.String()
	if !strings.Contains(out, "robot-1") || !strings.Contains(out, "never") {
		t.Fatalf("snapshot output missing rows:\n%s", out)
	}
}
