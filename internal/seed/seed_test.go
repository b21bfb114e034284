package seed

import (
	"testing"
	"time"

	"robotops-sim/internal/geo"
	"robotops-sim/internal/store"
)

func TestRunSeedsHistory(t *testing.T) {
	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	end := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	health, path, err := Run(db, Options{
		Agents: []string{"robot-1", "robot-2"},
		Days:   1,
		Step:   time.Minute,
		End:    end,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if health == 0 || path == 0 {
		t.Fatalf("generated %d health / %d path rows, want nonzero", health, path)
	}
	// The cooldown gate must thin health rows well below the sample count.
	if health >= path {
		t.Errorf("health rows (%d) not thinner than path rows (%d)", health, path)
	}

	agents, err := db.ListAgents()
	if err != nil {
		t.Fatalf("list agents: %v", err)
	}
	if len(agents) != 2 {
		t.Fatalf("agents = %d, want 2", len(agents))
	}

	last, err := db.LastState("robot-1")
	if err != nil {
		t.Fatalf("last state: %v", err)
	}
	if last == nil {
		t.Fatal("no last state after seeding")
	}
	if last.X < geo.SafeMin || last.X > geo.SafeMax || last.Y < geo.SafeMin || last.Y > geo.SafeMax {
		t.Errorf("seeded position (%v, %v) outside the safe envelope", last.X, last.Y)
	}
}

func TestRunDeterministicPerAgent(t *testing.T) {
	end := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	opts := Options{Agents: []string{"robot-1"}, Days: 1, Step: time.Minute, End: end}

	states := make([]float64, 0, 2)
	for i := 0; i < 2; i++ {
		db, err := store.Open(":memory:")
		if err != nil {
			t.Fatalf("open db: %v", err)
		}
		if _, _, err := Run(db, opts); err != nil {
			t.Fatalf("seed: %v", err)
		}
		last, err := db.LastState("robot-1")
		if err != nil || last == nil {
			t.Fatalf("last state: %v (%v)", last, err)
		}
		states = append(states, last.X)
		db.Close()
	}
	if states[0] != states[1] {
		t.Errorf("seeding not deterministic: %v vs %v", states[0], states[1])
	}
}

func TestRunRejectsEmptyAgentList(t *testing.T) {
	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if _, _, err := Run(db, Options{}); err == nil {
		t.Fatal("expected error for empty agent list")
	}
}
