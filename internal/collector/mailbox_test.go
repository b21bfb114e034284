package collector

import (
	"fmt"
	"sync"
	"testing"
)

func TestMailboxFIFO(t *testing.T) {
	m := NewMailbox()
	m.Enqueue("robot-1", "move_up")
	m.Enqueue("robot-1", "scan_area")
	m.Enqueue("robot-1", "halt")

	cmds := m.Drain("robot-1")
	if len(cmds) != 3 {
		t.Fatalf("drained %d commands, want 3", len(cmds))
	}
	order := []string{"move_up", "scan_area", "halt"}
	for i, want := range order {
		if cmds[i].Command != want {
			t.Errorf("cmds[%d] = %q, want %q", i, cmds[i].Command, want)
		}
		if cmds[i].ID == "" {
			t.Errorf("cmds[%d] has empty ID", i)
		}
	}
}

func TestMailboxDrainClears(t *testing.T) {
	m := NewMailbox()
	m.Enqueue("robot-1", "move_up")
	m.Drain("robot-1")

	if got := m.Drain("robot-1"); len(got) != 0 {
		t.Fatalf("second drain returned %d commands, want 0", len(got))
	}
	if m.Pending("robot-1") != 0 {
		t.Fatal("pending count nonzero after drain")
	}
}

func TestMailboxPerAgentIsolation(t *testing.T) {
	m := NewMailbox()
	m.Enqueue("robot-1", "move_up")
	m.Enqueue("robot-2", "halt")

	if got := m.Drain("robot-1"); len(got) != 1 || got[0].Command != "move_up" {
		t.Fatalf("robot-1 drain = %v", got)
	}
	if m.Pending("robot-2") != 1 {
		t.Fatal("robot-2 queue disturbed by robot-1 drain")
	}
}

func TestMailboxConcurrentDrainNoDupes(t *testing.T) {
	m := NewMailbox()
	const n = 200
	for i := 0; i < n; i++ {
		m.Enqueue("robot-1", fmt.Sprintf("cmd-%d", i))
	}

	var mu sync.Mutex
	seen := make(map[string]int)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, c := range m.Drain("robot-1") {
				mu.Lock()
				seen[c.Command]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Fatalf("saw %d distinct commands, want %d", len(seen), n)
	}
	for cmd, count := range seen {
		if count != 1 {
			t.Errorf("%s delivered %d times", cmd, count)
		}
	}
}
