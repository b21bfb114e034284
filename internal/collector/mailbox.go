package collector

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// QueuedCommand is one pending command in an agent's mailbox.
type QueuedCommand struct {
	ID        string    `json:"id"`
	Command   string    `json:"command"`
	Timestamp time.Time `json:"timestamp"`
}

// Mailbox is the per-agent command queue: enqueue appends, drain returns
// everything and atomically clears. Delivery is at-most-once per poll cycle
// and deliberately non-durable; a restart loses whatever is queued.
type Mailbox struct {
	mu      sync.Mutex
	pending map[string][]QueuedCommand
}

func NewMailbox() *Mailbox {
	return &Mailbox{pending: make(map[string][]QueuedCommand)}
}

// Enqueue appends a command to the agent's queue and returns it with its
// assigned ID.
func (m *Mailbox) Enqueue(agentID, command string) QueuedCommand {
	cmd := QueuedCommand{
		ID:        uuid.New().String(),
		Command:   command,
		Timestamp: time.Now().UTC(),
	}
	m.mu.Lock()
	m.pending[agentID] = append(m.pending[agentID], cmd)
	m.mu.Unlock()
	return cmd
}

// Drain returns the agent's queued commands in FIFO order and clears the
// queue in the same critical section.
func (m *Mailbox) Drain(agentID string) []QueuedCommand {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmds := m.pending[agentID]
	delete(m.pending, agentID)
	return cmds
}

// Pending reports the number of queued commands without draining.
func (m *Mailbox) Pending(agentID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending[agentID])
}
