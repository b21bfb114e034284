// Collector-side cooldown/keepalive persistence gate
package collector

import (
	"math"
	"sync"
	"time"

	"robotops-sim/internal/telemetry"
)

// Gate thresholds. Changed health samples are rate-limited to one per
// cooldown window; an unchanged agent still gets one row per keepalive
// window. The temperature epsilon follows the live ingest path of the
// reference system (1 degree), not its seeding path (2 degrees).
const (
	Cooldown   = 60 * time.Second
	Keepalive  = 3600 * time.Second
	BatteryEps = 0.1
	TempEps    = 1.0
)

// PersistenceGate tracks, per agent, the last persisted health sample and
// decides which incoming samples earn a new health row. Ingest calls from
// many agents run concurrently, so all access is mutex-guarded.
type PersistenceGate struct {
	mu   sync.Mutex
	last map[string]telemetry.Sample
}

func NewPersistenceGate() *PersistenceGate {
	return &PersistenceGate{last: make(map[string]telemetry.Sample)}
}

// Has reports whether the gate holds a baseline for the agent.
func (g *PersistenceGate) Has(agentID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.last[agentID]
	return ok
}

// Prime installs a baseline without persisting, used to warm the gate from
// the store after a collector restart.
func (g *PersistenceGate) Prime(s telemetry.Sample) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last[s.AgentID] = s
}

// ShouldPersist decides whether the sample earns a health row and, when it
// does, records it as the new baseline. The first sample for an agent always
// persists.
func (g *PersistenceGate) ShouldPersist(s telemetry.Sample) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	last, ok := g.last[s.AgentID]
	if !ok {
		g.last[s.AgentID] = s
		return true
	}

	elapsed := s.Timestamp.Sub(last.Timestamp)
	changed := math.Abs(s.BatteryVoltage-last.BatteryVoltage) > BatteryEps ||
		math.Abs(s.Temperature-last.Temperature) > TempEps ||
		s.Status != last.Status

	if (elapsed > Cooldown && changed) || elapsed > Keepalive {
		g.last[s.AgentID] = s
		return true
	}
	return false
}
