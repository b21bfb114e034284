package agent

import "robotops-sim/internal/telemetry"

// TransmitGate is the agent-side deduplication gate: exact-match comparison
// against the last transmitted sample. A tick whose rounded sample equals
// the previous transmission is a no-op, no network call happens at all.
type TransmitGate struct {
	last *telemetry.Sample
}

// ShouldSend reports whether the sample differs from the last transmission.
func (g *TransmitGate) ShouldSend(s telemetry.Sample) bool {
	return g.last == nil || !g.last.Equal(s)
}

// MarkSent records a successfully transmitted sample. Failed transmissions
// are not recorded so the next tick retries the comparison against the old
// baseline.
func (g *TransmitGate) MarkSent(s telemetry.Sample) {
	g.last = &s
}
