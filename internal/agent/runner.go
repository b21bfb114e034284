// Runner orchestrating the telemetry and command loops
package agent

import (
	"context"
	"errors"
	"sync"
	"time"

	"robotops-sim/internal/logging"
)

// RunnerConfig holds the loop cadences.
type RunnerConfig struct {
	TelemetryInterval    time.Duration
	CommandInterval      time.Duration
	SessionCheckInterval time.Duration
}

// DefaultRunnerConfig mirrors the reference cadences: telemetry every 5s,
// command poll every 3s, session check every minute.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		TelemetryInterval:    5 * time.Second,
		CommandInterval:      3 * time.Second,
		SessionCheckInterval: time.Minute,
	}
}

// Runner drives one agent: a telemetry loop (passive dynamics + transmit
// gate) and a command loop (mailbox drain + state machine), both sharing the
// Agent through its lock. Network failures skip the tick; a 401 suspends
// network traffic until re-login succeeds.
type Runner struct {
	agent  *Agent
	client *Client
	cfg    RunnerConfig
	gate   TransmitGate

	mu          sync.Mutex
	suspended   bool
	lastAttempt time.Time
}

// NewRunner wires an agent to its collector client.
func NewRunner(a *Agent, c *Client, cfg RunnerConfig) *Runner {
	if cfg.TelemetryInterval <= 0 {
		cfg.TelemetryInterval = 5 * time.Second
	}
	if cfg.CommandInterval <= 0 {
		cfg.CommandInterval = 3 * time.Second
	}
	if cfg.SessionCheckInterval <= 0 {
		cfg.SessionCheckInterval = time.Minute
	}
	return &Runner{agent: a, client: c, cfg: cfg}
}

// Run logs in, primes the agent from the collector, then blocks until the
// context is cancelled. Both loops exit promptly on cancellation.
func (r *Runner) Run(ctx context.Context) error {
	log := logging.FromContext(ctx)

	if err := r.client.Login(ctx); err != nil {
		return err
	}
	log.Info("authenticated", "agent_id", r.client.agentID)

	if obstacles, err := r.client.FetchObstacles(ctx); err != nil {
		log.Warn("obstacle fetch failed, starting without obstacles", "err", err)
	} else {
		r.agent.SetObstacles(obstacles)
		log.Info("obstacles loaded", "count", len(obstacles))
	}

	if last, err := r.client.FetchLastState(ctx); err != nil {
		log.Warn("last state fetch failed", "err", err)
	} else if last != nil {
		r.agent.Resume(*last)
		log.Info("resumed from last known state", "x", last.X, "y", last.Y, "cycles", last.CycleCount)
	}

	if err := r.client.ReportVersions(ctx, ComponentVersions()); err != nil {
		log.Warn("version report failed", "err", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		r.telemetryLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		r.commandLoop(ctx)
	}()
	wg.Wait()
	return nil
}

// Override injects a manual command through the same serialization as the
// command loop.
func (r *Runner) Override(cmd CommandType) bool {
	return r.agent.Apply(cmd, time.Now())
}

func (r *Runner) telemetryLoop(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting telemetry loop", "interval", r.cfg.TelemetryInterval)
	ticker := time.NewTicker(r.cfg.TelemetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			r.agent.Tick(now)
			if !r.agent.PoweredOn() {
				continue
			}
			if !r.sessionUsable(ctx, now) {
				continue
			}
			sample := r.agent.Snapshot(now)
			if !r.gate.ShouldSend(sample) {
				continue
			}
			if err := r.client.SendTelemetry(ctx, sample); err != nil {
				r.handleNetErr(ctx, err, "telemetry")
				continue
			}
			r.gate.MarkSent(sample)
		case <-ctx.Done():
			log.Info("stopping telemetry loop")
			return
		}
	}
}

func (r *Runner) commandLoop(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting command loop", "interval", r.cfg.CommandInterval)
	ticker := time.NewTicker(r.cfg.CommandInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			if !r.sessionUsable(ctx, now) {
				continue
			}
			cmds, err := r.client.FetchCommands(ctx)
			if err != nil {
				r.handleNetErr(ctx, err, "command fetch")
				continue
			}
			for _, cmd := range cmds {
				if cmd == CommandUnknown {
					log.Warn("dropping unknown command")
					continue
				}
				if !r.agent.Apply(cmd, now) {
					log.Debug("command dropped", "command", cmd.String())
				}
			}
		case <-ctx.Done():
			log.Info("stopping command loop")
			return
		}
	}
}

// sessionUsable reports whether network calls may proceed. While suspended
// it retries login at most once per session-check interval.
func (r *Runner) sessionUsable(ctx context.Context, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.suspended {
		return true
	}
	if now.Sub(r.lastAttempt) < r.cfg.SessionCheckInterval {
		return false
	}
	r.lastAttempt = now
	if err := r.client.Login(ctx); err != nil {
		logging.FromContext(ctx).Warn("re-login failed, transmission still suspended", "err", err)
		return false
	}
	logging.FromContext(ctx).Info("session refreshed, resuming transmission")
	r.suspended = false
	return true
}

func (r *Runner) handleNetErr(ctx context.Context, err error, op string) {
	log := logging.FromContext(ctx)
	if errors.Is(err, ErrAuthExpired) {
		r.mu.Lock()
		r.suspended = true
		r.lastAttempt = time.Time{}
		r.mu.Unlock()
		log.Warn("session expired, suspending network traffic", "op", op)
		return
	}
	// Transient or malformed response: skip this tick, keep looping.
	log.Warn("tick skipped", "op", op, "err", err)
}
