// Motion and lifecycle state machine
package agent

import (
	"math"
	"sync"
	"time"

	"robotops-sim/internal/geo"
	"robotops-sim/internal/telemetry"
)

// Agent owns the mutable state of one simulated robot. All mutation goes
// through its lock: the telemetry loop, the command loop, and any manual
// override serialize here.
type Agent struct {
	mu        sync.Mutex
	id        string
	st        State
	obstacles []geo.Obstacle
}

// New creates an agent at the workspace center in STANDBY with nominal
// battery and a warm controller.
func New(id string) *Agent {
	return &Agent{
		id: id,
		st: State{
			X:              geo.CenterX,
			Y:              geo.CenterY,
			BatteryVoltage: BatteryNominal,
			Temperature:    45.0,
			Op:             StateStandby,
			PoweredOn:      true,
		},
	}
}

// SetObstacles installs the obstacle snapshot used for movement validation.
func (a *Agent) SetObstacles(obstacles []geo.Obstacle) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.obstacles = obstacles
}

// Resume adopts the collector's last known state on startup. Cycle count and
// position carry over; the operating mode restarts as STANDBY.
func (a *Agent) Resume(last telemetry.LastState) {
	a.mu.Lock()
	defer a.mu.Unlock()
	x, y := geo.NearestSafePosition(last.X, last.Y, a.obstacles)
	a.st.X = x
	a.st.Y = y
	a.st.Orientation = math.Mod(math.Mod(last.Orientation, 360)+360, 360)
	if last.BatteryVoltage > 0 {
		a.st.BatteryVoltage = clamp(last.BatteryVoltage, BatteryMin, BatteryMax)
	}
	if last.Temperature > 0 {
		a.st.Temperature = clamp(last.Temperature, TempMin, TempMax)
	}
	a.st.CycleCount = last.CycleCount
}

// Apply executes one command against the current state. It returns true when
// the command changed state; invalid movement destinations and unknown
// commands are dropped silently per the collector contract.
func (a *Agent) Apply(cmd CommandType, now time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch cmd {
	case CommandPowerOff:
		// Clears load and cancels a pending boot; position, battery, and
		// temperature are preserved.
		a.st.Op = StateOffline
		a.st.PoweredOn = false
		a.st.MotorLoad = 0
		a.st.Current = CommandNone
		a.st.bootDeadline = time.Time{}
		return true

	case CommandPowerOn:
		if a.st.Op != StateOffline {
			return false
		}
		a.st.Op = StateBooting
		a.st.PoweredOn = true
		a.st.CycleCount++
		a.st.MotorLoad = LoadBooting
		a.st.bootDeadline = now.Add(BootDuration)
		return true
	}

	// OFFLINE is terminal for everything but power-on.
	if !a.st.PoweredOn {
		return false
	}

	switch {
	case cmd.IsMovement():
		return a.applyMove(cmd)

	case cmd == CommandScanArea:
		a.st.Op = StateScanning
		a.st.MotorLoad = LoadScanning
		a.st.Current = CommandScanArea
		return true

	case cmd == CommandStop || cmd == CommandHalt:
		switch a.st.Op {
		case StateMoving, StateScanning, StateCharging:
			a.st.Op = StateStandby
			a.st.MotorLoad = 0
			a.st.Current = CommandNone
			return true
		}
		return false

	case cmd == CommandCharging:
		return a.override(StateCharging, LoadCharging)
	case cmd == CommandFault:
		return a.override(StateFault, 0)
	case cmd == CommandStandby:
		return a.override(StateStandby, 0)
	case cmd == CommandMoving:
		return a.override(StateMoving, LoadMoving)
	case cmd == CommandScanning:
		return a.override(StateScanning, LoadScanning)
	}

	return false
}

// applyMove computes the candidate destination, validates it, and on success
// performs the one-shot displacement: MOVING for the duration of the update,
// then straight back to STANDBY with the command cleared. A colliding
// destination leaves everything untouched.
func (a *Agent) applyMove(cmd CommandType) bool {
	x, y := a.st.X, a.st.Y
	switch cmd {
	case CommandMoveUp:
		y += MoveSpeed
	case CommandMoveDown:
		y -= MoveSpeed
	case CommandMoveLeft:
		x -= MoveSpeed
	case CommandMoveRight:
		x += MoveSpeed
	case CommandMoveForward:
		rad := a.st.Orientation * math.Pi / 180
		x += MoveSpeed * math.Cos(rad)
		y += MoveSpeed * math.Sin(rad)
	}
	if !geo.IsValidPosition(x, y, a.obstacles) {
		return false
	}

	// One-shot: the MOVING phase begins and ends inside this update, so the
	// observable state after a successful move is STANDBY at the new
	// position with the command already cleared.
	a.st.X = x
	a.st.Y = y
	a.st.Op = StateStandby
	a.st.MotorLoad = 0
	a.st.Current = CommandNone
	return true
}

// override forces an operating mode without destination validation. These
// are operator/test controls, not autonomous transitions.
func (a *Agent) override(op OpState, load int) bool {
	a.st.Op = op
	a.st.MotorLoad = load
	a.st.Current = CommandNone
	return true
}

// Tick applies one step of passive dynamics, finishes a pending boot, and
// enforces the physical clamps. The battery safety clamp runs last and takes
// precedence over any command-issued state.
func (a *Agent) Tick(now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.st.PoweredOn {
		return
	}

	switch a.st.Op {
	case StateBooting:
		if !a.st.bootDeadline.IsZero() && !now.Before(a.st.bootDeadline) {
			a.st.Op = StateStandby
			a.st.MotorLoad = 0
			a.st.bootDeadline = time.Time{}
		}
	case StateMoving:
		a.st.BatteryVoltage -= drainMoving
		a.st.Temperature += heatMoving
	case StateScanning:
		a.st.Temperature += heatScanning
		a.st.Orientation = math.Mod(a.st.Orientation+ScanTurnDeg, 360)
	case StateCharging:
		a.st.BatteryVoltage += chargeRate
		if a.st.Temperature > TempBaseline {
			a.st.Temperature -= coolStandby
		}
	case StateStandby:
		if a.st.Temperature > TempBaseline {
			a.st.Temperature -= coolStandby
		}
		if a.st.BatteryVoltage < BatteryNominal {
			a.st.BatteryVoltage += recoverStandby
		}
	case StateFault:
		if a.st.Temperature > TempBaseline {
			a.st.Temperature -= coolStandby
		}
	}

	a.st.BatteryVoltage = clamp(a.st.BatteryVoltage, BatteryMin, BatteryMax)
	a.st.Temperature = clamp(a.st.Temperature, TempMin, TempMax)

	if a.st.BatteryVoltage < BatteryCritical {
		a.st.MotorLoad = 0
		if a.st.Op == StateMoving {
			a.st.Op = StateStandby
			a.st.Current = CommandNone
		}
	}
}

// PoweredOn reports whether telemetry transmission is allowed.
func (a *Agent) PoweredOn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.st.PoweredOn
}

// Snapshot builds the rounded telemetry sample for this instant.
func (a *Agent) Snapshot(now time.Time) telemetry.Sample {
	a.mu.Lock()
	defer a.mu.Unlock()
	return telemetry.Sample{
		AgentID:        a.id,
		Timestamp:      now.UTC(),
		BatteryVoltage: a.st.BatteryVoltage,
		Temperature:    a.st.Temperature,
		MotorLoad:      a.st.MotorLoad,
		Status:         a.st.Status(),
		CycleCount:     a.st.CycleCount,
		X:              a.st.X,
		Y:              a.st.Y,
		Orientation:    a.st.Orientation,
	}.Round()
}

// StateCopy returns a copy of the current state for inspection.
func (a *Agent) StateCopy() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.st
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
