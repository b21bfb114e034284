package agent

import "time"

// OpState is the agent's operating mode.
type OpState string

const (
	StateOffline  OpState = "OFFLINE"
	StateBooting  OpState = "BOOTING"
	StateStandby  OpState = "STANDBY"
	StateMoving   OpState = "MOVING"
	StateScanning OpState = "SCANNING"
	StateCharging OpState = "CHARGING"
	StateFault    OpState = "FAULT"
)

// Physical envelope and dynamics constants. Battery is a 6S pack voltage,
// temperature the controller board in Celsius.
const (
	BatteryMin      = 22.0
	BatteryMax      = 25.2
	BatteryNominal  = 24.5
	BatteryWarn     = 23.0
	BatteryCritical = 22.4

	TempMin      = 35.0
	TempMax      = 85.0
	TempBaseline = 40.0

	MoveSpeed = 1.0 // workspace units per command

	LoadMoving   = 65
	LoadScanning = 30
	LoadBooting  = 10
	LoadCharging = 5

	ScanTurnDeg = 2.0

	BootDuration = 3 * time.Second

	// Appended to the status string while voltage sits below BatteryWarn.
	LowBatterySuffix = "_LOW_BATTERY"
)

// Passive dynamics per simulation tick.
const (
	drainMoving    = 0.001
	heatMoving     = 0.1
	heatScanning   = 0.05
	coolStandby    = 0.2
	recoverStandby = 0.002
	chargeRate     = 0.05
)

// State is the agent's mutable record. It is owned by Agent and mutated only
// under its lock.
type State struct {
	X           float64
	Y           float64
	Orientation float64 // degrees, wraps modulo 360

	BatteryVoltage float64
	Temperature    float64
	MotorLoad      int

	Op         OpState
	CycleCount int64 // power-on events, monotonic
	PoweredOn  bool

	// Current holds the command being serviced; one-shot commands never
	// outlive the Apply that set them, scan persists until stop.
	Current CommandType

	bootDeadline time.Time
}

// Status renders the reported status string: the operating mode plus a
// low-battery suffix while voltage is below the warning threshold.
func (s *State) Status() string {
	status := string(s.Op)
	if s.PoweredOn && s.BatteryVoltage < BatteryWarn {
		status += LowBatterySuffix
	}
	return status
}
