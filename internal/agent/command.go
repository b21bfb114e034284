package agent

// CommandType is the closed set of one-shot commands an agent understands.
// Unrecognized wire strings parse to CommandUnknown and are dropped.
type CommandType int

const (
	CommandNone CommandType = iota
	CommandMoveUp
	CommandMoveDown
	CommandMoveLeft
	CommandMoveRight
	CommandMoveForward
	CommandScanArea
	CommandStop
	CommandHalt
	CommandCharging
	CommandFault
	CommandStandby
	CommandMoving
	CommandScanning
	CommandPowerOn
	CommandPowerOff
	CommandUnknown
)

var commandNames = map[CommandType]string{
	CommandNone:        "",
	CommandMoveUp:      "move_up",
	CommandMoveDown:    "move_down",
	CommandMoveLeft:    "move_left",
	CommandMoveRight:   "move_right",
	CommandMoveForward: "move_forward",
	CommandScanArea:    "scan_area",
	CommandStop:        "stop",
	CommandHalt:        "halt",
	CommandCharging:    "charging",
	CommandFault:       "fault",
	CommandStandby:     "standby",
	CommandMoving:      "moving",
	CommandScanning:    "scanning",
	CommandPowerOn:     "power_on",
	CommandPowerOff:    "power_off",
	CommandUnknown:     "unknown",
}

var commandValues = func() map[string]CommandType {
	m := make(map[string]CommandType, len(commandNames))
	for c, n := range commandNames {
		m[n] = c
	}
	return m
}()

func (c CommandType) String() string {
	if n, ok := commandNames[c]; ok {
		return n
	}
	return "unknown"
}

// ParseCommand maps a wire string to its CommandType.
func ParseCommand(s string) CommandType {
	if c, ok := commandValues[s]; ok && c != CommandNone {
		return c
	}
	return CommandUnknown
}

// IsMovement reports whether the command requests a validated displacement.
func (c CommandType) IsMovement() bool {
	switch c {
	case CommandMoveUp, CommandMoveDown, CommandMoveLeft, CommandMoveRight, CommandMoveForward:
		return true
	}
	return false
}
