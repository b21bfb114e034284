package agent

// Controller components whose firmware versions the agent reports at
// startup. The collector tracks the reported versions and records history
// on change.
const (
	ComponentPCU = "RCPCU" // power control unit
	ComponentSPM = "RCSPM" // servo power module
	ComponentMMC = "RCMMC" // motion motor controller
	ComponentPMU = "RCPMU" // perception management unit
)

// ComponentVersions returns the firmware versions baked into this build of
// the simulated agent.
func ComponentVersions() map[string]string {
	return map[string]string{
		ComponentPCU: "2.4.1",
		ComponentSPM: "1.9.0",
		ComponentMMC: "3.1.7",
		ComponentPMU: "0.8.2",
	}
}
