// Synthetic telemetry history generator for demos and dashboard work.
package seed

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"robotops-sim/internal/collector"
	"robotops-sim/internal/geo"
	"robotops-sim/internal/store"
	"robotops-sim/internal/telemetry"
)

// Options controls the generated history.
type Options struct {
	Agents []string
	Days   int
	// Step is the simulated sampling interval. Defaults to one minute;
	// finer steps multiply row counts quickly.
	Step time.Duration
	End  time.Time
}

const (
	activeStartHour = 6
	activeEndHour   = 22

	batteryFull  = 25.2
	batteryFloor = 22.6
	tempIdle     = 40.0
	tempPatrol   = 55.0
)

// patrol produces a position for the elapsed patrol time. Patterns cycle by
// agent index so a seeded fleet does not move in lockstep.
type patrol func(t float64) (x, y float64)

func figureEight(t float64) (float64, float64) {
	return 50 + 30*math.Sin(t), 50 + 20*math.Sin(2*t)
}

func circuit(t float64) (float64, float64) {
	return 50 + 35*math.Cos(t), 50 + 35*math.Sin(t)
}

func square(t float64) (float64, float64) {
	// Clockwise patrol along a square inset from the envelope.
	const lo, hi = 15.0, 85.0
	u := math.Mod(t, 4)
	frac := u - math.Floor(u)
	switch int(u) {
	case 0:
		return lo + (hi-lo)*frac, lo
	case 1:
		return hi, lo + (hi-lo)*frac
	case 2:
		return hi - (hi-lo)*frac, hi
	default:
		return lo, hi - (hi-lo)*frac
	}
}

func sweep(t float64) (float64, float64) {
	// Back and forth across the floor, drifting up a row at each pass.
	x := 50 + 40*math.Sin(t)
	y := 10 + 80*(0.5+0.5*math.Sin(t/9))
	return x, y
}

var patterns = []patrol{figureEight, circuit, square, sweep}

// Run writes the synthetic history into the store. Health rows pass through
// the same cooldown gate the live ingest path uses, so seeded data has the
// same density as real data.
func Run(db *store.DB, opts Options) (healthRows, pathRows int, err error) {
	if len(opts.Agents) == 0 {
		return 0, 0, fmt.Errorf("no agents to seed")
	}
	if opts.Days <= 0 {
		opts.Days = 7
	}
	if opts.Step <= 0 {
		opts.Step = time.Minute
	}
	if opts.End.IsZero() {
		opts.End = time.Now().UTC()
	}

	gate := collector.NewPersistenceGate()
	start := opts.End.Add(-time.Duration(opts.Days) * 24 * time.Hour)

	for i, agentID := range opts.Agents {
		if err := db.EnsureAgent(agentID); err != nil {
			return healthRows, pathRows, err
		}
		rng := rand.New(rand.NewSource(int64(i) + 1))
		pattern := patterns[i%len(patterns)]
		battery := batteryFull

		for ts := start; !ts.After(opts.End); ts = ts.Add(opts.Step) {
			active := ts.Hour() >= activeStartHour && ts.Hour() < activeEndHour

			var x, y float64
			var temp float64
			status := "STANDBY"
			motorLoad := 0

			if active {
				elapsed := ts.Sub(start).Minutes() / 10
				x, y = pattern(elapsed)
				x = clampPos(x + rng.Float64() - 0.5)
				y = clampPos(y + rng.Float64() - 0.5)
				status = "MOVING"
				motorLoad = 60 + rng.Intn(10)
				temp = tempPatrol + 3*rng.Float64()
				battery -= 0.0006 * opts.Step.Seconds()
			} else {
				// Docked overnight, charging back toward full.
				x, y = geo.CenterX, geo.CenterY
				temp = tempIdle + rng.Float64()
				battery += 0.0004 * opts.Step.Seconds()
			}
			if battery < batteryFloor {
				battery = batteryFloor
			}
			if battery > batteryFull {
				battery = batteryFull
			}

			sample := telemetry.Sample{
				AgentID:        agentID,
				Timestamp:      ts,
				BatteryVoltage: round2(battery),
				Temperature:    math.Round(temp*10) / 10,
				MotorLoad:      motorLoad,
				Status:         status,
				X:              round2(x),
				Y:              round2(y),
				Orientation:    0,
			}

			if gate.ShouldPersist(sample) {
				if err := db.InsertHealth(sample); err != nil {
					return healthRows, pathRows, err
				}
				healthRows++
			}
			// Path rows only while moving; an idle agent parked on the
			// dock adds nothing to its trail.
			if active {
				if err := db.InsertPath(sample); err != nil {
					return healthRows, pathRows, err
				}
				pathRows++
			}
		}
	}
	return healthRows, pathRows, nil
}

func clampPos(v float64) float64 {
	if v < geo.SafeMin {
		return geo.SafeMin
	}
	if v > geo.SafeMax {
		return geo.SafeMax
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
