// Writer implementation printing telemetry to STDOUT
package collector

import (
	"encoding/json"
	"fmt"

	"robotops-sim/internal/telemetry"
)

// StdoutWriter prints accepted telemetry rows to STDOUT as JSON lines.
type StdoutWriter struct{}

// Write outputs a single row.
func (w *StdoutWriter) Write(row telemetry.Row) error {
	data, _ := json.Marshal(row)
	fmt.Println(string(data))
	return nil
}

// WriteBatch outputs multiple rows.
func (w *StdoutWriter) WriteBatch(rows []telemetry.Row) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}
