package collector

import "robotops-sim/internal/telemetry"

// TelemetryWriter is a sink for accepted telemetry rows. The SQLite store is
// the system of record; writers are additional fan-out targets (time-series
// DB, JSONL export, stdout).
type TelemetryWriter interface {
	Write(telemetry.Row) error
}

// Optional: writers can also support batch mode.
type batchWriter interface {
	WriteBatch([]telemetry.Row) error
}

// MultiWriter fans rows out to multiple writers.
type MultiWriter struct {
	writers []TelemetryWriter
}

func NewMultiWriter(writers ...TelemetryWriter) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write sends a row to all writers.
func (mw *MultiWriter) Write(row telemetry.Row) error {
	for _, w := range mw.writers {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends multiple rows to all writers, using batch if supported.
func (mw *MultiWriter) WriteBatch(rows []telemetry.Row) error {
	for _, w := range mw.writers {
		if bw, ok := w.(batchWriter); ok {
			if err := bw.WriteBatch(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.Write(r); err != nil {
				return err
			}
		}
	}
	return nil
}
