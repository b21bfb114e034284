package collector

import (
	"encoding/json"
	"os"

	"robotops-sim/internal/telemetry"
)

// FileWriter appends accepted telemetry rows to a JSONL file.
type FileWriter struct {
	file *os.File
	enc  *json.Encoder
}

// NewFileWriter creates (or truncates) the export file.
func NewFileWriter(path string) (*FileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &FileWriter{file: f, enc: json.NewEncoder(f)}, nil
}

// Write logs a single row.
func (f *FileWriter) Write(row telemetry.Row) error {
	return f.enc.Encode(row)
}

// WriteBatch logs multiple rows.
func (f *FileWriter) WriteBatch(rows []telemetry.Row) error {
	for _, r := range rows {
		if err := f.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying file.
func (f *FileWriter) Close() error {
	return f.file.Close()
}
