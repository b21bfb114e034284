package collector

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"robotops-sim/internal/telemetry"
)

type mockWriter struct {
	rows    []telemetry.Row
	batches int
	fail    bool
}

func (m *mockWriter) Write(row telemetry.Row) error {
	if m.fail {
		return errors.New("write failed")
	}
	m.rows = append(m.rows, row)
	return nil
}

type mockBatchWriter struct {
	mockWriter
}

func (m *mockBatchWriter) WriteBatch(rows []telemetry.Row) error {
	if m.fail {
		return errors.New("batch failed")
	}
	m.rows = append(m.rows, rows...)
	m.batches++
	return nil
}

func testRow(id string) telemetry.Row {
	return telemetry.Row{AgentID: id, Timestamp: time.Unix(0, 0), Status: "STANDBY"}
}

func TestMultiWriterFanOut(t *testing.T) {
	a := &mockWriter{}
	b := &mockWriter{}
	mw := NewMultiWriter(a, b)

	if err := mw.Write(testRow("robot-1")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(a.rows) != 1 || len(b.rows) != 1 {
		t.Fatalf("fan-out rows = %d/%d, want 1/1", len(a.rows), len(b.rows))
	}
}

func TestMultiWriterPropagatesError(t *testing.T) {
	mw := NewMultiWriter(&mockWriter{}, &mockWriter{fail: true})
	if err := mw.Write(testRow("robot-1")); err == nil {
		t.Fatal("expected error from failing writer")
	}
}

func TestMultiWriterBatchUpgrade(t *testing.T) {
	plain := &mockWriter{}
	batch := &mockBatchWriter{}
	mw := NewMultiWriter(plain, batch)

	rows := []telemetry.Row{testRow("robot-1"), testRow("robot-2")}
	if err := mw.WriteBatch(rows); err != nil {
		t.Fatalf("write batch: %v", err)
	}
	if len(plain.rows) != 2 {
		t.Errorf("plain writer got %d rows, want 2", len(plain.rows))
	}
	if batch.batches != 1 || len(batch.rows) != 2 {
		t.Errorf("batch writer: batches=%d rows=%d, want 1/2", batch.batches, len(batch.rows))
	}
}

func TestFileWriterJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.jsonl")
	fw, err := NewFileWriter(path)
	if err != nil {
		t.Fatalf("new file writer: %v", err)
	}

	fw.Write(testRow("robot-1"))
	fw.WriteBatch([]telemetry.Row{testRow("robot-2"), testRow("robot-3")})
	if err := fw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()

	var ids []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var row telemetry.Row
		if err := json.Unmarshal(sc.Bytes(), &row); err != nil {
			t.Fatalf("bad JSONL line %q: %v", sc.Text(), err)
		}
		ids = append(ids, row.AgentID)
	}
	want := []string{"robot-1", "robot-2", "robot-3"}
	if len(ids) != len(want) {
		t.Fatalf("lines = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, ids[i], want[i])
		}
	}
}
