package main

import (
	"os"

	"robotops-sim/internal/collector"
	"robotops-sim/internal/config"
)

// newSink assembles the optional telemetry fan-out beside the SQLite store.
// It returns a nil writer when nothing is configured and a cleanup function
// to close any resources.
func newSink(cfg *config.Config, printTelemetry bool, logFile string) (collector.TelemetryWriter, func(), error) {
	cleanup := func() {}
	var writers []collector.TelemetryWriter

	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	if endpoint == "" {
		endpoint = cfg.Collector.GreptimeEndpoint
	}
	if endpoint != "" {
		gw, err := collector.NewGreptimeWriter(endpoint, "public", "")
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, gw)
	}

	if logFile == "" {
		logFile = cfg.Collector.LogFile
	}
	if logFile != "" {
		fw, err := collector.NewFileWriter(logFile)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, fw)
		cleanup = func() { fw.Close() }
	}

	if printTelemetry {
		writers = append(writers, &collector.StdoutWriter{})
	}

	switch len(writers) {
	case 0:
		return nil, cleanup, nil
	case 1:
		return writers[0], cleanup, nil
	default:
		return collector.NewMultiWriter(writers...), cleanup, nil
	}
}
