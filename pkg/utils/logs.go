package utils

import (
	"fmt"
	"log"
)

// Switches for the two INFO channels; warnings are always printed
var (
	computeLog bool
	serverLog  bool
)

// InitLog enables pipeline progress (compute) and request handling
// (server) logs
func InitLog(compute, server bool) {
	computeLog = compute
	serverLog = server
}

func logf(level, role, format string, v ...any) {
	log.Printf("%s %s: %s", level, role, fmt.Sprintf(format, v...))
}

func ServerLog(format string, v ...any) {
	if serverLog {
		logf("INFO", "Server", format, v...)
	}
}

// ComputeLog logs pipeline progress of the run identified by runID
func ComputeLog(runID string, format string, v ...any) {
	if computeLog {
		logf("INFO", "Compute "+runID, format, v...)
	}
}

// WarnLog reports a failure that does not stop the caller, such as an
// unacknowledged delivery
func WarnLog(role string, format string, v ...any) {
	logf("WARN", role, format, v...)
}

// FailOnError exits the process when err is set. Only for startup code in
// cmd/, where there is nothing to recover.
func FailOnError(format string, err error, v ...any) {
	if err == nil {
		return
	}
	log.Fatalf("FATAL %s: %v", fmt.Sprintf(format, v...), err)
}
