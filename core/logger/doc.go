// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production).
//
// # Cycle Correlation
//
// Every reconciliation cycle is assigned a cycle ID. The WithCycle helper
// attaches that ID to the log entry, ensuring that all logs related to a
// specific cycle can be correlated.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Scheduler started")
//
//	// Inside a cycle:
//	l := logger.WithCycle(log, cycleID)
//	l.Error("Cycle failed", zap.Error(err))
package logger
