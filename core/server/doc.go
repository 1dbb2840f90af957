// Package server provides the optional status HTTP server.
//
// The daemon itself has no command surface; this server is a read-only
// observability window exposing a liveness probe (/healthz) and the
// scheduler status (/status, registered by cmd/start). It exists to make
// silent staleness visible without tailing logs.
package server
