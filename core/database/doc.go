// Package database manages the MySQL connection to the local catalog.
//
// The connection is opened once at startup and shared by the scheduler,
// which begins one transaction per reconciliation cycle. Connection,
// read and write timeouts are encoded into the DSN so a dead server
// cannot hang a cycle indefinitely.
package database
