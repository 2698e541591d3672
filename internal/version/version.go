// Package version contains information on the current version of the program.
// It is split from the main program for easy use.
package version

// Current is the string representing the current version of grape.
const Current = "0.1.0"

// ServerCurrent is the version of the HTTP job-submission API, tracked
// separately from Current since the wire protocol and the pruning engine
// can advance at different rates.
const ServerCurrent = "0.1.0"
