// Package service runs long-lived subsystems in dependency order
package service

// Service is a long-lived subsystem of the simulator process: scheduler, HTTP API, publisher
//
// Lifecycle:
//  1. Construction (fully configured)
//  2. Start() - launch background goroutines
//  3. [runtime operation]
//  4. Stop() - halt goroutines, release resources
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Dependencies returns names of services that must start before this one
	Dependencies() []string

	// Start begins service operation
	Start() error

	// Stop halts service operation; must be idempotent
	Stop() error
}
