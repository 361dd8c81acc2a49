// Package driven defines the outbound ports of the application: interfaces
// the core services depend on, implemented by infrastructure adapters.
package driven
