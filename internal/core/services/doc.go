// Package services implements the driving ports: the knowledge base
// orchestrator, the ask pipeline, settings management and bulk transfer.
// Services depend only on domain types and driven ports.
package services
