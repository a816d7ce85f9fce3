package domain

import "time"

// ServiceState is the supervisor-visible lifecycle state of the ingestion
// process.
type ServiceState string

const (
	StateStarting   ServiceState = "starting"
	StateRunning    ServiceState = "running"
	StateRestarting ServiceState = "restarting"
	StateStopped    ServiceState = "stopped"
	StateFailed     ServiceState = "failed"
)

// StatusRecord is the machine-parseable status snapshot the supervisor
// publishes to the cache. External health checks consume it.
type StatusRecord struct {
	Status       ServiceState `json:"status"`
	Timestamp    string       `json:"timestamp"`
	RestartCount int          `json:"restart_count"`
	Symbols      []string     `json:"symbols"`
}

// NewStatusRecord builds a status record stamped with the current UTC time.
func NewStatusRecord(state ServiceState, restarts int, symbols []string) StatusRecord {
	return StatusRecord{
		Status:       state,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		RestartCount: restarts,
		Symbols:      symbols,
	}
}
