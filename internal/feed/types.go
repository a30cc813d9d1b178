package feed

import (
	"errors"
	"time"
)

// Sentinel errors for feed reads. Callers should test with errors.Is.
var (
	// ErrUnavailable means the resource could not be read: transport error,
	// non-200 response or missing file.
	ErrUnavailable = errors.New("resource unavailable")

	// ErrMalformed means the resource was read but its body has an
	// unexpected shape.
	ErrMalformed = errors.New("resource malformed")
)

// Details carries the per-factor risk inputs published alongside a score.
type Details struct {
	Concentration float64 `json:"concentration"`
	Volatility    float64 `json:"volatility"`
	UnstakeSpike  float64 `json:"unstake_spike"`
}

// RiskStatus is one published risk snapshot for a validator.
type RiskStatus struct {
	Validator string     `json:"validator"`
	Score     int        `json:"score"`
	Details   *Details   `json:"details,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ResourceKind identifies which of the two feed resources an event refers to.
type ResourceKind int

const (
	ResourceStatus ResourceKind = iota
	ResourceLogs
)

// String returns the lowercase name of the resource kind.
func (k ResourceKind) String() string {
	switch k {
	case ResourceStatus:
		return "status"
	case ResourceLogs:
		return "logs"
	default:
		return "unknown"
	}
}

// ChangeEvent reports that a locally watched resource changed on disk.
type ChangeEvent struct {
	Resource ResourceKind
	Path     string
	Time     time.Time
}
