package analysis

import "strings"

// StatusClass is the client's coarse reading of a server job status.
type StatusClass int

const (
	// StatusPending covers queued, running and anything unrecognised.
	StatusPending StatusClass = iota
	// StatusComplete is terminal success.
	StatusComplete
	// StatusFailed is a server-reported failure.
	StatusFailed
)

func (c StatusClass) String() string {
	switch c {
	case StatusComplete:
		return "complete"
	case StatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// ClassifyStatus maps a raw status string to a StatusClass.
// Statuses may be namespaced (e.g. "JobStatus.complete"), so matching is a
// case-insensitive substring test. Tighten it here if the backend settles on
// a fixed enumeration.
func ClassifyStatus(status string) StatusClass {
	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "complete"):
		return StatusComplete
	case strings.Contains(s, "fail"):
		return StatusFailed
	default:
		return StatusPending
	}
}
