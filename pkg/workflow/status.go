package workflow

import "strings"

// Status is the execution state of a phase. The set of values is closed;
// anything unrecognized is treated as Pending.
type Status string

const (
	Pending   Status = "pending"
	Running   Status = "running"
	Completed Status = "completed"
	Failed    Status = "failed"
	Cancelled Status = "cancelled"
	Created   Status = "created"
)

// Statuses lists every status in display order.
var Statuses = []Status{Pending, Created, Running, Completed, Failed, Cancelled}

// ParseStatus maps a raw status string onto the closed variant. Matching is
// case-insensitive and ignores surrounding whitespace; unknown or empty
// input yields Pending.
func ParseStatus(s string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case Running:
		return Running
	case Completed:
		return Completed
	case Failed:
		return Failed
	case Cancelled:
		return Cancelled
	case Created:
		return Created
	default:
		return Pending
	}
}

// Label returns the human-readable label shown in dashboards.
func (s Status) Label() string {
	switch ParseStatus(string(s)) {
	case Running:
		return "Running"
	case Completed:
		return "Completed"
	case Failed:
		return "Failed"
	case Cancelled:
		return "Cancelled"
	case Created:
		return "Created"
	default:
		return "Pending"
	}
}

// Terminal reports whether no further transitions are expected.
func (s Status) Terminal() bool {
	switch ParseStatus(string(s)) {
	case Completed, Failed, Cancelled:
		return true
	}
	return false
}

func (s Status) String() string { return string(ParseStatus(string(s))) }

// UnmarshalText applies ParseStatus so decoded records never carry an
// out-of-range status.
func (s *Status) UnmarshalText(b []byte) error {
	*s = ParseStatus(string(b))
	return nil
}
