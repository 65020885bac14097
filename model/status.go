package model

// Status is the per-member delivery state of a message. It only moves
// forward (NOT_SENT -> SENDING -> SENT -> DELIVERED -> READ); DELETED is
// terminal and reachable from any state.
type Status string

const (
	StatusNotSent   Status = "NOT_SENT"
	StatusSending   Status = "SENDING"
	StatusSent      Status = "SENT"
	StatusDelivered Status = "DELIVERED"
	StatusRead      Status = "READ"
	StatusDeleted   Status = "DELETED"
)

var statusRank = map[Status]int{
	StatusNotSent:   0,
	StatusSending:   1,
	StatusSent:      2,
	StatusDelivered: 3,
	StatusRead:      4,
}

// Before reports whether s precedes other in delivery progress.
// DELETED has no rank; it never precedes anything.
func (s Status) Before(other Status) bool {
	sr, ok := statusRank[s]
	or, ok2 := statusRank[other]
	return ok && ok2 && sr < or
}
