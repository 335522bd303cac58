package tracking

// Status represents a tracked message's position in the delivery lifecycle.
type Status string

const (
	// StatusPending is the initial state, set before the provider call.
	StatusPending Status = "pending"
	// StatusSent means the provider accepted the message.
	StatusSent Status = "sent"
	// StatusFailed means the last send attempt failed and the message is
	// still retryable.
	StatusFailed Status = "failed"
	// StatusDeadLettered is the terminal state after retry exhaustion.
	// Dead-lettered messages are never selected for retry again.
	StatusDeadLettered Status = "dead_lettered"
	// StatusDelivered means the provider confirmed delivery to the recipient
	// mailbox.
	StatusDelivered Status = "delivered"
	// StatusOpened means the recipient opened the message.
	StatusOpened Status = "opened"
	// StatusClicked means the recipient clicked a link in the message.
	StatusClicked Status = "clicked"
	// StatusBounced is a terminal provider-reported delivery failure.
	StatusBounced Status = "bounced"
	// StatusComplaint is a terminal recipient-reported abuse report.
	StatusComplaint Status = "complaint"
)

// transitions is the enforced delivery state graph:
//
//	pending → sent | failed
//	failed  → sent | failed | dead_lettered
//	sent      → delivered | opened | clicked | bounced | complaint
//	delivered → opened | clicked | bounced | complaint
//	opened    → clicked | complaint
//	clicked   → complaint
//
// Both the send path and webhook ingestion consult it; anything that would
// move a message backward along the graph is rejected rather than applied.
var transitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusSent:   true,
		StatusFailed: true,
	},
	StatusFailed: {
		StatusSent:         true,
		StatusFailed:       true, // retry bookkeeping: count and schedule advance
		StatusDeadLettered: true,
	},
	StatusSent: {
		StatusDelivered: true,
		StatusOpened:    true,
		StatusClicked:   true,
		StatusBounced:   true,
		StatusComplaint: true,
	},
	StatusDelivered: {
		StatusOpened:    true,
		StatusClicked:   true,
		StatusBounced:   true,
		StatusComplaint: true,
	},
	StatusOpened: {
		StatusClicked:   true,
		StatusComplaint: true,
	},
	StatusClicked: {
		StatusComplaint: true,
	},
}

// CanTransition reports whether moving a message from one status to another
// is allowed by the delivery state graph. Transitioning to the current status
// is not a valid transition; callers treat it as an idempotent no-op instead.
func (s Status) CanTransition(to Status) bool {
	return transitions[s][to]
}

// IsValid reports whether s is a known status value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusSent, StatusFailed, StatusDeadLettered,
		StatusDelivered, StatusOpened, StatusClicked, StatusBounced, StatusComplaint:
		return true
	}
	return false
}

// Terminal reports whether no further transitions can leave s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}
