package payment

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return true
	default:
		return false
	}
}

// Terminal statuses can never change again. Completed is not terminal here
// because a completed payment can still move to refunded.
func (s Status) IsTerminal() bool {
	return s == StatusFailed || s == StatusRefunded
}

// Settled statuses are the ones resolve() treats as already applied: a second
// delivery of the same gateway event must not re-run side effects.
func (s Status) IsSettled() bool {
	return s != StatusPending
}

// Active payments block a new payment attempt for the same booking.
// A failed attempt frees the booking for a retry; a refunded one belongs to a
// cancelled booking.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusCompleted
}
