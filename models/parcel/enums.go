package parcel

// Status is a parcel lifecycle state.
type Status string

const (
	StatusRequested  Status = "REQUESTED"
	StatusApproved   Status = "APPROVED"
	StatusDispatched Status = "DISPATCHED"
	StatusPicked     Status = "PICKED"
	StatusInTransit  Status = "IN_TRANSIT"
	StatusHeld       Status = "HELD"
	StatusDelivered  Status = "DELIVERED"
	StatusReturned   Status = "RETURNED"
	StatusCancelled  Status = "CANCELLED"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusRequested, StatusApproved, StatusDispatched, StatusPicked,
		StatusInTransit, StatusHeld, StatusDelivered, StatusReturned, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition leaves this state.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusReturned
}

// IsDeliverable reports whether delivery confirmation is a legal transition
// from this state.
func (s Status) IsDeliverable() bool {
	return s == StatusDispatched || s == StatusInTransit
}

// AllStatuses returns every valid parcel status.
func AllStatuses() []Status {
	return []Status{
		StatusRequested,
		StatusApproved,
		StatusDispatched,
		StatusPicked,
		StatusInTransit,
		StatusHeld,
		StatusDelivered,
		StatusReturned,
		StatusCancelled,
	}
}
