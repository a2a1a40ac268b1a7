package order

// Status Order status enum
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// progression ranks the non-cancelled states; transitions only move up.
var progression = map[Status]int{
	StatusPending:   0,
	StatusPaid:      1,
	StatusShipped:   2,
	StatusDelivered: 3,
}

func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	return st, st.IsValid()
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether from -> to is a legal, state-changing move.
// Forward skips (PAID -> DELIVERED) are allowed; regressions never are.
func CanTransition(from, to Status) bool {
	if from == to || from.IsTerminal() || !to.IsValid() {
		return false
	}
	if to == StatusCancelled {
		return from == StatusPending || from == StatusPaid
	}
	return progression[to] > progression[from]
}
