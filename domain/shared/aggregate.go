package shared

// AggregateRoot is the consistency boundary persisted and versioned as a unit.
type AggregateRoot interface {
	ID() string

	// Version is the optimistic lock version loaded from storage.
	Version() int

	// PullEvents returns and clears the events recorded since the last pull.
	PullEvents() []DomainEvent
}
