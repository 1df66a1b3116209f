package models

// GeneralEventID is the fixed ID of the general fund event every circle owns.
const GeneralEventID = "general"

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventActive EventStatus = "active"
	EventClosed EventStatus = "closed"
)

// SettlementMode selects how an event's surplus or deficit is disposed of at close.
type SettlementMode string

const (
	// SettleDistribute pays the per-person share out to (or levies it from) every payer.
	SettleDistribute SettlementMode = "distribute"
	// SettleCarryover moves the whole surplus or deficit into the general fund.
	SettleCarryover SettlementMode = "carryover"
)

// Valid reports whether m is a known settlement mode.
func (m SettlementMode) Valid() bool {
	return m == SettleDistribute || m == SettleCarryover
}

// Event is a cost-sharing unit within a circle.
type Event struct {
	CircleID string
	ID       string
	Title    string

	// FeePerPerson is the dues amount recorded by a collection. Always 0 for the general fund.
	FeePerPerson int64

	Status EventStatus

	// Settlement is set exactly once, when the event closes.
	Settlement *Settlement

	CreatedAt int64
}

// Settlement is the record left on an event when it closes.
type Settlement struct {
	// Amount is the event surplus at close (income - expense); negative for a deficit.
	Amount int64

	Mode SettlementMode

	// ClosedAt is the Unix timestamp of the close.
	ClosedAt int64
}

// IsGeneral reports whether e is the circle's general fund.
func (e *Event) IsGeneral() bool {
	return e.ID == GeneralEventID
}

// IsClosed reports whether e has been closed.
func (e *Event) IsClosed() bool {
	return e.Status == EventClosed
}

// Participant is a guest attendee scoped to a single event.
type Participant struct {
	CircleID string
	EventID  string

	// ID is the guest's identity id.
	ID string

	DisplayName string

	// Paid is an optional pre-marked flag set by an admin when adding the guest.
	// It does not count as a collection.
	Paid bool

	CreatedAt int64
}
