// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/circlewallet/internal/models"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a write violates a uniqueness constraint,
	// e.g. a second collection for the same (event, user).
	ErrDuplicate = errors.New("duplicate")

	// ErrClosed is returned when a transaction write targets a closed event.
	ErrClosed = errors.New("event closed")

	// ErrConflict is returned when a conditional write lost a race,
	// e.g. closing an event that is no longer active.
	ErrConflict = errors.New("conflict")
)

// SettlementBatch is everything a settlement commit writes, applied all-or-nothing.
type SettlementBatch struct {
	CircleID string
	EventID  string

	// Settlement is recorded on the event as it moves to closed.
	Settlement models.Settlement

	// Posts are inserted on the circle's general fund.
	Posts []*models.Transaction

	// Check runs against the event's transactions as re-read inside the batch.
	// A non-nil error aborts the batch and is returned unchanged.
	Check func(txs []*models.Transaction) error
}

// Store defines the interface for circle ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the ledger layer.
//
// Every mutation publishes a change notification on the affected keys
// after it commits; Changes delivers them.
type Store interface {
	// CreateCircle writes the circle, its first admin and its general fund in one batch.
	CreateCircle(ctx context.Context, circle *models.Circle, admin *models.Member, general *models.Event) error
	GetCircle(ctx context.Context, circleID string) (*models.Circle, error)
	RenameCircle(ctx context.Context, circleID, name string) error

	// AddMember returns ErrDuplicate if the identity is already a member.
	AddMember(ctx context.Context, member *models.Member) error
	GetMember(ctx context.Context, circleID, userID string) (*models.Member, error)
	// ListMembers returns members in join order.
	ListMembers(ctx context.Context, circleID string) ([]*models.Member, error)

	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, circleID, eventID string) (*models.Event, error)
	// ListEvents returns the circle's events, newest first.
	ListEvents(ctx context.Context, circleID string) ([]*models.Event, error)

	AddParticipant(ctx context.Context, p *models.Participant) error
	GetParticipant(ctx context.Context, circleID, eventID, id string) (*models.Participant, error)
	// ListParticipants returns guests in the order they were added.
	ListParticipants(ctx context.Context, circleID, eventID string) ([]*models.Participant, error)

	// CreateTransaction returns ErrClosed for a closed event and ErrDuplicate
	// for a second collection by the same author.
	CreateTransaction(ctx context.Context, t *models.Transaction) error
	GetTransaction(ctx context.Context, circleID, eventID, id string) (*models.Transaction, error)
	// ListTransactions returns the event's transactions ordered by created_at descending.
	ListTransactions(ctx context.Context, circleID, eventID string) ([]*models.Transaction, error)
	// UpdateTransaction applies the non-nil fields of patch and returns the updated row.
	UpdateTransaction(ctx context.Context, circleID, eventID, id string, patch models.TransactionPatch) (*models.Transaction, error)
	// MarkReimbursed flips is_reimbursed from false to true. It returns ErrConflict
	// if the transaction was already reimbursed.
	MarkReimbursed(ctx context.Context, circleID, eventID, id string) error
	DeleteTransaction(ctx context.Context, circleID, eventID, id string) error

	// CommitSettlement closes the event, flips all of its unreimbursed expenses
	// and inserts the general fund posts in one atomic batch. It returns
	// ErrConflict if the event is no longer active.
	CommitSettlement(ctx context.Context, batch SettlementBatch) error

	// Changes signals after every committed write that affects the event:
	// its transactions, participants and settlement, and the circle's roster.
	// The channel is closed when ctx is done.
	Changes(ctx context.Context, circleID, eventID string) <-chan struct{}

	// Close releases any resources held by the store.
	Close() error
}
