package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mmynk/circlewallet/internal/models"
	"github.com/mmynk/circlewallet/internal/storage"
)

// CreateEvent persists a new active event.
func (s *Store) CreateEvent(ctx context.Context, event *models.Event) error {
	if err := s.insertEvent(ctx, s.db, event); err != nil {
		return err
	}
	s.hub.Publish(storage.CirclePath(event.CircleID), storage.EventPath(event.CircleID, event.ID))
	return nil
}

func (s *Store) insertEvent(ctx context.Context, ex sqlx.ExecerContext, e *models.Event) error {
	_, err := ex.ExecContext(ctx,
		s.db.Rebind(`INSERT INTO events (circle_id, id, title, fee_per_person, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`),
		e.CircleID, e.ID, e.Title, e.FeePerPerson, string(e.Status), e.CreatedAt,
	)
	if err != nil {
		return s.insertErr("event", err)
	}
	return nil
}

// GetEvent retrieves an event, including its settlement record once closed.
func (s *Store) GetEvent(ctx context.Context, circleID, eventID string) (*models.Event, error) {
	return s.getEvent(ctx, s.db, circleID, eventID, "")
}

func (s *Store) getEvent(ctx context.Context, q sqlx.QueryerContext, circleID, eventID, lock string) (*models.Event, error) {
	var row eventRow
	err := sqlx.GetContext(ctx, q, &row,
		s.db.Rebind("SELECT "+eventColumns+" FROM events WHERE circle_id = ? AND id = ?"+lock),
		circleID, eventID,
	)
	if err != nil {
		return nil, getErr(storage.EventPath(circleID, eventID), err)
	}
	return row.model(), nil
}

// ListEvents returns the general fund first, then the other events newest first.
func (s *Store) ListEvents(ctx context.Context, circleID string) ([]*models.Event, error) {
	var rows []eventRow
	err := s.db.SelectContext(ctx, &rows,
		s.db.Rebind(`SELECT `+eventColumns+` FROM events WHERE circle_id = ?
		 ORDER BY CASE WHEN id = ? THEN 0 ELSE 1 END, created_at DESC, id DESC`),
		circleID, models.GeneralEventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]*models.Event, len(rows))
	for i, r := range rows {
		events[i] = r.model()
	}
	return events, nil
}

// requireActive guards a transaction write: the event must exist and be active.
func (s *Store) requireActive(ctx context.Context, tx *sqlx.Tx, circleID, eventID string) error {
	event, err := s.getEvent(ctx, tx, circleID, eventID, s.dialect.LockClause)
	if err != nil {
		return err
	}
	if event.IsClosed() {
		return fmt.Errorf("%s: %w", storage.EventPath(circleID, eventID), storage.ErrClosed)
	}
	return nil
}

// AddParticipant registers a guest on an event.
func (s *Store) AddParticipant(ctx context.Context, p *models.Participant) error {
	_, err := s.db.ExecContext(ctx,
		s.db.Rebind(`INSERT INTO participants (circle_id, event_id, id, display_name, paid, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`),
		p.CircleID, p.EventID, p.ID, p.DisplayName, p.Paid, p.CreatedAt,
	)
	if err != nil {
		return s.insertErr("participant", err)
	}

	s.hub.Publish(storage.EventPath(p.CircleID, p.EventID), storage.ParticipantPath(p.CircleID, p.EventID, p.ID))
	return nil
}

// GetParticipant retrieves one guest of an event.
func (s *Store) GetParticipant(ctx context.Context, circleID, eventID, id string) (*models.Participant, error) {
	var row participantRow
	err := s.db.GetContext(ctx, &row,
		s.db.Rebind("SELECT "+participantColumns+" FROM participants WHERE circle_id = ? AND event_id = ? AND id = ?"),
		circleID, eventID, id,
	)
	if err != nil {
		return nil, getErr(storage.ParticipantPath(circleID, eventID, id), err)
	}
	return row.model(), nil
}

// ListParticipants returns an event's guests in the order they were added.
func (s *Store) ListParticipants(ctx context.Context, circleID, eventID string) ([]*models.Participant, error) {
	var rows []participantRow
	err := s.db.SelectContext(ctx, &rows,
		s.db.Rebind("SELECT "+participantColumns+" FROM participants WHERE circle_id = ? AND event_id = ? ORDER BY created_at, id"),
		circleID, eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	participants := make([]*models.Participant, len(rows))
	for i, r := range rows {
		participants[i] = r.model()
	}
	return participants, nil
}
