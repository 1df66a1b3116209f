// Package sqlstore implements storage.Store on top of sqlx.
// The SQL is shared between dialects; each dialect package supplies the
// connection, the schema and the driver-specific error checks.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mmynk/circlewallet/internal/models"
	"github.com/mmynk/circlewallet/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Dialect captures what differs between SQL backends.
type Dialect struct {
	Name string

	// IsUniqueViolation reports whether err is a unique or primary key violation.
	IsUniqueViolation func(err error) bool

	// LockClause is appended to the event status read that guards every
	// transaction write, e.g. " FOR UPDATE". Empty where the backend
	// serializes writers on its own.
	LockClause string
}

// Store implements storage.Store using a sqlx database handle.
type Store struct {
	db      *sqlx.DB
	dialect Dialect
	hub     *storage.Hub
}

// New wraps an open, migrated database.
func New(db *sqlx.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect, hub: storage.NewHub()}
}

// DB returns the underlying database handle.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Changes subscribes to writes affecting an event and its circle's roster.
func (s *Store) Changes(ctx context.Context, circleID, eventID string) <-chan struct{} {
	return s.hub.Subscribe(ctx, storage.EventPath(circleID, eventID), storage.CirclePath(circleID))
}

// inTx runs fn inside a database transaction, committing if it returns nil.
func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// insertErr maps a failed insert to storage.ErrDuplicate where the dialect says so.
func (s *Store) insertErr(what string, err error) error {
	if s.dialect.IsUniqueViolation != nil && s.dialect.IsUniqueViolation(err) {
		return fmt.Errorf("failed to insert %s: %w", what, storage.ErrDuplicate)
	}
	return fmt.Errorf("failed to insert %s: %w", what, err)
}

// getErr maps sql.ErrNoRows to storage.ErrNotFound.
func getErr(what string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

// CreateCircle writes the circle, its creator as admin and the general fund together.
func (s *Store) CreateCircle(ctx context.Context, circle *models.Circle, admin *models.Member, general *models.Event) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			s.db.Rebind("INSERT INTO circles (id, name, created_by, created_at) VALUES (?, ?, ?, ?)"),
			circle.ID, circle.Name, circle.CreatedBy, circle.CreatedAt,
		)
		if err != nil {
			return s.insertErr("circle", err)
		}
		if err := s.insertMember(ctx, tx, admin); err != nil {
			return err
		}
		return s.insertEvent(ctx, tx, general)
	})
	if err != nil {
		return err
	}

	s.hub.Publish(storage.CirclePath(circle.ID))
	return nil
}

// GetCircle retrieves a circle by its join code.
func (s *Store) GetCircle(ctx context.Context, circleID string) (*models.Circle, error) {
	var row circleRow
	err := s.db.GetContext(ctx, &row,
		s.db.Rebind("SELECT "+circleColumns+" FROM circles WHERE id = ?"),
		circleID,
	)
	if err != nil {
		return nil, getErr("circle "+circleID, err)
	}
	return row.model(), nil
}

// RenameCircle updates the circle name.
func (s *Store) RenameCircle(ctx context.Context, circleID, name string) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			s.db.Rebind("UPDATE circles SET name = ? WHERE id = ?"),
			name, circleID,
		)
		if err != nil {
			return fmt.Errorf("failed to rename circle: %w", err)
		}
		return requireRow(res, "circle "+circleID)
	})
	if err != nil {
		return err
	}

	s.hub.Publish(storage.CirclePath(circleID))
	return nil
}

// AddMember inserts a member; an existing membership is reported as storage.ErrDuplicate.
func (s *Store) AddMember(ctx context.Context, member *models.Member) error {
	if err := s.insertMember(ctx, s.db, member); err != nil {
		return err
	}
	s.hub.Publish(storage.CirclePath(member.CircleID), storage.MemberPath(member.CircleID, member.UserID))
	return nil
}

func (s *Store) insertMember(ctx context.Context, ex sqlx.ExecerContext, m *models.Member) error {
	_, err := ex.ExecContext(ctx,
		s.db.Rebind("INSERT INTO members (circle_id, user_id, display_name, role, joined_at) VALUES (?, ?, ?, ?, ?)"),
		m.CircleID, m.UserID, m.DisplayName, string(m.Role), m.JoinedAt,
	)
	if err != nil {
		return s.insertErr("member", err)
	}
	return nil
}

// GetMember retrieves one membership.
func (s *Store) GetMember(ctx context.Context, circleID, userID string) (*models.Member, error) {
	var row memberRow
	err := s.db.GetContext(ctx, &row,
		s.db.Rebind("SELECT "+memberColumns+" FROM members WHERE circle_id = ? AND user_id = ?"),
		circleID, userID,
	)
	if err != nil {
		return nil, getErr(storage.MemberPath(circleID, userID), err)
	}
	return row.model(), nil
}

// ListMembers returns the roster in join order.
func (s *Store) ListMembers(ctx context.Context, circleID string) ([]*models.Member, error) {
	var rows []memberRow
	err := s.db.SelectContext(ctx, &rows,
		s.db.Rebind("SELECT "+memberColumns+" FROM members WHERE circle_id = ? ORDER BY joined_at, user_id"),
		circleID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	members := make([]*models.Member, len(rows))
	for i, r := range rows {
		members[i] = r.model()
	}
	return members, nil
}

// requireRow turns "zero rows affected" into storage.ErrNotFound.
func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	return nil
}
