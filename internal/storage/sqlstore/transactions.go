package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/mmynk/circlewallet/internal/models"
	"github.com/mmynk/circlewallet/internal/storage"
)

// CreateTransaction persists a transaction against an active event.
func (s *Store) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.requireActive(ctx, tx, t.CircleID, t.EventID); err != nil {
			return err
		}
		return s.insertTransaction(ctx, tx, t)
	})
	if err != nil {
		return err
	}

	s.hub.Publish(storage.EventPath(t.CircleID, t.EventID), storage.TransactionPath(t.CircleID, t.EventID, t.ID))
	return nil
}

func (s *Store) insertTransaction(ctx context.Context, tx *sqlx.Tx, t *models.Transaction) error {
	amount, category, reimbursed := summaryArgs(t)
	_, err := tx.ExecContext(ctx,
		s.db.Rebind(`INSERT INTO transactions (`+transactionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		t.ID, t.CircleID, t.EventID, t.UserID, t.UserName, string(t.Type), t.Description,
		amount, category, reimbursed, t.CreatedAt,
	)
	if err != nil {
		return s.insertErr("transaction", err)
	}
	return nil
}

// GetTransaction retrieves one transaction of an event.
func (s *Store) GetTransaction(ctx context.Context, circleID, eventID, id string) (*models.Transaction, error) {
	return s.getTransaction(ctx, s.db, circleID, eventID, id)
}

func (s *Store) getTransaction(ctx context.Context, q sqlx.QueryerContext, circleID, eventID, id string) (*models.Transaction, error) {
	var row transactionRow
	err := sqlx.GetContext(ctx, q, &row,
		s.db.Rebind("SELECT "+transactionColumns+" FROM transactions WHERE circle_id = ? AND event_id = ? AND id = ?"),
		circleID, eventID, id,
	)
	if err != nil {
		return nil, getErr(storage.TransactionPath(circleID, eventID, id), err)
	}
	return row.model(), nil
}

// ListTransactions returns an event's transactions, newest first.
func (s *Store) ListTransactions(ctx context.Context, circleID, eventID string) ([]*models.Transaction, error) {
	return s.listTransactions(ctx, s.db, circleID, eventID)
}

func (s *Store) listTransactions(ctx context.Context, q sqlx.QueryerContext, circleID, eventID string) ([]*models.Transaction, error) {
	var rows []transactionRow
	err := sqlx.SelectContext(ctx, q, &rows,
		s.db.Rebind("SELECT "+transactionColumns+" FROM transactions WHERE circle_id = ? AND event_id = ? ORDER BY created_at DESC, id DESC"),
		circleID, eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	txs := make([]*models.Transaction, len(rows))
	for i, r := range rows {
		txs[i] = r.model()
	}
	return txs, nil
}

// UpdateTransaction applies a partial update to an active event's transaction.
func (s *Store) UpdateTransaction(ctx context.Context, circleID, eventID, id string, patch models.TransactionPatch) (*models.Transaction, error) {
	var updated *models.Transaction
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.requireActive(ctx, tx, circleID, eventID); err != nil {
			return err
		}

		var sets []string
		var args []interface{}
		if patch.TotalAmount != nil {
			sets = append(sets, "total_amount = ?")
			args = append(args, *patch.TotalAmount)
		}
		if patch.Description != nil {
			sets = append(sets, "description = ?")
			args = append(args, *patch.Description)
		}
		if patch.Category != nil {
			sets = append(sets, "category = ?")
			args = append(args, string(*patch.Category))
		}

		if len(sets) > 0 {
			args = append(args, circleID, eventID, id)
			res, err := tx.ExecContext(ctx,
				s.db.Rebind("UPDATE transactions SET "+strings.Join(sets, ", ")+" WHERE circle_id = ? AND event_id = ? AND id = ?"),
				args...,
			)
			if err != nil {
				return fmt.Errorf("failed to update transaction: %w", err)
			}
			if err := requireRow(res, storage.TransactionPath(circleID, eventID, id)); err != nil {
				return err
			}
		}

		var err error
		updated, err = s.getTransaction(ctx, tx, circleID, eventID, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(storage.EventPath(circleID, eventID), storage.TransactionPath(circleID, eventID, id))
	return updated, nil
}

// MarkReimbursed flips a single transaction's reimbursement flag to true.
func (s *Store) MarkReimbursed(ctx context.Context, circleID, eventID, id string) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.requireActive(ctx, tx, circleID, eventID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			s.db.Rebind(`UPDATE transactions SET is_reimbursed = ?
			 WHERE circle_id = ? AND event_id = ? AND id = ? AND COALESCE(is_reimbursed, ?) = ?`),
			true, circleID, eventID, id, false, false,
		)
		if err != nil {
			return fmt.Errorf("failed to mark transaction reimbursed: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if n == 0 {
			// Either missing or already flipped.
			if _, err := s.getTransaction(ctx, tx, circleID, eventID, id); err != nil {
				return err
			}
			return fmt.Errorf("%s already reimbursed: %w", storage.TransactionPath(circleID, eventID, id), storage.ErrConflict)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.hub.Publish(storage.EventPath(circleID, eventID), storage.TransactionPath(circleID, eventID, id))
	return nil
}

// DeleteTransaction removes a transaction from an active event.
func (s *Store) DeleteTransaction(ctx context.Context, circleID, eventID, id string) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.requireActive(ctx, tx, circleID, eventID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			s.db.Rebind("DELETE FROM transactions WHERE circle_id = ? AND event_id = ? AND id = ?"),
			circleID, eventID, id,
		)
		if err != nil {
			return fmt.Errorf("failed to delete transaction: %w", err)
		}
		return requireRow(res, storage.TransactionPath(circleID, eventID, id))
	})
	if err != nil {
		return err
	}

	s.hub.Publish(storage.EventPath(circleID, eventID), storage.TransactionPath(circleID, eventID, id))
	return nil
}

// CommitSettlement applies a settlement batch atomically:
//  1. re-read the event's transactions and run the batch check
//  2. move the event from active to closed with its settlement record
//  3. flip every unreimbursed expense of the event
//  4. insert the general fund posts
func (s *Store) CommitSettlement(ctx context.Context, batch storage.SettlementBatch) error {
	key := storage.EventPath(batch.CircleID, batch.EventID)

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		event, err := s.getEvent(ctx, tx, batch.CircleID, batch.EventID, s.dialect.LockClause)
		if err != nil {
			return err
		}
		if event.IsClosed() {
			return fmt.Errorf("%s is not active: %w", key, storage.ErrConflict)
		}

		if batch.Check != nil {
			txs, err := s.listTransactions(ctx, tx, batch.CircleID, batch.EventID)
			if err != nil {
				return err
			}
			if err := batch.Check(txs); err != nil {
				return err
			}
		}

		res, err := tx.ExecContext(ctx,
			s.db.Rebind(`UPDATE events SET status = ?, settled_amount = ?, settlement_mode = ?, closed_at = ?
			 WHERE circle_id = ? AND id = ? AND status = ?`),
			string(models.EventClosed), batch.Settlement.Amount, string(batch.Settlement.Mode), batch.Settlement.ClosedAt,
			batch.CircleID, batch.EventID, string(models.EventActive),
		)
		if err != nil {
			return fmt.Errorf("failed to close event: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%s is not active: %w", key, storage.ErrConflict)
		}

		_, err = tx.ExecContext(ctx,
			s.db.Rebind(`UPDATE transactions SET is_reimbursed = ?
			 WHERE circle_id = ? AND event_id = ? AND type = ? AND COALESCE(is_reimbursed, ?) = ?`),
			true, batch.CircleID, batch.EventID, string(models.TypeExpense), false, false,
		)
		if err != nil {
			return fmt.Errorf("failed to flip reimbursements: %w", err)
		}

		for _, post := range batch.Posts {
			if err := s.insertTransaction(ctx, tx, post); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.hub.Publish(key, storage.EventPath(batch.CircleID, models.GeneralEventID))
	return nil
}
