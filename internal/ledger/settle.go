package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/circlewallet/internal/auth"
	"github.com/mmynk/circlewallet/internal/calculator"
	"github.com/mmynk/circlewallet/internal/models"
	"github.com/mmynk/circlewallet/internal/storage"
)

// SettlementResult is what a committed settlement changed.
type SettlementResult struct {
	Event *models.Event
	Plan  *calculator.Plan
	Mode  models.SettlementMode

	// Posts are the transactions written to the general fund.
	Posts []*models.Transaction
}

// loadForSettlement applies the settlement gate and lifecycle checks and
// computes the plan from the event's current snapshot.
func (l *Ledger) loadForSettlement(ctx context.Context, id auth.Identity, circleID, eventID string) (*models.Event, *calculator.Plan, error) {
	a, event, err := l.resolveEvent(ctx, id, circleID, eventID)
	if err != nil {
		return nil, nil, err
	}
	if err := Authorize(a.request(OpSettle, event.IsGeneral())); err != nil {
		return nil, nil, err
	}
	if event.IsGeneral() {
		return nil, nil, ErrGeneralFund
	}
	if err := CheckMutation(event.Status, MutClose); err != nil {
		return nil, nil, err
	}

	snap, err := l.loadSnapshot(ctx, event)
	if err != nil {
		return nil, nil, err
	}
	return event, calculator.CalculateSettlement(snap.txs, snap.members, snap.guests), nil
}

// PreviewSettlement computes the settlement plan without changing anything. Admin only.
func (l *Ledger) PreviewSettlement(ctx context.Context, id auth.Identity, circleID, eventID string) (*calculator.Plan, error) {
	_, plan, err := l.loadForSettlement(ctx, id, circleID, eventID)
	return plan, err
}

// staleCheck fails a commit batch if the snapshot no longer matches fingerprint.
func staleCheck(fingerprint string) func([]*models.Transaction) error {
	return func(txs []*models.Transaction) error {
		if calculator.Fingerprint(txs) != fingerprint {
			return ErrStalePlan
		}
		return nil
	}
}

// CommitSettlement closes the event with a settlement in the given mode. Admin only.
//
// fingerprint identifies the plan the admin confirmed; a non-empty value that
// does not match the current snapshot fails with ErrStalePlan. The same check
// runs again inside the store batch, so writes landing between this read and
// the commit also abort it.
func (l *Ledger) CommitSettlement(ctx context.Context, id auth.Identity, circleID, eventID string, mode models.SettlementMode, fingerprint string) (*SettlementResult, error) {
	if !mode.Valid() {
		return nil, invalid("mode", fmt.Sprintf("unknown settlement mode %q", mode))
	}

	event, plan, err := l.loadForSettlement(ctx, id, circleID, eventID)
	if err != nil {
		return nil, err
	}
	if err := Transition(event.Status, models.EventClosed); err != nil {
		return nil, err
	}
	if plan.Empty() {
		return nil, ErrNothingToSettle
	}
	if fingerprint != "" && fingerprint != plan.Fingerprint {
		return nil, ErrStalePlan
	}

	now := l.now().Unix()
	posts := settlementPosts(id, event, plan.GeneralFundPosts(mode), now)

	batch := storage.SettlementBatch{
		CircleID:   circleID,
		EventID:    eventID,
		Settlement: models.Settlement{Amount: plan.Surplus, Mode: mode, ClosedAt: now},
		Posts:      posts,
		Check:      staleCheck(plan.Fingerprint),
	}
	if err := l.commit(ctx, batch); err != nil {
		return nil, err
	}

	closed, err := l.store.GetEvent(ctx, circleID, eventID)
	if err != nil {
		return nil, translate(err)
	}
	l.observer.SettlementCommitted(closed, plan)
	for _, p := range posts {
		l.observer.TransactionRecorded(p)
	}

	slog.Info("settlement committed",
		"path", storage.EventPath(circleID, eventID),
		"mode", mode,
		"surplus", plan.Surplus,
		"paid_count", plan.PaidCount,
		"per_person_share", plan.PerPersonShare,
		"remainder", plan.Remainder,
		"posts", len(posts),
		"user_id", id.ID,
	)
	return &SettlementResult{Event: closed, Plan: plan, Mode: mode, Posts: posts}, nil
}

// CloseEvent closes an event that has nobody to settle with. Admin only.
//
// A zero balance closes in distribute mode and posts nothing. A non-zero
// balance, e.g. admin spend with no dues collected, is carried over to the
// general fund.
func (l *Ledger) CloseEvent(ctx context.Context, id auth.Identity, circleID, eventID string) (*models.Event, error) {
	event, plan, err := l.loadForSettlement(ctx, id, circleID, eventID)
	if err != nil {
		return nil, err
	}
	if err := Transition(event.Status, models.EventClosed); err != nil {
		return nil, err
	}
	if !plan.Empty() {
		return nil, ErrSettlementRequired
	}

	now := l.now().Unix()
	mode := models.SettleDistribute
	var posts []*models.Transaction
	if plan.Surplus != 0 {
		mode = models.SettleCarryover
		posts = settlementPosts(id, event, plan.GeneralFundPosts(mode), now)
	}

	batch := storage.SettlementBatch{
		CircleID:   circleID,
		EventID:    eventID,
		Settlement: models.Settlement{Amount: plan.Surplus, Mode: mode, ClosedAt: now},
		Posts:      posts,
		Check:      staleCheck(plan.Fingerprint),
	}
	if err := l.commit(ctx, batch); err != nil {
		return nil, err
	}

	closed, err := l.store.GetEvent(ctx, circleID, eventID)
	if err != nil {
		return nil, translate(err)
	}
	for _, p := range posts {
		l.observer.TransactionRecorded(p)
	}

	slog.Info("event closed",
		"path", storage.EventPath(circleID, eventID),
		"surplus", plan.Surplus,
		"mode", mode,
		"posts", len(posts),
		"user_id", id.ID,
	)
	return closed, nil
}

// settlementPosts builds the general fund transactions for a closing event.
func settlementPosts(id auth.Identity, event *models.Event, entries []calculator.Post, now int64) []*models.Transaction {
	var posts []*models.Transaction
	for _, p := range entries {
		posts = append(posts, &models.Transaction{
			ID:          models.NewTransactionID(),
			CircleID:    event.CircleID,
			EventID:     models.GeneralEventID,
			UserID:      id.ID,
			UserName:    SystemUserName,
			Type:        p.Type,
			Description: fmt.Sprintf("Settlement of %q", event.Title),
			CreatedAt:   now,
			Summary: &models.Summary{
				TotalAmount: p.Amount,
				Category:    models.CategoryOther,
			},
		})
	}
	return posts
}

// commit runs a settlement batch and maps a lost close race to ErrAlreadyClosed.
func (l *Ledger) commit(ctx context.Context, batch storage.SettlementBatch) error {
	err := l.store.CommitSettlement(ctx, batch)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrConflict):
		return fmt.Errorf("%w: %w", ErrAlreadyClosed, err)
	default:
		return translate(err)
	}
}
