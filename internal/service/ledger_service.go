package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/circlewallet/internal/ledger"
	"github.com/mmynk/circlewallet/internal/models"
	"github.com/mmynk/circlewallet/internal/storage"
	"github.com/mmynk/circlewallet/pkg/api"
	"github.com/mmynk/circlewallet/pkg/api/apiconnect"
)

// LedgerService implements the Connect LedgerService
type LedgerService struct {
	apiconnect.UnimplementedLedgerServiceHandler
	ledger *ledger.Ledger
}

// NewLedgerService creates a new LedgerService on top of the ledger.
func NewLedgerService(l *ledger.Ledger) *LedgerService {
	return &LedgerService{ledger: l}
}

// RecordTransaction records dues, an expense or a general fund entry.
func (s *LedgerService) RecordTransaction(ctx context.Context, req *connect.Request[api.RecordTransactionRequest]) (*connect.Response[api.RecordTransactionResponse], error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RecordTransaction request received",
		"path", storage.EventPath(req.Msg.CircleID, req.Msg.EventID),
		"type", req.Msg.Type,
		"amount", req.Msg.Amount,
	)

	t, err := s.ledger.RecordTransaction(ctx, id, ledger.RecordInput{
		CircleID:    req.Msg.CircleID,
		EventID:     req.Msg.EventID,
		Type:        models.TransactionType(req.Msg.Type),
		Amount:      req.Msg.Amount,
		Description: req.Msg.Description,
		Category:    req.Msg.Category,
		UserID:      req.Msg.UserID,
	})
	if err != nil {
		return nil, fail("RecordTransaction", err, "path", storage.EventPath(req.Msg.CircleID, req.Msg.EventID))
	}

	return connect.NewResponse(&api.RecordTransactionResponse{Transaction: toAPITransaction(t)}), nil
}

// UpdateTransaction applies a partial update to a transaction.
func (s *LedgerService) UpdateTransaction(ctx context.Context, req *connect.Request[api.UpdateTransactionRequest]) (*connect.Response[api.UpdateTransactionResponse], error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	path := storage.TransactionPath(req.Msg.CircleID, req.Msg.EventID, req.Msg.TransactionID)
	slog.Info("UpdateTransaction request received", "path", path)

	patch := models.TransactionPatch{
		TotalAmount: req.Msg.Amount,
		Description: req.Msg.Description,
	}
	if req.Msg.Category != nil {
		c := models.Category(*req.Msg.Category)
		patch.Category = &c
	}

	t, err := s.ledger.UpdateTransaction(ctx, id, req.Msg.CircleID, req.Msg.EventID, req.Msg.TransactionID, patch)
	if err != nil {
		return nil, fail("UpdateTransaction", err, "path", path)
	}

	return connect.NewResponse(&api.UpdateTransactionResponse{Transaction: toAPITransaction(t)}), nil
}

// DeleteTransaction removes a transaction.
func (s *LedgerService) DeleteTransaction(ctx context.Context, req *connect.Request[api.DeleteTransactionRequest]) (*connect.Response[api.DeleteTransactionResponse], error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	path := storage.TransactionPath(req.Msg.CircleID, req.Msg.EventID, req.Msg.TransactionID)
	slog.Info("DeleteTransaction request received", "path", path)

	if err := s.ledger.DeleteTransaction(ctx, id, req.Msg.CircleID, req.Msg.EventID, req.Msg.TransactionID); err != nil {
		return nil, fail("DeleteTransaction", err, "path", path)
	}

	return connect.NewResponse(&api.DeleteTransactionResponse{}), nil
}

// TogglePayment records or undoes a dues payment.
func (s *LedgerService) TogglePayment(ctx context.Context, req *connect.Request[api.TogglePaymentRequest]) (*connect.Response[api.TogglePaymentResponse], error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("TogglePayment request received",
		"path", storage.EventPath(req.Msg.CircleID, req.Msg.EventID),
		"target_user_id", req.Msg.UserID,
	)

	t, paid, err := s.ledger.TogglePayment(ctx, id, req.Msg.CircleID, req.Msg.EventID, req.Msg.UserID)
	if err != nil {
		return nil, fail("TogglePayment", err, "path", storage.EventPath(req.Msg.CircleID, req.Msg.EventID))
	}

	return connect.NewResponse(&api.TogglePaymentResponse{
		Transaction: toAPITransaction(t),
		Paid:        paid,
	}), nil
}

// MarkReimbursed flips one expense to reimbursed.
func (s *LedgerService) MarkReimbursed(ctx context.Context, req *connect.Request[api.MarkReimbursedRequest]) (*connect.Response[api.MarkReimbursedResponse], error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	path := storage.TransactionPath(req.Msg.CircleID, req.Msg.EventID, req.Msg.TransactionID)
	slog.Info("MarkReimbursed request received", "path", path)

	if err := s.ledger.MarkReimbursed(ctx, id, req.Msg.CircleID, req.Msg.EventID, req.Msg.TransactionID); err != nil {
		return nil, fail("MarkReimbursed", err, "path", path)
	}

	return connect.NewResponse(&api.MarkReimbursedResponse{}), nil
}

// GetEventSummary recomputes an event's stats, dues list and pending reimbursements.
func (s *LedgerService) GetEventSummary(ctx context.Context, req *connect.Request[api.GetEventSummaryRequest]) (*connect.Response[api.GetEventSummaryResponse], error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetEventSummary request received", "path", storage.EventPath(req.Msg.CircleID, req.Msg.EventID))

	view, err := s.ledger.EventSummary(ctx, id, req.Msg.CircleID, req.Msg.EventID)
	if err != nil {
		return nil, fail("GetEventSummary", err, "path", storage.EventPath(req.Msg.CircleID, req.Msg.EventID))
	}

	slog.Info("GetEventSummary successful",
		"path", storage.EventPath(req.Msg.CircleID, req.Msg.EventID),
		"balance", view.Stats.Balance,
		"transactions", len(view.Transactions),
	)
	return connect.NewResponse(&api.GetEventSummaryResponse{Summary: toAPISummary(view)}), nil
}

// PreviewSettlement computes the settlement plan without changing anything.
func (s *LedgerService) PreviewSettlement(ctx context.Context, req *connect.Request[api.PreviewSettlementRequest]) (*connect.Response[api.PreviewSettlementResponse], error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("PreviewSettlement request received", "path", storage.EventPath(req.Msg.CircleID, req.Msg.EventID))

	plan, err := s.ledger.PreviewSettlement(ctx, id, req.Msg.CircleID, req.Msg.EventID)
	if err != nil {
		return nil, fail("PreviewSettlement", err, "path", storage.EventPath(req.Msg.CircleID, req.Msg.EventID))
	}

	return connect.NewResponse(&api.PreviewSettlementResponse{Plan: toAPIPlan(plan)}), nil
}

// CommitSettlement closes an event with a settlement.
func (s *LedgerService) CommitSettlement(ctx context.Context, req *connect.Request[api.CommitSettlementRequest]) (*connect.Response[api.CommitSettlementResponse], error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CommitSettlement request received",
		"path", storage.EventPath(req.Msg.CircleID, req.Msg.EventID),
		"mode", req.Msg.Mode,
	)

	res, err := s.ledger.CommitSettlement(ctx, id, req.Msg.CircleID, req.Msg.EventID, models.SettlementMode(req.Msg.Mode), req.Msg.Fingerprint)
	if err != nil {
		return nil, fail("CommitSettlement", err, "path", storage.EventPath(req.Msg.CircleID, req.Msg.EventID))
	}

	return connect.NewResponse(&api.CommitSettlementResponse{
		Event: toAPIEvent(res.Event),
		Plan:  toAPIPlan(res.Plan),
		Posts: toAPITransactions(res.Posts),
	}), nil
}

// CloseEvent closes an event that has nobody to settle with.
func (s *LedgerService) CloseEvent(ctx context.Context, req *connect.Request[api.CloseEventRequest]) (*connect.Response[api.CloseEventResponse], error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CloseEvent request received", "path", storage.EventPath(req.Msg.CircleID, req.Msg.EventID))

	event, err := s.ledger.CloseEvent(ctx, id, req.Msg.CircleID, req.Msg.EventID)
	if err != nil {
		return nil, fail("CloseEvent", err, "path", storage.EventPath(req.Msg.CircleID, req.Msg.EventID))
	}

	return connect.NewResponse(&api.CloseEventResponse{Event: toAPIEvent(event)}), nil
}

// WatchEvent streams the event summary, once immediately and again after
// every change, until the client goes away.
func (s *LedgerService) WatchEvent(ctx context.Context, req *connect.Request[api.WatchEventRequest], stream *connect.ServerStream[api.WatchEventResponse]) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	path := storage.EventPath(req.Msg.CircleID, req.Msg.EventID)
	slog.Info("WatchEvent request received", "path", path, "user_id", id.ID)

	views, err := s.ledger.Watch(ctx, id, req.Msg.CircleID, req.Msg.EventID)
	if err != nil {
		return fail("WatchEvent", err, "path", path)
	}

	sent := 0
	for view := range views {
		if err := stream.Send(&api.WatchEventResponse{Summary: toAPISummary(view)}); err != nil {
			slog.Debug("WatchEvent client gone", "path", path, "error", err)
			return nil
		}
		sent++
	}

	slog.Info("WatchEvent ended", "path", path, "updates", sent)
	return ctx.Err()
}
