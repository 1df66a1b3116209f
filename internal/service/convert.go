package service

import (
	"github.com/mmynk/circlewallet/internal/auth"
	"github.com/mmynk/circlewallet/internal/calculator"
	"github.com/mmynk/circlewallet/internal/ledger"
	"github.com/mmynk/circlewallet/internal/models"
	"github.com/mmynk/circlewallet/pkg/api"
)

func toAPIIdentity(id auth.Identity) *api.Identity {
	return &api.Identity{ID: id.ID, DisplayName: id.DisplayName, Ephemeral: id.Ephemeral}
}

func toAPICircle(c *models.Circle) *api.Circle {
	return &api.Circle{ID: c.ID, Name: c.Name, CreatedBy: c.CreatedBy, CreatedAt: c.CreatedAt}
}

func toAPIMember(m *models.Member) *api.Member {
	return &api.Member{UserID: m.UserID, DisplayName: m.DisplayName, Role: string(m.Role), JoinedAt: m.JoinedAt}
}

func toAPIEvent(e *models.Event) *api.Event {
	out := &api.Event{
		ID:           e.ID,
		CircleID:     e.CircleID,
		Title:        e.Title,
		FeePerPerson: e.FeePerPerson,
		Status:       string(e.Status),
		IsGeneral:    e.IsGeneral(),
		CreatedAt:    e.CreatedAt,
	}
	if e.Settlement != nil {
		out.Settlement = &api.Settlement{
			Amount:   e.Settlement.Amount,
			Mode:     string(e.Settlement.Mode),
			ClosedAt: e.Settlement.ClosedAt,
		}
	}
	return out
}

func toAPIEvents(events []*models.Event) []*api.Event {
	out := make([]*api.Event, len(events))
	for i, e := range events {
		out[i] = toAPIEvent(e)
	}
	return out
}

func toAPIParticipant(p *models.Participant) *api.Participant {
	return &api.Participant{
		ID:          p.ID,
		EventID:     p.EventID,
		DisplayName: p.DisplayName,
		Paid:        p.Paid,
		CreatedAt:   p.CreatedAt,
	}
}

func toAPITransaction(t *models.Transaction) *api.Transaction {
	out := &api.Transaction{
		ID:          t.ID,
		CircleID:    t.CircleID,
		EventID:     t.EventID,
		UserID:      t.UserID,
		UserName:    t.UserName,
		Type:        string(t.Type),
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
	if t.Summary != nil {
		out.Summary = &api.Summary{
			TotalAmount:  t.Summary.TotalAmount,
			Category:     string(t.Summary.Category),
			IsReimbursed: t.Summary.IsReimbursed,
		}
	}
	return out
}

func toAPITransactions(txs []*models.Transaction) []*api.Transaction {
	out := make([]*api.Transaction, len(txs))
	for i, t := range txs {
		out[i] = toAPITransaction(t)
	}
	return out
}

func toAPISummary(v *ledger.EventView) *api.EventSummary {
	payments := make([]api.PaymentStatus, len(v.Payments))
	for i, p := range v.Payments {
		payments[i] = api.PaymentStatus{
			ID:            p.ID,
			DisplayName:   p.DisplayName,
			Guest:         p.Guest,
			Role:          string(p.Role),
			Paid:          p.Paid,
			PreMarked:     p.PreMarked,
			Amount:        p.Amount,
			TransactionID: p.TransactionID,
		}
	}
	return &api.EventSummary{
		Event: toAPIEvent(v.Event),
		Role:  string(v.Role),
		Stats: api.Stats{
			Income:  v.Stats.Income,
			Expense: v.Stats.Expense,
			Balance: v.Stats.Balance,
		},
		Payments:     payments,
		Unreimbursed: toAPITransactions(v.Unreimbursed),
		History:      toAPITransactions(v.History),
		Transactions: toAPITransactions(v.Transactions),
	}
}

func toAPIPlan(p *calculator.Plan) *api.SettlementPlan {
	entries := make([]api.SettlementEntry, len(p.Entries))
	for i, e := range p.Entries {
		entries[i] = api.SettlementEntry{
			ID:            e.ID,
			DisplayName:   e.DisplayName,
			Guest:         e.Guest,
			Reimbursement: e.Reimbursement,
			Distribution:  e.Distribution,
			TotalTransfer: e.TotalTransfer,
		}
	}
	return &api.SettlementPlan{
		Income:             p.Income,
		Expense:            p.Expense,
		Surplus:            p.Surplus,
		PaidCount:          p.PaidCount,
		PerPersonShare:     p.PerPersonShare,
		Remainder:          p.Remainder,
		TotalReimbursement: p.TotalReimbursement(),
		TotalDistribution:  p.TotalDistribution(),
		Entries:            entries,
		Fingerprint:        p.Fingerprint,
	}
}
