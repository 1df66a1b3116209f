package calculator

import (
	"log/slog"

	"github.com/mmynk/circlewallet/internal/models"
)

// Stats is the financial summary of one event.
type Stats struct {
	Income  int64
	Expense int64
	Balance int64 // Income - Expense; negative when the event ran a deficit
}

// PaymentStatus is one row of an event's dues list.
type PaymentStatus struct {
	ID          string
	DisplayName string
	Guest       bool
	Role        models.Role // empty for guests

	// Paid is true iff a collection authored by ID exists in the event.
	Paid bool

	// PreMarked mirrors the guest's pre-marked flag; never set for members.
	PreMarked bool

	// Amount and TransactionID describe the matched collection, if any.
	Amount        int64
	TransactionID string
}

// Amount returns the transaction's total, treating a missing summary as zero.
// A missing summary means the stored document has the wrong shape, so it is logged.
func Amount(t *models.Transaction) int64 {
	if t.Summary == nil {
		slog.Warn("transaction summary missing, counting as zero",
			"transaction_id", t.ID,
			"event_id", t.EventID,
			"type", t.Type,
		)
		return 0
	}
	return t.Summary.TotalAmount
}

// Summarize computes income, expense and balance for a transaction snapshot.
//
// Algorithm:
// - collection, general_income count as income
// - expense, admin_expense, general_expense count as expense
// - balance = income - expense
//
// The result is a pure function of txs; nothing is carried between calls.
func Summarize(txs []*models.Transaction) Stats {
	var s Stats
	for _, t := range txs {
		switch t.Type.Class() {
		case models.ClassIncome:
			s.Income += Amount(t)
		case models.ClassExpense:
			s.Expense += Amount(t)
		}
	}
	s.Balance = s.Income - s.Expense
	return s
}

// collectionsByUser indexes the first collection per author, preserving snapshot order.
func collectionsByUser(txs []*models.Transaction) map[string]*models.Transaction {
	paid := make(map[string]*models.Transaction)
	for _, t := range txs {
		if t.Type != models.TypeCollection {
			continue
		}
		if _, exists := paid[t.UserID]; !exists {
			paid[t.UserID] = t
		}
	}
	return paid
}

// PaymentStatuses lists every member and then every guest with their dues status.
// Members come first in roster order, then guests in roster order. A guest
// who is also on the member roster is listed only as a member.
func PaymentStatuses(members []*models.Member, guests []*models.Participant, txs []*models.Transaction) []PaymentStatus {
	paid := collectionsByUser(txs)
	list := make([]PaymentStatus, 0, len(members)+len(guests))

	isMember := make(map[string]bool, len(members))
	for _, m := range members {
		isMember[m.UserID] = true
		row := PaymentStatus{ID: m.UserID, DisplayName: m.DisplayName, Role: m.Role}
		if t, ok := paid[m.UserID]; ok {
			row.Paid = true
			row.Amount = Amount(t)
			row.TransactionID = t.ID
		}
		list = append(list, row)
	}

	for _, g := range guests {
		// a guest who later joined the circle is listed once, as a member
		if isMember[g.ID] {
			continue
		}
		row := PaymentStatus{ID: g.ID, DisplayName: g.DisplayName, Guest: true, PreMarked: g.Paid}
		if t, ok := paid[g.ID]; ok {
			row.Paid = true
			row.Amount = Amount(t)
			row.TransactionID = t.ID
		}
		list = append(list, row)
	}

	return list
}

// Unreimbursed returns the pending reimbursement queue: expenses not yet reimbursed.
func Unreimbursed(txs []*models.Transaction) []*models.Transaction {
	var pending []*models.Transaction
	for _, t := range txs {
		if t.IsPendingReimbursement() {
			pending = append(pending, t)
		}
	}
	return pending
}

// ExpenseHistory returns every expense-side entry, reimbursed or not.
func ExpenseHistory(txs []*models.Transaction) []*models.Transaction {
	var out []*models.Transaction
	for _, t := range txs {
		if t.Type.Class() == models.ClassExpense {
			out = append(out, t)
		}
	}
	return out
}
