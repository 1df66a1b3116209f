package calculator

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/mmynk/circlewallet/internal/models"
)

// SettlementEntry is one person's line in a settlement plan.
type SettlementEntry struct {
	ID          string
	DisplayName string
	Guest       bool

	// Reimbursement is the sum of this person's unreimbursed expenses.
	Reimbursement int64

	// Distribution is the per-person share for payers, 0 for everyone else.
	// Negative when the event ran a deficit (a levy).
	Distribution int64

	// TotalTransfer = Reimbursement + Distribution.
	// Positive: the organizer pays out. Negative: this person pays in.
	TotalTransfer int64
}

// Plan is a policy-neutral settlement proposal. Computing it never mutates state.
type Plan struct {
	Income  int64
	Expense int64
	Surplus int64 // Income - Expense

	// PaidCount is the number of distinct collection authors.
	PaidCount int

	// PerPersonShare is floor(Surplus / PaidCount), or 0 without payers.
	PerPersonShare int64

	// Remainder is what the floor division leaves undistributed: 0 <= Remainder < PaidCount.
	Remainder int64

	// Entries is sorted by TotalTransfer descending, ties by ID ascending.
	Entries []SettlementEntry

	// Fingerprint identifies the transaction snapshot the plan was computed from.
	Fingerprint string
}

// Post is a general fund entry produced by a settlement.
type Post struct {
	Type   models.TransactionType
	Amount int64
}

// CalculateSettlement computes the settlement plan for an event snapshot.
//
// Algorithm:
// - paidSet: authors of a collection; creditorSet: authors of an unreimbursed expense
// - every identity in paidSet ∪ creditorSet gets one entry
// - share = floor(surplus / |paidSet|), applied only to paidSet
// - reimbursement = sum of that identity's unreimbursed expenses
func CalculateSettlement(txs []*models.Transaction, members []*models.Member, guests []*models.Participant) *Plan {
	stats := Summarize(txs)

	names := make(map[string]string)
	isGuest := make(map[string]bool)
	for _, m := range members {
		names[m.UserID] = m.DisplayName
	}
	for _, g := range guests {
		if _, member := names[g.ID]; member {
			continue
		}
		names[g.ID] = g.DisplayName
		isGuest[g.ID] = true
	}

	paid := make(map[string]bool)
	reimbursements := make(map[string]int64)
	creditors := make(map[string]bool)
	for _, t := range txs {
		if _, known := names[t.UserID]; !known {
			names[t.UserID] = t.UserName
		}
		switch {
		case t.Type == models.TypeCollection:
			paid[t.UserID] = true
		case t.IsPendingReimbursement():
			creditors[t.UserID] = true
			reimbursements[t.UserID] += Amount(t)
		}
	}

	plan := &Plan{
		Income:      stats.Income,
		Expense:     stats.Expense,
		Surplus:     stats.Balance,
		PaidCount:   len(paid),
		Fingerprint: Fingerprint(txs),
	}
	if plan.PaidCount > 0 {
		n := int64(plan.PaidCount)
		plan.PerPersonShare = floorDiv(plan.Surplus, n)
		plan.Remainder = plan.Surplus - plan.PerPersonShare*n
	}

	targets := make(map[string]bool, len(paid)+len(creditors))
	for id := range paid {
		targets[id] = true
	}
	for id := range creditors {
		targets[id] = true
	}

	plan.Entries = make([]SettlementEntry, 0, len(targets))
	for id := range targets {
		e := SettlementEntry{
			ID:            id,
			DisplayName:   names[id],
			Guest:         isGuest[id],
			Reimbursement: reimbursements[id],
		}
		if paid[id] {
			e.Distribution = plan.PerPersonShare
		}
		e.TotalTransfer = e.Reimbursement + e.Distribution
		plan.Entries = append(plan.Entries, e)
	}

	sort.SliceStable(plan.Entries, func(i, j int) bool {
		a, b := plan.Entries[i], plan.Entries[j]
		if a.TotalTransfer != b.TotalTransfer {
			return a.TotalTransfer > b.TotalTransfer
		}
		return a.ID < b.ID
	})

	return plan
}

// Empty reports whether nobody needs to be settled with.
func (p *Plan) Empty() bool {
	return len(p.Entries) == 0
}

// TotalReimbursement is the sum of all reimbursement payouts in the plan.
func (p *Plan) TotalReimbursement() int64 {
	var sum int64
	for _, e := range p.Entries {
		sum += e.Reimbursement
	}
	return sum
}

// TotalDistribution is the sum of all distribution lines in the plan.
func (p *Plan) TotalDistribution() int64 {
	var sum int64
	for _, e := range p.Entries {
		sum += e.Distribution
	}
	return sum
}

// GeneralFundPosts returns the entries a commit in the given mode posts to the general fund.
//
// carryover moves the whole surplus (general_income) or deficit (general_expense).
// distribute only parks the floor-division remainder, always as income.
func (p *Plan) GeneralFundPosts(mode models.SettlementMode) []Post {
	switch mode {
	case models.SettleCarryover:
		if p.Surplus >= 0 {
			return []Post{{Type: models.TypeGeneralIncome, Amount: p.Surplus}}
		}
		return []Post{{Type: models.TypeGeneralExpense, Amount: -p.Surplus}}
	case models.SettleDistribute:
		if p.Remainder > 0 {
			return []Post{{Type: models.TypeGeneralIncome, Amount: p.Remainder}}
		}
	}
	return nil
}

// Fingerprint hashes the parts of a snapshot a settlement depends on.
// Two snapshots with the same fingerprint produce the same plan.
func Fingerprint(txs []*models.Transaction) string {
	sorted := make([]*models.Transaction, len(txs))
	copy(sorted, txs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	d := xxhash.New()
	for _, t := range sorted {
		var amount int64
		reimbursed := false
		if t.Summary != nil {
			amount = t.Summary.TotalAmount
			reimbursed = t.Summary.IsReimbursed
		}
		d.WriteString(t.ID)
		d.WriteString("|")
		d.WriteString(t.UserID)
		d.WriteString("|")
		d.WriteString(string(t.Type))
		d.WriteString("|")
		d.WriteString(strconv.FormatInt(amount, 10))
		d.WriteString("|")
		d.WriteString(strconv.FormatBool(reimbursed))
		d.WriteString("\n")
	}
	return fmt.Sprintf("%016x", d.Sum64())
}

// floorDiv divides rounding towards negative infinity.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
