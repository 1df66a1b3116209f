package calculator

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/mmynk/circlewallet/internal/models"
)

func TestCalculateSettlement(t *testing.T) {
	members := []*models.Member{
		{UserID: "A", DisplayName: "Alice", Role: models.RoleAdmin},
		{UserID: "B", DisplayName: "Bob", Role: models.RoleMember},
	}

	tests := []struct {
		name         string
		txs          []*models.Transaction
		guests       []*models.Participant
		validateFunc func(t *testing.T, plan *Plan)
	}{
		{
			name: "guest who joined the circle settles as a member",
			txs: []*models.Transaction{
				tx("t1", "B", models.TypeCollection, 1000),
			},
			guests: []*models.Participant{{ID: "B", DisplayName: "Bobby"}},
			validateFunc: func(t *testing.T, plan *Plan) {
				if len(plan.Entries) != 1 {
					t.Fatalf("expected 1 entry, got %d", len(plan.Entries))
				}
				b := plan.Entries[0]
				if b.Guest || b.DisplayName != "Bob" {
					t.Errorf("expected member entry for Bob, got %+v", b)
				}
			},
		},
		{
			name: "payer with own expense",
			txs: []*models.Transaction{
				tx("t1", "A", models.TypeCollection, 1000),
				tx("t2", "A", models.TypeExpense, 400),
			},
			validateFunc: func(t *testing.T, plan *Plan) {
				// surplus = 1000 - 400 = 600, one payer -> share 600
				if plan.Surplus != 600 || plan.PerPersonShare != 600 || plan.PaidCount != 1 {
					t.Errorf("got surplus=%d share=%d paid=%d, want 600/600/1", plan.Surplus, plan.PerPersonShare, plan.PaidCount)
				}
				if len(plan.Entries) != 1 {
					t.Fatalf("expected 1 entry, got %d", len(plan.Entries))
				}
				a := plan.Entries[0]
				if a.ID != "A" || a.DisplayName != "Alice" {
					t.Errorf("unexpected entry %+v", a)
				}
				if a.Reimbursement != 400 || a.Distribution != 600 || a.TotalTransfer != 1000 {
					t.Errorf("Alice: got %d/%d/%d, want 400/600/1000", a.Reimbursement, a.Distribution, a.TotalTransfer)
				}
			},
		},
		{
			name: "guest-only contributor",
			guests: []*models.Participant{
				{ID: "G", DisplayName: "Gina"},
			},
			txs: []*models.Transaction{
				tx("t1", "G", models.TypeCollection, 500),
			},
			validateFunc: func(t *testing.T, plan *Plan) {
				if len(plan.Entries) != 1 || plan.Entries[0].ID != "G" {
					t.Fatalf("expected only G, got %+v", plan.Entries)
				}
				g := plan.Entries[0]
				if !g.Guest || g.Distribution != 500 {
					t.Errorf("Gina: got %+v, want guest with distribution 500", g)
				}
			},
		},
		{
			name: "deficit levies payers",
			txs: []*models.Transaction{
				tx("t1", "A", models.TypeCollection, 500),
				tx("t2", "B", models.TypeExpense, 800),
			},
			validateFunc: func(t *testing.T, plan *Plan) {
				if plan.Surplus != -300 || plan.PerPersonShare != -300 {
					t.Errorf("got surplus=%d share=%d, want -300/-300", plan.Surplus, plan.PerPersonShare)
				}
				if len(plan.Entries) != 2 {
					t.Fatalf("expected 2 entries, got %d", len(plan.Entries))
				}
				// Largest payout first: Bob is owed 800, Alice pays in 300.
				if plan.Entries[0].ID != "B" || plan.Entries[0].TotalTransfer != 800 || plan.Entries[0].Distribution != 0 {
					t.Errorf("first entry: %+v", plan.Entries[0])
				}
				if plan.Entries[1].ID != "A" || plan.Entries[1].TotalTransfer != -300 {
					t.Errorf("second entry: %+v", plan.Entries[1])
				}
			},
		},
		{
			name: "creditor without payers",
			txs: []*models.Transaction{
				tx("t1", "B", models.TypeExpense, 300),
			},
			validateFunc: func(t *testing.T, plan *Plan) {
				if plan.PaidCount != 0 || plan.PerPersonShare != 0 || plan.Remainder != 0 {
					t.Errorf("got paid=%d share=%d remainder=%d, want zeros", plan.PaidCount, plan.PerPersonShare, plan.Remainder)
				}
				if len(plan.Entries) != 1 || plan.Entries[0].TotalTransfer != 300 {
					t.Errorf("expected Bob reimbursed 300, got %+v", plan.Entries)
				}
			},
		},
		{
			name: "reimbursed expenses are not claims",
			txs: []*models.Transaction{
				tx("t1", "A", models.TypeCollection, 1000),
				reimbursed(tx("t2", "B", models.TypeExpense, 300)),
				reimbursed(tx("t3", "A", models.TypeAdminExpense, 200)),
			},
			validateFunc: func(t *testing.T, plan *Plan) {
				if len(plan.Entries) != 1 || plan.Entries[0].ID != "A" {
					t.Fatalf("expected only A, got %+v", plan.Entries)
				}
				if plan.Entries[0].Reimbursement != 0 || plan.Entries[0].Distribution != 500 {
					t.Errorf("A: got %+v", plan.Entries[0])
				}
			},
		},
		{
			name: "remainder from floor division",
			txs: []*models.Transaction{
				tx("t1", "A", models.TypeCollection, 500),
				tx("t2", "B", models.TypeCollection, 500),
				tx("t3", "C", models.TypeCollection, 500),
				tx("t4", "A", models.TypeExpense, 499),
			},
			validateFunc: func(t *testing.T, plan *Plan) {
				// surplus 1001 over 3 payers -> 333 each, 2 left over
				if plan.PerPersonShare != 333 || plan.Remainder != 2 {
					t.Errorf("got share=%d remainder=%d, want 333/2", plan.PerPersonShare, plan.Remainder)
				}
				// B and C tie at 333 and are ordered by ID after A.
				want := []string{"A", "B", "C"}
				for i, id := range want {
					if plan.Entries[i].ID != id {
						t.Errorf("entry %d: got %s, want %s", i, plan.Entries[i].ID, id)
					}
				}
			},
		},
		{
			name: "nothing to settle",
			txs: []*models.Transaction{
				reimbursed(tx("t1", "A", models.TypeAdminExpense, 200)),
			},
			validateFunc: func(t *testing.T, plan *Plan) {
				if !plan.Empty() {
					t.Errorf("expected empty plan, got %+v", plan.Entries)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := CalculateSettlement(tt.txs, members, tt.guests)
			tt.validateFunc(t, plan)
		})
	}
}

func TestCalculateSettlement_Conservation(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	for round := 0; round < 300; round++ {
		var txs []*models.Transaction
		payers := rng.Intn(6) + 1
		for i := 0; i < payers; i++ {
			txs = append(txs, tx(fmt.Sprintf("c%d", i), fmt.Sprintf("p%d", i), models.TypeCollection, rng.Int63n(3000)))
		}
		for i := 0; i < rng.Intn(6); i++ {
			txs = append(txs, tx(fmt.Sprintf("e%d", i), fmt.Sprintf("p%d", rng.Intn(8)), models.TypeExpense, rng.Int63n(5000)))
		}

		plan := CalculateSettlement(txs, nil, nil)

		if plan.Remainder < 0 || plan.Remainder > int64(plan.PaidCount-1) {
			t.Fatalf("round %d: remainder %d out of [0, %d]", round, plan.Remainder, plan.PaidCount-1)
		}
		if got := plan.TotalDistribution() + plan.Remainder; got != plan.Surplus {
			t.Fatalf("round %d: distribution %d + remainder %d != surplus %d",
				round, plan.TotalDistribution(), plan.Remainder, plan.Surplus)
		}
		if got := plan.TotalReimbursement(); got != Summarize(Unreimbursed(txs)).Expense {
			t.Fatalf("round %d: reimbursement %d does not match pending queue", round, got)
		}

		for i := 1; i < len(plan.Entries); i++ {
			prev, cur := plan.Entries[i-1], plan.Entries[i]
			if prev.TotalTransfer < cur.TotalTransfer ||
				(prev.TotalTransfer == cur.TotalTransfer && prev.ID > cur.ID) {
				t.Fatalf("round %d: entries out of order at %d", round, i)
			}
		}
	}
}

func TestGeneralFundPosts(t *testing.T) {
	tests := []struct {
		name string
		plan Plan
		mode models.SettlementMode
		want []Post
	}{
		{"carryover surplus", Plan{Surplus: 600}, models.SettleCarryover, []Post{{models.TypeGeneralIncome, 600}}},
		{"carryover deficit", Plan{Surplus: -300}, models.SettleCarryover, []Post{{models.TypeGeneralExpense, 300}}},
		{"carryover zero", Plan{Surplus: 0}, models.SettleCarryover, []Post{{models.TypeGeneralIncome, 0}}},
		{"distribute exact", Plan{Surplus: 600, Remainder: 0}, models.SettleDistribute, nil},
		{"distribute remainder", Plan{Surplus: 1001, Remainder: 2}, models.SettleDistribute, []Post{{models.TypeGeneralIncome, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.plan.GeneralFundPosts(tt.mode)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("post %d: got %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	a := tx("t1", "A", models.TypeCollection, 1000)
	b := tx("t2", "B", models.TypeExpense, 400)

	if Fingerprint([]*models.Transaction{a, b}) != Fingerprint([]*models.Transaction{b, a}) {
		t.Error("fingerprint must not depend on snapshot order")
	}

	before := Fingerprint([]*models.Transaction{a, b})
	flipped := tx("t2", "B", models.TypeExpense, 400)
	flipped.Summary.IsReimbursed = true
	if before == Fingerprint([]*models.Transaction{a, flipped}) {
		t.Error("fingerprint must change when a reimbursement flag flips")
	}
	if before == Fingerprint([]*models.Transaction{a}) {
		t.Error("fingerprint must change when a transaction disappears")
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct {
		a, b, want int64
	}{
		{7, 2, 3},
		{6, 3, 2},
		{-6, 3, -2},
		{-601, 2, -301},
		{-1, 3, -1},
		{0, 5, 0},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
