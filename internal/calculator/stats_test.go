package calculator

import (
	"math/rand"
	"testing"

	"github.com/mmynk/circlewallet/internal/models"
)

func tx(id, user string, typ models.TransactionType, amount int64) *models.Transaction {
	return &models.Transaction{
		ID:      id,
		UserID:  user,
		Type:    typ,
		Summary: &models.Summary{TotalAmount: amount, Category: models.CategoryOther},
	}
}

func reimbursed(t *models.Transaction) *models.Transaction {
	t.Summary.IsReimbursed = true
	return t
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		txs  []*models.Transaction
		want Stats
	}{
		{
			name: "empty snapshot",
			txs:  nil,
			want: Stats{},
		},
		{
			name: "one collection",
			txs:  []*models.Transaction{tx("t1", "A", models.TypeCollection, 1000)},
			want: Stats{Income: 1000, Expense: 0, Balance: 1000},
		},
		{
			name: "collection and expense",
			txs: []*models.Transaction{
				tx("t1", "A", models.TypeCollection, 1000),
				tx("t2", "A", models.TypeExpense, 400),
			},
			want: Stats{Income: 1000, Expense: 400, Balance: 600},
		},
		{
			name: "every type counted once",
			txs: []*models.Transaction{
				tx("t1", "A", models.TypeCollection, 500),
				tx("t2", "B", models.TypeGeneralIncome, 100),
				tx("t3", "A", models.TypeExpense, 200),
				reimbursed(tx("t4", "C", models.TypeAdminExpense, 300)),
				tx("t5", "C", models.TypeGeneralExpense, 50),
			},
			want: Stats{Income: 600, Expense: 550, Balance: 50},
		},
		{
			name: "deficit",
			txs: []*models.Transaction{
				tx("t1", "A", models.TypeCollection, 500),
				tx("t2", "B", models.TypeExpense, 800),
			},
			want: Stats{Income: 500, Expense: 800, Balance: -300},
		},
		{
			name: "missing summary counts as zero",
			txs: []*models.Transaction{
				tx("t1", "A", models.TypeCollection, 500),
				{ID: "broken", UserID: "B", Type: models.TypeExpense},
			},
			want: Stats{Income: 500, Expense: 0, Balance: 500},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.txs)
			if got != tt.want {
				t.Errorf("Summarize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSummarize_BalanceIdentity(t *testing.T) {
	types := []models.TransactionType{
		models.TypeCollection,
		models.TypeExpense,
		models.TypeAdminExpense,
		models.TypeGeneralIncome,
		models.TypeGeneralExpense,
	}
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		n := rng.Intn(30)
		txs := make([]*models.Transaction, n)
		var income, expense int64
		for i := range txs {
			typ := types[rng.Intn(len(types))]
			amount := rng.Int63n(10000)
			txs[i] = tx("t", "u", typ, amount)
			if typ == models.TypeCollection || typ == models.TypeGeneralIncome {
				income += amount
			} else {
				expense += amount
			}
		}

		got := Summarize(txs)
		if got.Income != income || got.Expense != expense {
			t.Fatalf("round %d: got income=%d expense=%d, want %d/%d", round, got.Income, got.Expense, income, expense)
		}
		if got.Balance != got.Income-got.Expense {
			t.Fatalf("round %d: balance %d != %d - %d", round, got.Balance, got.Income, got.Expense)
		}
	}
}

func TestPaymentStatuses(t *testing.T) {
	members := []*models.Member{
		{UserID: "A", DisplayName: "Alice", Role: models.RoleAdmin},
		{UserID: "B", DisplayName: "Bob", Role: models.RoleMember},
	}
	guests := []*models.Participant{
		{ID: "G1", DisplayName: "Gina"},
		{ID: "G2", DisplayName: "Gus", Paid: true},
	}
	txs := []*models.Transaction{
		tx("t1", "A", models.TypeCollection, 1000),
		tx("t2", "B", models.TypeExpense, 300),
		tx("t3", "G1", models.TypeCollection, 1000),
	}

	list := PaymentStatuses(members, guests, txs)

	if len(list) != len(members)+len(guests) {
		t.Fatalf("expected %d rows, got %d", len(members)+len(guests), len(list))
	}

	wantOrder := []string{"A", "B", "G1", "G2"}
	for i, id := range wantOrder {
		if list[i].ID != id {
			t.Errorf("row %d: expected %s, got %s", i, id, list[i].ID)
		}
	}

	if !list[0].Paid || list[0].TransactionID != "t1" || list[0].Amount != 1000 {
		t.Errorf("Alice: expected paid via t1, got %+v", list[0])
	}
	if list[1].Paid {
		t.Errorf("Bob: an expense must not count as payment, got %+v", list[1])
	}
	if !list[2].Paid || !list[2].Guest {
		t.Errorf("Gina: expected paid guest, got %+v", list[2])
	}
	if list[3].Paid {
		t.Errorf("Gus: pre-marked guest without collection must not be paid, got %+v", list[3])
	}
	if !list[3].PreMarked {
		t.Errorf("Gus: expected PreMarked, got %+v", list[3])
	}
}

func TestPaymentStatuses_Completeness(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 100; round++ {
		var members []*models.Member
		var guests []*models.Participant
		var txs []*models.Transaction
		payers := make(map[string]bool)

		nm, ng := rng.Intn(8), rng.Intn(5)
		for i := 0; i < nm; i++ {
			id := string(rune('a' + i))
			members = append(members, &models.Member{UserID: id})
			if rng.Intn(2) == 0 {
				txs = append(txs, tx("m"+id, id, models.TypeCollection, 100))
				payers[id] = true
			}
		}
		for i := 0; i < ng; i++ {
			id := "g" + string(rune('a'+i))
			guests = append(guests, &models.Participant{ID: id})
			if rng.Intn(2) == 0 {
				txs = append(txs, tx("c"+id, id, models.TypeCollection, 100))
				payers[id] = true
			}
		}

		list := PaymentStatuses(members, guests, txs)
		if len(list) != len(members)+len(guests) {
			t.Fatalf("round %d: expected %d rows, got %d", round, len(members)+len(guests), len(list))
		}
		for _, row := range list {
			if row.Paid != payers[row.ID] {
				t.Fatalf("round %d: %s paid=%v, want %v", round, row.ID, row.Paid, payers[row.ID])
			}
		}
	}
}

func TestPaymentStatuses_GuestTurnedMember(t *testing.T) {
	members := []*models.Member{
		{UserID: "A", DisplayName: "Alice", Role: models.RoleAdmin},
		{UserID: "G1", DisplayName: "Gina", Role: models.RoleMember},
	}
	guests := []*models.Participant{
		{ID: "G1", DisplayName: "Gina"},
		{ID: "G2", DisplayName: "Gus"},
	}
	txs := []*models.Transaction{
		tx("t1", "G1", models.TypeCollection, 1000),
	}

	list := PaymentStatuses(members, guests, txs)

	if len(list) != 3 {
		t.Fatalf("expected 3 rows, got %d: %+v", len(list), list)
	}
	rows := 0
	for _, row := range list {
		if row.ID != "G1" {
			continue
		}
		rows++
		if row.Guest || !row.Paid || row.TransactionID != "t1" {
			t.Errorf("expected Gina as a paid member, got %+v", row)
		}
	}
	if rows != 1 {
		t.Errorf("expected Gina listed once, got %d rows", rows)
	}
}

func TestUnreimbursed(t *testing.T) {
	txs := []*models.Transaction{
		tx("t1", "A", models.TypeExpense, 400),
		reimbursed(tx("t2", "B", models.TypeExpense, 100)),
		reimbursed(tx("t3", "C", models.TypeAdminExpense, 250)),
		tx("t4", "A", models.TypeCollection, 1000),
		tx("t5", "D", models.TypeGeneralExpense, 50),
	}

	pending := Unreimbursed(txs)
	if len(pending) != 1 || pending[0].ID != "t1" {
		t.Fatalf("expected only t1 pending, got %v", pending)
	}

	history := ExpenseHistory(txs)
	if len(history) != 4 {
		t.Errorf("expected 4 expense-side entries, got %d", len(history))
	}
}
