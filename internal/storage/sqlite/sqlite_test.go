package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/circlewallet/internal/models"
	"github.com/mmynk/circlewallet/internal/storage"
	"github.com/mmynk/circlewallet/internal/storage/sqlstore"
)

func newTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedCircle(t *testing.T, store *sqlstore.Store, circleID string) {
	t.Helper()
	now := time.Now().Unix()
	err := store.CreateCircle(context.Background(),
		&models.Circle{ID: circleID, Name: "Climbing club", CreatedBy: "alice", CreatedAt: now},
		&models.Member{CircleID: circleID, UserID: "alice", DisplayName: "Alice", Role: models.RoleAdmin, JoinedAt: now},
		&models.Event{CircleID: circleID, ID: models.GeneralEventID, Title: "General fund", Status: models.EventActive, CreatedAt: now},
	)
	require.NoError(t, err)
}

func seedEvent(t *testing.T, store *sqlstore.Store, circleID, eventID string, fee int64) {
	t.Helper()
	err := store.CreateEvent(context.Background(), &models.Event{
		CircleID:     circleID,
		ID:           eventID,
		Title:        "Bouldering trip",
		FeePerPerson: fee,
		Status:       models.EventActive,
		CreatedAt:    time.Now().Unix(),
	})
	require.NoError(t, err)
}

func newTx(circleID, eventID, user string, typ models.TransactionType, amount int64) *models.Transaction {
	return &models.Transaction{
		ID:          models.NewTransactionID(),
		CircleID:    circleID,
		EventID:     eventID,
		UserID:      user,
		UserName:    user,
		Type:        typ,
		Description: "test",
		CreatedAt:   time.Now().Unix(),
		Summary:     &models.Summary{TotalAmount: amount, Category: models.CategoryFood},
	}
}

func TestSQLiteStore_Circles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedCircle(t, store, "123456")

	t.Run("CreateCircle writes circle, admin and general fund", func(t *testing.T) {
		circle, err := store.GetCircle(ctx, "123456")
		require.NoError(t, err)
		assert.Equal(t, "Climbing club", circle.Name)

		admin, err := store.GetMember(ctx, "123456", "alice")
		require.NoError(t, err)
		assert.True(t, admin.IsAdmin())

		general, err := store.GetEvent(ctx, "123456", models.GeneralEventID)
		require.NoError(t, err)
		assert.True(t, general.IsGeneral())
		assert.Equal(t, models.EventActive, general.Status)
		assert.Nil(t, general.Settlement)
	})

	t.Run("duplicate circle code", func(t *testing.T) {
		err := store.CreateCircle(ctx,
			&models.Circle{ID: "123456", Name: "Other", CreatedBy: "bob"},
			&models.Member{CircleID: "123456", UserID: "bob", DisplayName: "Bob", Role: models.RoleAdmin},
			&models.Event{CircleID: "123456", ID: models.GeneralEventID, Title: "General fund", Status: models.EventActive},
		)
		assert.ErrorIs(t, err, storage.ErrDuplicate)

		// Nothing of the failed batch is visible.
		_, err = store.GetMember(ctx, "123456", "bob")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("RenameCircle", func(t *testing.T) {
		require.NoError(t, store.RenameCircle(ctx, "123456", "Crag crew"))
		circle, err := store.GetCircle(ctx, "123456")
		require.NoError(t, err)
		assert.Equal(t, "Crag crew", circle.Name)

		assert.ErrorIs(t, store.RenameCircle(ctx, "999999", "x"), storage.ErrNotFound)
	})

	t.Run("members are append-only and unique", func(t *testing.T) {
		bob := &models.Member{CircleID: "123456", UserID: "bob", DisplayName: "Bob", Role: models.RoleMember, JoinedAt: time.Now().Unix() + 1}
		require.NoError(t, store.AddMember(ctx, bob))
		assert.ErrorIs(t, store.AddMember(ctx, bob), storage.ErrDuplicate)

		members, err := store.ListMembers(ctx, "123456")
		require.NoError(t, err)
		require.Len(t, members, 2)
		assert.Equal(t, "alice", members[0].UserID)
		assert.Equal(t, "bob", members[1].UserID)
	})

	t.Run("GetCircle not found", func(t *testing.T) {
		_, err := store.GetCircle(ctx, "000000")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestSQLiteStore_Events(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedCircle(t, store, "123456")
	seedEvent(t, store, "123456", "evt_a", 1000)

	events, err := store.ListEvents(ctx, "123456")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.GeneralEventID, events[0].ID, "general fund is listed first")
	assert.Equal(t, int64(1000), events[1].FeePerPerson)

	t.Run("participants", func(t *testing.T) {
		p := &models.Participant{CircleID: "123456", EventID: "evt_a", ID: "gst_1", DisplayName: "Gina", Paid: true, CreatedAt: time.Now().Unix()}
		require.NoError(t, store.AddParticipant(ctx, p))
		assert.ErrorIs(t, store.AddParticipant(ctx, p), storage.ErrDuplicate)

		got, err := store.GetParticipant(ctx, "123456", "evt_a", "gst_1")
		require.NoError(t, err)
		assert.True(t, got.Paid)

		list, err := store.ListParticipants(ctx, "123456", "evt_a")
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}

func TestSQLiteStore_Transactions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedCircle(t, store, "123456")
	seedEvent(t, store, "123456", "evt_a", 1000)

	t.Run("create, get and list", func(t *testing.T) {
		first := newTx("123456", "evt_a", "alice", models.TypeExpense, 400)
		second := newTx("123456", "evt_a", "bob", models.TypeExpense, 200)
		require.NoError(t, store.CreateTransaction(ctx, first))
		require.NoError(t, store.CreateTransaction(ctx, second))

		got, err := store.GetTransaction(ctx, "123456", "evt_a", first.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Summary)
		assert.Equal(t, int64(400), got.Summary.TotalAmount)
		assert.Equal(t, models.CategoryFood, got.Summary.Category)
		assert.False(t, got.Summary.IsReimbursed)

		list, err := store.ListTransactions(ctx, "123456", "evt_a")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID, "newest first")
	})

	t.Run("second collection for the same user is a duplicate", func(t *testing.T) {
		require.NoError(t, store.CreateTransaction(ctx, newTx("123456", "evt_a", "carol", models.TypeCollection, 1000)))
		err := store.CreateTransaction(ctx, newTx("123456", "evt_a", "carol", models.TypeCollection, 1000))
		assert.ErrorIs(t, err, storage.ErrDuplicate)

		// Expenses are not constrained.
		require.NoError(t, store.CreateTransaction(ctx, newTx("123456", "evt_a", "carol", models.TypeExpense, 10)))
		require.NoError(t, store.CreateTransaction(ctx, newTx("123456", "evt_a", "carol", models.TypeExpense, 10)))
	})

	t.Run("missing summary round trip", func(t *testing.T) {
		broken := newTx("123456", "evt_a", "dave", models.TypeExpense, 0)
		broken.Summary = nil
		require.NoError(t, store.CreateTransaction(ctx, broken))

		got, err := store.GetTransaction(ctx, "123456", "evt_a", broken.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Summary)
	})

	t.Run("update applies only patched fields", func(t *testing.T) {
		tx := newTx("123456", "evt_a", "alice", models.TypeExpense, 100)
		require.NoError(t, store.CreateTransaction(ctx, tx))

		amount := int64(150)
		category := models.CategoryTransport
		updated, err := store.UpdateTransaction(ctx, "123456", "evt_a", tx.ID, models.TransactionPatch{
			TotalAmount: &amount,
			Category:    &category,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(150), updated.Summary.TotalAmount)
		assert.Equal(t, models.CategoryTransport, updated.Summary.Category)
		assert.Equal(t, "test", updated.Description)

		_, err = store.UpdateTransaction(ctx, "123456", "evt_a", "txn_missing", models.TransactionPatch{TotalAmount: &amount})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("mark reimbursed flips once", func(t *testing.T) {
		tx := newTx("123456", "evt_a", "bob", models.TypeExpense, 300)
		require.NoError(t, store.CreateTransaction(ctx, tx))

		require.NoError(t, store.MarkReimbursed(ctx, "123456", "evt_a", tx.ID))
		got, err := store.GetTransaction(ctx, "123456", "evt_a", tx.ID)
		require.NoError(t, err)
		assert.True(t, got.Summary.IsReimbursed)

		assert.ErrorIs(t, store.MarkReimbursed(ctx, "123456", "evt_a", tx.ID), storage.ErrConflict)
		assert.ErrorIs(t, store.MarkReimbursed(ctx, "123456", "evt_a", "txn_missing"), storage.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		tx := newTx("123456", "evt_a", "bob", models.TypeExpense, 50)
		require.NoError(t, store.CreateTransaction(ctx, tx))
		require.NoError(t, store.DeleteTransaction(ctx, "123456", "evt_a", tx.ID))

		_, err := store.GetTransaction(ctx, "123456", "evt_a", tx.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, store.DeleteTransaction(ctx, "123456", "evt_a", tx.ID), storage.ErrNotFound)
	})

	t.Run("unknown event", func(t *testing.T) {
		err := store.CreateTransaction(ctx, newTx("123456", "evt_missing", "bob", models.TypeExpense, 50))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestSQLiteStore_CommitSettlement(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*sqlstore.Store, *models.Transaction) {
		store := newTestStore(t)
		seedCircle(t, store, "123456")
		seedEvent(t, store, "123456", "evt_a", 1000)
		require.NoError(t, store.CreateTransaction(ctx, newTx("123456", "evt_a", "alice", models.TypeCollection, 1000)))
		expense := newTx("123456", "evt_a", "alice", models.TypeExpense, 400)
		require.NoError(t, store.CreateTransaction(ctx, expense))
		return store, expense
	}

	t.Run("commit closes, flips and posts", func(t *testing.T) {
		store, expense := setup(t)

		post := newTx("123456", models.GeneralEventID, "alice", models.TypeGeneralIncome, 600)
		err := store.CommitSettlement(ctx, storage.SettlementBatch{
			CircleID:   "123456",
			EventID:    "evt_a",
			Settlement: models.Settlement{Amount: 600, Mode: models.SettleCarryover, ClosedAt: time.Now().Unix()},
			Posts:      []*models.Transaction{post},
			Check: func(txs []*models.Transaction) error {
				assert.Len(t, txs, 2)
				return nil
			},
		})
		require.NoError(t, err)

		event, err := store.GetEvent(ctx, "123456", "evt_a")
		require.NoError(t, err)
		assert.True(t, event.IsClosed())
		require.NotNil(t, event.Settlement)
		assert.Equal(t, int64(600), event.Settlement.Amount)
		assert.Equal(t, models.SettleCarryover, event.Settlement.Mode)

		got, err := store.GetTransaction(ctx, "123456", "evt_a", expense.ID)
		require.NoError(t, err)
		assert.True(t, got.Summary.IsReimbursed)

		general, err := store.ListTransactions(ctx, "123456", models.GeneralEventID)
		require.NoError(t, err)
		require.Len(t, general, 1)
		assert.Equal(t, int64(600), general[0].Summary.TotalAmount)

		// Second commit loses: the event is no longer active.
		err = store.CommitSettlement(ctx, storage.SettlementBatch{CircleID: "123456", EventID: "evt_a"})
		assert.ErrorIs(t, err, storage.ErrConflict)

		// Closed events refuse further writes.
		err = store.CreateTransaction(ctx, newTx("123456", "evt_a", "bob", models.TypeExpense, 10))
		assert.ErrorIs(t, err, storage.ErrClosed)
		assert.ErrorIs(t, store.DeleteTransaction(ctx, "123456", "evt_a", expense.ID), storage.ErrClosed)
	})

	t.Run("failed check applies nothing", func(t *testing.T) {
		store, expense := setup(t)
		stale := errors.New("stale")

		err := store.CommitSettlement(ctx, storage.SettlementBatch{
			CircleID:   "123456",
			EventID:    "evt_a",
			Settlement: models.Settlement{Amount: 600, Mode: models.SettleDistribute, ClosedAt: time.Now().Unix()},
			Check:      func([]*models.Transaction) error { return stale },
		})
		assert.ErrorIs(t, err, stale)

		event, err := store.GetEvent(ctx, "123456", "evt_a")
		require.NoError(t, err)
		assert.False(t, event.IsClosed())

		got, err := store.GetTransaction(ctx, "123456", "evt_a", expense.ID)
		require.NoError(t, err)
		assert.False(t, got.Summary.IsReimbursed)
	})

	t.Run("changes are published after commit", func(t *testing.T) {
		store, _ := setup(t)
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		changes := store.Changes(watchCtx, "123456", models.GeneralEventID)
		err := store.CommitSettlement(ctx, storage.SettlementBatch{
			CircleID:   "123456",
			EventID:    "evt_a",
			Settlement: models.Settlement{Amount: 600, Mode: models.SettleDistribute, ClosedAt: time.Now().Unix()},
		})
		require.NoError(t, err)

		select {
		case <-changes:
		case <-time.After(time.Second):
			t.Fatal("expected the general fund to be notified")
		}
	})
}
