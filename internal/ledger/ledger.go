// Package ledger orchestrates circle, event and transaction operations.
// It resolves the acting identity's role, applies the permission gate and
// the event lifecycle, and recomputes every aggregate from the stored
// transactions on each read.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmynk/circlewallet/internal/auth"
	"github.com/mmynk/circlewallet/internal/calculator"
	"github.com/mmynk/circlewallet/internal/models"
	"github.com/mmynk/circlewallet/internal/storage"
)

const (
	// GeneralFundTitle is the title of the event every circle is created with.
	GeneralFundTitle = "General fund"

	// DuesDescription is the description of every collection.
	DuesDescription = "Dues"

	// SystemUserName is the name snapshotted on settlement posts.
	SystemUserName = "System"

	// GuestUserName is snapshotted when an author has no known name.
	GuestUserName = "Guest"

	maxNameLength = 80

	// circleCodeAttempts bounds retries on join code collisions.
	circleCodeAttempts = 5
)

// Observer is notified after ledger writes commit.
type Observer interface {
	TransactionRecorded(t *models.Transaction)
	SettlementCommitted(event *models.Event, plan *calculator.Plan)
}

type nopObserver struct{}

func (nopObserver) TransactionRecorded(*models.Transaction) {}

func (nopObserver) SettlementCommitted(*models.Event, *calculator.Plan) {}

// Option configures a Ledger.
type Option func(*Ledger)

// WithObserver registers an observer for committed writes.
func WithObserver(o Observer) Option {
	return func(l *Ledger) { l.observer = o }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// Ledger implements every circle ledger operation on top of a storage.Store.
type Ledger struct {
	store    storage.Store
	now      func() time.Time
	observer Observer
}

// New creates a Ledger backed by store.
func New(store storage.Store, opts ...Option) *Ledger {
	l := &Ledger{store: store, now: time.Now, observer: nopObserver{}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// actor is the acting identity resolved against a circle's roster.
type actor struct {
	identity auth.Identity
	member   *models.Member // nil for guests
	role     Role
}

func (a *actor) request(op Op, general bool) Request {
	return Request{Role: a.role, Op: op, GeneralFund: general}
}

// resolve looks the identity up in the circle's roster. The circle must exist.
func (l *Ledger) resolve(ctx context.Context, id auth.Identity, circleID string) (*actor, error) {
	if _, err := l.store.GetCircle(ctx, circleID); err != nil {
		return nil, translate(err)
	}
	m, err := l.store.GetMember(ctx, circleID, id.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return &actor{identity: id, role: RoleGuest}, nil
	}
	if err != nil {
		return nil, err
	}
	return &actor{identity: id, member: m, role: RoleOf(m)}, nil
}

// resolveEvent resolves the actor and loads the event.
func (l *Ledger) resolveEvent(ctx context.Context, id auth.Identity, circleID, eventID string) (*actor, *models.Event, error) {
	a, err := l.resolve(ctx, id, circleID)
	if err != nil {
		return nil, nil, err
	}
	event, err := l.store.GetEvent(ctx, circleID, eventID)
	if err != nil {
		return nil, nil, translate(err)
	}
	return a, event, nil
}

func normalizeName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid(field, "must not be empty")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", invalid(field, fmt.Sprintf("must be at most %d characters", maxNameLength))
	}
	return name, nil
}

// CreateCircle creates a circle with the caller as its first admin and an empty general fund.
func (l *Ledger) CreateCircle(ctx context.Context, id auth.Identity, name string) (*models.Circle, error) {
	name, err := normalizeName("name", name)
	if err != nil {
		return nil, err
	}
	displayName := id.DisplayName
	if displayName == "" {
		displayName = GuestUserName
	}

	now := l.now().Unix()
	for attempt := 0; attempt < circleCodeAttempts; attempt++ {
		circle := &models.Circle{ID: models.NewCircleCode(), Name: name, CreatedBy: id.ID, CreatedAt: now}
		admin := &models.Member{CircleID: circle.ID, UserID: id.ID, DisplayName: displayName, Role: models.RoleAdmin, JoinedAt: now}
		general := &models.Event{CircleID: circle.ID, ID: models.GeneralEventID, Title: GeneralFundTitle, Status: models.EventActive, CreatedAt: now}

		err := l.store.CreateCircle(ctx, circle, admin, general)
		if errors.Is(err, storage.ErrDuplicate) {
			slog.Warn("circle code collision, retrying", "circle_id", circle.ID, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, err
		}

		slog.Info("circle created", "circle_id", circle.ID, "user_id", id.ID)
		return circle, nil
	}
	return nil, fmt.Errorf("ledger: no free circle code after %d attempts", circleCodeAttempts)
}

// GetCircle returns the circle and the caller's role in it.
func (l *Ledger) GetCircle(ctx context.Context, id auth.Identity, circleID string) (*models.Circle, Role, error) {
	circle, err := l.store.GetCircle(ctx, circleID)
	if err != nil {
		return nil, "", translate(err)
	}
	a, err := l.resolve(ctx, id, circleID)
	if err != nil {
		return nil, "", err
	}
	return circle, a.role, nil
}

// JoinCircle adds the caller as a member. Joining twice returns the existing membership.
func (l *Ledger) JoinCircle(ctx context.Context, id auth.Identity, circleID, displayName string) (*models.Member, error) {
	if strings.TrimSpace(displayName) == "" {
		displayName = id.DisplayName
	}
	displayName, err := normalizeName("display_name", displayName)
	if err != nil {
		return nil, err
	}

	a, err := l.resolve(ctx, id, circleID)
	if err != nil {
		return nil, err
	}
	if a.member != nil {
		return a.member, nil
	}

	member := &models.Member{
		CircleID:    circleID,
		UserID:      id.ID,
		DisplayName: displayName,
		Role:        models.RoleMember,
		JoinedAt:    l.now().Unix(),
	}
	err = l.store.AddMember(ctx, member)
	if errors.Is(err, storage.ErrDuplicate) {
		// lost a race with a concurrent join
		return l.store.GetMember(ctx, circleID, id.ID)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("member joined", "path", storage.MemberPath(circleID, id.ID))
	return member, nil
}

// RenameCircle changes the circle's display name. Admin only.
func (l *Ledger) RenameCircle(ctx context.Context, id auth.Identity, circleID, name string) error {
	a, err := l.resolve(ctx, id, circleID)
	if err != nil {
		return err
	}
	if err := Authorize(a.request(OpRenameCircle, false)); err != nil {
		return err
	}
	name, err = normalizeName("name", name)
	if err != nil {
		return err
	}
	return translate(l.store.RenameCircle(ctx, circleID, name))
}

// ListMembers returns the roster in join order.
func (l *Ledger) ListMembers(ctx context.Context, id auth.Identity, circleID string) ([]*models.Member, error) {
	if _, err := l.resolve(ctx, id, circleID); err != nil {
		return nil, err
	}
	return l.store.ListMembers(ctx, circleID)
}

// CreateEvent opens a new active event. Admin only.
func (l *Ledger) CreateEvent(ctx context.Context, id auth.Identity, circleID, title string, fee int64) (*models.Event, error) {
	a, err := l.resolve(ctx, id, circleID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(a.request(OpCreateEvent, false)); err != nil {
		return nil, err
	}
	title, err = normalizeName("title", title)
	if err != nil {
		return nil, err
	}
	if fee < 0 {
		return nil, invalid("fee_per_person", "must not be negative")
	}

	event := &models.Event{
		CircleID:     circleID,
		ID:           models.NewEventID(),
		Title:        title,
		FeePerPerson: fee,
		Status:       models.EventActive,
		CreatedAt:    l.now().Unix(),
	}
	if err := l.store.CreateEvent(ctx, event); err != nil {
		return nil, err
	}

	slog.Info("event created", "path", storage.EventPath(circleID, event.ID), "fee_per_person", fee)
	return event, nil
}

// ListEvents returns the general fund followed by the other events, newest first.
func (l *Ledger) ListEvents(ctx context.Context, id auth.Identity, circleID string) ([]*models.Event, error) {
	if _, err := l.resolve(ctx, id, circleID); err != nil {
		return nil, err
	}
	return l.store.ListEvents(ctx, circleID)
}

// GetEvent returns one event.
func (l *Ledger) GetEvent(ctx context.Context, id auth.Identity, circleID, eventID string) (*models.Event, error) {
	_, event, err := l.resolveEvent(ctx, id, circleID, eventID)
	return event, err
}

// AddParticipant adds a guest to an event, optionally pre-marked as paid. Admin only.
func (l *Ledger) AddParticipant(ctx context.Context, id auth.Identity, circleID, eventID, name string, paid bool) (*models.Participant, error) {
	a, event, err := l.resolveEvent(ctx, id, circleID, eventID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(a.request(OpAddGuest, event.IsGeneral())); err != nil {
		return nil, err
	}
	if event.IsGeneral() {
		return nil, ErrGeneralFund
	}
	if err := CheckMutation(event.Status, MutCreate); err != nil {
		return nil, err
	}
	name, err = normalizeName("display_name", name)
	if err != nil {
		return nil, err
	}

	p := &models.Participant{
		CircleID:    circleID,
		EventID:     eventID,
		ID:          models.NewGuestID(),
		DisplayName: name,
		Paid:        paid,
		CreatedAt:   l.now().Unix(),
	}
	if err := l.store.AddParticipant(ctx, p); err != nil {
		return nil, err
	}

	slog.Info("guest added", "path", storage.ParticipantPath(circleID, eventID, p.ID), "pre_marked", paid)
	return p, nil
}

// JoinEvent registers the caller as a guest of the event. Members are part
// of every event already and cannot join as guests.
func (l *Ledger) JoinEvent(ctx context.Context, id auth.Identity, circleID, eventID, name string) (*models.Participant, error) {
	a, event, err := l.resolveEvent(ctx, id, circleID, eventID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(a.request(OpJoinEvent, event.IsGeneral())); err != nil {
		return nil, err
	}
	if event.IsGeneral() {
		return nil, ErrGeneralFund
	}
	if a.member != nil {
		return nil, invalid("identity", "members take part in every event")
	}
	if err := CheckMutation(event.Status, MutCreate); err != nil {
		return nil, err
	}

	existing, err := l.store.GetParticipant(ctx, circleID, eventID, id.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	if strings.TrimSpace(name) == "" {
		name = id.DisplayName
	}
	name, err = normalizeName("display_name", name)
	if err != nil {
		return nil, err
	}

	p := &models.Participant{
		CircleID:    circleID,
		EventID:     eventID,
		ID:          id.ID,
		DisplayName: name,
		CreatedAt:   l.now().Unix(),
	}
	err = l.store.AddParticipant(ctx, p)
	if errors.Is(err, storage.ErrDuplicate) {
		return l.store.GetParticipant(ctx, circleID, eventID, id.ID)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("guest joined", "path", storage.ParticipantPath(circleID, eventID, p.ID))
	return p, nil
}

// RecordInput describes a new transaction.
type RecordInput struct {
	CircleID string
	EventID  string
	Type     models.TransactionType

	// Amount is ignored for collections, which always record the event fee.
	Amount      int64
	Description string
	Category    string

	// UserID is the payer of a collection; empty means the caller.
	// Ignored for every other type, which is attributed to the caller.
	UserID string
}

// RecordTransaction validates and stores a new transaction.
func (l *Ledger) RecordTransaction(ctx context.Context, id auth.Identity, in RecordInput) (*models.Transaction, error) {
	if !in.Type.Valid() {
		return nil, invalid("type", fmt.Sprintf("unknown transaction type %q", in.Type))
	}

	a, event, err := l.resolveEvent(ctx, id, in.CircleID, in.EventID)
	if err != nil {
		return nil, err
	}

	userID := id.ID
	if in.Type == models.TypeCollection && in.UserID != "" {
		userID = in.UserID
	}
	if err := Authorize(a.request(opForType(in.Type, userID == id.ID), event.IsGeneral())); err != nil {
		return nil, err
	}

	switch {
	case event.IsGeneral() && (in.Type == models.TypeCollection || in.Type == models.TypeExpense):
		return nil, fmt.Errorf("%w: %s", ErrGeneralFund, in.Type)
	case !event.IsGeneral() && in.Type.GeneralOnly():
		return nil, invalid("type", fmt.Sprintf("%s is only recorded on the general fund", in.Type))
	}
	if userID != id.ID {
		if err := l.requireOnRoster(ctx, in.CircleID, in.EventID, userID); err != nil {
			return nil, err
		}
	}
	if err := CheckMutation(event.Status, MutCreate); err != nil {
		return nil, err
	}

	t := &models.Transaction{
		ID:        models.NewTransactionID(),
		CircleID:  in.CircleID,
		EventID:   in.EventID,
		UserID:    userID,
		Type:      in.Type,
		CreatedAt: l.now().Unix(),
		Summary: &models.Summary{
			Category:     models.NormalizeCategory(in.Category),
			IsReimbursed: in.Type == models.TypeAdminExpense,
		},
	}

	if in.Type == models.TypeCollection {
		t.Description = DuesDescription
		t.Summary.TotalAmount = event.FeePerPerson
	} else {
		if in.Amount <= 0 {
			return nil, invalid("amount", "must be greater than zero")
		}
		t.Description = strings.TrimSpace(in.Description)
		if t.Description == "" {
			return nil, invalid("description", "must not be empty")
		}
		t.Summary.TotalAmount = in.Amount
	}

	t.UserName, err = l.userName(ctx, in.CircleID, in.EventID, userID)
	if err != nil {
		return nil, err
	}

	if err := l.store.CreateTransaction(ctx, t); err != nil {
		if errors.Is(err, storage.ErrDuplicate) && t.Type == models.TypeCollection {
			return nil, fmt.Errorf("%w: %w", ErrAlreadyPaid, err)
		}
		return nil, translate(err)
	}

	l.observer.TransactionRecorded(t)
	slog.Info("transaction recorded",
		"path", storage.TransactionPath(t.CircleID, t.EventID, t.ID),
		"type", t.Type,
		"amount", t.Summary.TotalAmount,
		"user_id", t.UserID,
	)
	return t, nil
}

// userName resolves the name snapshotted on a transaction: the member's
// display name, else the event guest's name, else GuestUserName.
func (l *Ledger) userName(ctx context.Context, circleID, eventID, userID string) (string, error) {
	m, err := l.store.GetMember(ctx, circleID, userID)
	if err == nil {
		return m.DisplayName, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}

	p, err := l.store.GetParticipant(ctx, circleID, eventID, userID)
	if err == nil {
		return p.DisplayName, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}
	return GuestUserName, nil
}

// requireOnRoster fails with ErrNotFound unless userID is a circle member or
// a guest of the event.
func (l *Ledger) requireOnRoster(ctx context.Context, circleID, eventID, userID string) error {
	_, err := l.store.GetMember(ctx, circleID, userID)
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	_, err = l.store.GetParticipant(ctx, circleID, eventID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s is not on the dues list: %w", ErrNotFound, userID, err)
	}
	return err
}

// TogglePayment marks userID (the caller when empty) as paid by recording a
// collection, or undoes an existing one. It reports whether the user is paid afterwards.
func (l *Ledger) TogglePayment(ctx context.Context, id auth.Identity, circleID, eventID, userID string) (*models.Transaction, bool, error) {
	if userID == "" {
		userID = id.ID
	}

	a, event, err := l.resolveEvent(ctx, id, circleID, eventID)
	if err != nil {
		return nil, false, err
	}
	txs, err := l.store.ListTransactions(ctx, circleID, eventID)
	if err != nil {
		return nil, false, err
	}

	var existing *models.Transaction
	for _, t := range txs {
		if t.Type == models.TypeCollection && t.UserID == userID {
			existing = t
			break
		}
	}

	if existing == nil {
		t, err := l.RecordTransaction(ctx, id, RecordInput{
			CircleID: circleID,
			EventID:  eventID,
			Type:     models.TypeCollection,
			UserID:   userID,
		})
		if err != nil {
			return nil, false, err
		}
		return t, true, nil
	}

	if err := Authorize(a.request(opForType(models.TypeCollection, userID == id.ID), event.IsGeneral())); err != nil {
		return nil, false, err
	}
	if err := CheckMutation(event.Status, MutDelete); err != nil {
		return nil, false, err
	}
	if err := l.store.DeleteTransaction(ctx, circleID, eventID, existing.ID); err != nil {
		return nil, false, translate(err)
	}

	slog.Info("payment undone", "path", storage.TransactionPath(circleID, eventID, existing.ID), "user_id", userID)
	return existing, false, nil
}

// loadForEdit resolves the actor, event and transaction and applies the edit gate.
func (l *Ledger) loadForEdit(ctx context.Context, id auth.Identity, circleID, eventID, txID string, m Mutation) (*models.Transaction, error) {
	a, event, err := l.resolveEvent(ctx, id, circleID, eventID)
	if err != nil {
		return nil, err
	}
	t, err := l.store.GetTransaction(ctx, circleID, eventID, txID)
	if err != nil {
		return nil, translate(err)
	}

	req := a.request(OpEditTransaction, event.IsGeneral())
	req.IsAuthor = t.UserID == id.ID
	if err := Authorize(req); err != nil {
		return nil, err
	}
	if err := CheckMutation(event.Status, m); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTransaction edits amount, description or category of a transaction.
func (l *Ledger) UpdateTransaction(ctx context.Context, id auth.Identity, circleID, eventID, txID string, patch models.TransactionPatch) (*models.Transaction, error) {
	t, err := l.loadForEdit(ctx, id, circleID, eventID, txID, MutEdit)
	if err != nil {
		return nil, err
	}

	if patch.Empty() {
		return nil, invalid("patch", "nothing to update")
	}
	if patch.TotalAmount != nil {
		switch {
		case *patch.TotalAmount < 0:
			return nil, invalid("amount", "must not be negative")
		case *patch.TotalAmount == 0 && t.Type != models.TypeCollection:
			return nil, invalid("amount", "must be greater than zero")
		}
	}
	if patch.Description != nil {
		d := strings.TrimSpace(*patch.Description)
		if d == "" {
			return nil, invalid("description", "must not be empty")
		}
		patch.Description = &d
	}
	if patch.Category != nil {
		c := models.NormalizeCategory(string(*patch.Category))
		patch.Category = &c
	}

	updated, err := l.store.UpdateTransaction(ctx, circleID, eventID, txID, patch)
	if err != nil {
		return nil, translate(err)
	}

	slog.Info("transaction updated", "path", storage.TransactionPath(circleID, eventID, txID), "user_id", id.ID)
	return updated, nil
}

// DeleteTransaction removes a transaction.
func (l *Ledger) DeleteTransaction(ctx context.Context, id auth.Identity, circleID, eventID, txID string) error {
	if _, err := l.loadForEdit(ctx, id, circleID, eventID, txID, MutDelete); err != nil {
		return err
	}
	if err := l.store.DeleteTransaction(ctx, circleID, eventID, txID); err != nil {
		return translate(err)
	}

	slog.Info("transaction deleted", "path", storage.TransactionPath(circleID, eventID, txID), "user_id", id.ID)
	return nil
}

// MarkReimbursed flips a single expense to reimbursed. Admin only.
func (l *Ledger) MarkReimbursed(ctx context.Context, id auth.Identity, circleID, eventID, txID string) error {
	a, event, err := l.resolveEvent(ctx, id, circleID, eventID)
	if err != nil {
		return err
	}
	if err := Authorize(a.request(OpFlipReimbursement, event.IsGeneral())); err != nil {
		return err
	}
	if err := CheckMutation(event.Status, MutFlip); err != nil {
		return err
	}

	t, err := l.store.GetTransaction(ctx, circleID, eventID, txID)
	if err != nil {
		return translate(err)
	}
	if t.Type != models.TypeExpense {
		return invalid("type", "only expenses are reimbursed")
	}
	if t.Summary != nil && t.Summary.IsReimbursed {
		return ErrAlreadyReimbursed
	}

	if err := l.store.MarkReimbursed(ctx, circleID, eventID, txID); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return fmt.Errorf("%w: %w", ErrAlreadyReimbursed, err)
		}
		return translate(err)
	}

	slog.Info("expense reimbursed", "path", storage.TransactionPath(circleID, eventID, txID), "user_id", id.ID)
	return nil
}

// EventView is everything a client shows for one event, derived from one snapshot.
type EventView struct {
	Event *models.Event

	// Role is the viewer's role in the circle.
	Role Role

	Stats        calculator.Stats
	Payments     []calculator.PaymentStatus
	Unreimbursed []*models.Transaction

	// History is every expense-side entry, reimbursed or not.
	History      []*models.Transaction
	Transactions []*models.Transaction
}

type snapshot struct {
	event   *models.Event
	members []*models.Member
	guests  []*models.Participant
	txs     []*models.Transaction
}

func (l *Ledger) loadSnapshot(ctx context.Context, event *models.Event) (*snapshot, error) {
	members, err := l.store.ListMembers(ctx, event.CircleID)
	if err != nil {
		return nil, err
	}
	guests, err := l.store.ListParticipants(ctx, event.CircleID, event.ID)
	if err != nil {
		return nil, err
	}
	txs, err := l.store.ListTransactions(ctx, event.CircleID, event.ID)
	if err != nil {
		return nil, err
	}
	return &snapshot{event: event, members: members, guests: guests, txs: txs}, nil
}

func (s *snapshot) view(role Role) *EventView {
	v := &EventView{
		Event:        s.event,
		Role:         role,
		Stats:        calculator.Summarize(s.txs),
		Unreimbursed: calculator.Unreimbursed(s.txs),
		History:      calculator.ExpenseHistory(s.txs),
		Transactions: s.txs,
	}
	if !s.event.IsGeneral() {
		v.Payments = calculator.PaymentStatuses(s.members, s.guests, s.txs)
	}
	return v
}

// EventSummary recomputes the event's view from its current transactions.
func (l *Ledger) EventSummary(ctx context.Context, id auth.Identity, circleID, eventID string) (*EventView, error) {
	a, event, err := l.resolveEvent(ctx, id, circleID, eventID)
	if err != nil {
		return nil, err
	}
	snap, err := l.loadSnapshot(ctx, event)
	if err != nil {
		return nil, err
	}
	return snap.view(a.role), nil
}
