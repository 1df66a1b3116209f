package sqlstore

import (
	"database/sql"

	"github.com/mmynk/circlewallet/internal/models"
)

const (
	circleColumns      = "id, name, created_by, created_at"
	memberColumns      = "circle_id, user_id, display_name, role, joined_at"
	eventColumns       = "circle_id, id, title, fee_per_person, status, settled_amount, settlement_mode, closed_at, created_at"
	participantColumns = "circle_id, event_id, id, display_name, paid, created_at"
	transactionColumns = "id, circle_id, event_id, user_id, user_name, type, description, total_amount, category, is_reimbursed, created_at"
)

type circleRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	CreatedBy string `db:"created_by"`
	CreatedAt int64  `db:"created_at"`
}

func (r circleRow) model() *models.Circle {
	return &models.Circle{ID: r.ID, Name: r.Name, CreatedBy: r.CreatedBy, CreatedAt: r.CreatedAt}
}

type memberRow struct {
	CircleID    string `db:"circle_id"`
	UserID      string `db:"user_id"`
	DisplayName string `db:"display_name"`
	Role        string `db:"role"`
	JoinedAt    int64  `db:"joined_at"`
}

func (r memberRow) model() *models.Member {
	return &models.Member{
		CircleID:    r.CircleID,
		UserID:      r.UserID,
		DisplayName: r.DisplayName,
		Role:        models.Role(r.Role),
		JoinedAt:    r.JoinedAt,
	}
}

type eventRow struct {
	CircleID       string         `db:"circle_id"`
	ID             string         `db:"id"`
	Title          string         `db:"title"`
	FeePerPerson   int64          `db:"fee_per_person"`
	Status         string         `db:"status"`
	SettledAmount  sql.NullInt64  `db:"settled_amount"`
	SettlementMode sql.NullString `db:"settlement_mode"`
	ClosedAt       sql.NullInt64  `db:"closed_at"`
	CreatedAt      int64          `db:"created_at"`
}

func (r eventRow) model() *models.Event {
	e := &models.Event{
		CircleID:     r.CircleID,
		ID:           r.ID,
		Title:        r.Title,
		FeePerPerson: r.FeePerPerson,
		Status:       models.EventStatus(r.Status),
		CreatedAt:    r.CreatedAt,
	}
	if r.ClosedAt.Valid {
		e.Settlement = &models.Settlement{
			Amount:   r.SettledAmount.Int64,
			Mode:     models.SettlementMode(r.SettlementMode.String),
			ClosedAt: r.ClosedAt.Int64,
		}
	}
	return e
}

type participantRow struct {
	CircleID    string `db:"circle_id"`
	EventID     string `db:"event_id"`
	ID          string `db:"id"`
	DisplayName string `db:"display_name"`
	Paid        bool   `db:"paid"`
	CreatedAt   int64  `db:"created_at"`
}

func (r participantRow) model() *models.Participant {
	return &models.Participant{
		CircleID:    r.CircleID,
		EventID:     r.EventID,
		ID:          r.ID,
		DisplayName: r.DisplayName,
		Paid:        r.Paid,
		CreatedAt:   r.CreatedAt,
	}
}

// transactionRow keeps the summary columns nullable: a row without
// total_amount is a transaction whose summary block is missing.
type transactionRow struct {
	ID           string         `db:"id"`
	CircleID     string         `db:"circle_id"`
	EventID      string         `db:"event_id"`
	UserID       string         `db:"user_id"`
	UserName     string         `db:"user_name"`
	Type         string         `db:"type"`
	Description  string         `db:"description"`
	TotalAmount  sql.NullInt64  `db:"total_amount"`
	Category     sql.NullString `db:"category"`
	IsReimbursed sql.NullBool   `db:"is_reimbursed"`
	CreatedAt    int64          `db:"created_at"`
}

func (r transactionRow) model() *models.Transaction {
	t := &models.Transaction{
		ID:          r.ID,
		CircleID:    r.CircleID,
		EventID:     r.EventID,
		UserID:      r.UserID,
		UserName:    r.UserName,
		Type:        models.TransactionType(r.Type),
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
	}
	if r.TotalAmount.Valid {
		t.Summary = &models.Summary{
			TotalAmount:  r.TotalAmount.Int64,
			Category:     models.NormalizeCategory(r.Category.String),
			IsReimbursed: r.IsReimbursed.Bool,
		}
	}
	return t
}

// summaryArgs returns the nullable column values for t's summary block.
func summaryArgs(t *models.Transaction) (amount sql.NullInt64, category sql.NullString, reimbursed sql.NullBool) {
	if t.Summary == nil {
		return
	}
	return sql.NullInt64{Int64: t.Summary.TotalAmount, Valid: true},
		sql.NullString{String: string(t.Summary.Category), Valid: true},
		sql.NullBool{Bool: t.Summary.IsReimbursed, Valid: true}
}
