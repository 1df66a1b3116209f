package ledger

import (
	"fmt"

	"github.com/mmynk/circlewallet/internal/models"
)

// Role is the acting identity's role for one request.
// Guest is never stored: it is any identity missing from the member roster.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleGuest  Role = "guest"
)

// RoleOf derives the request role from a roster lookup; nil means guest.
func RoleOf(m *models.Member) Role {
	switch {
	case m == nil:
		return RoleGuest
	case m.Role == models.RoleAdmin:
		return RoleAdmin
	default:
		return RoleMember
	}
}

// Op is a gated write operation.
type Op string

const (
	OpCreateEvent        Op = "create_event"
	OpPayOwnDues         Op = "pay_own_dues"
	OpMarkPaid           Op = "mark_paid"
	OpRecordExpense      Op = "record_expense"
	OpRecordAdminExpense Op = "record_admin_expense"
	OpRecordGeneral      Op = "record_general"
	OpFlipReimbursement  Op = "flip_reimbursement"
	OpSettle             Op = "settle"
	OpEditTransaction    Op = "edit_transaction"
	OpRenameCircle       Op = "rename_circle"
	OpAddGuest           Op = "add_guest"
	OpJoinEvent          Op = "join_event"
)

// Ops lists every gated operation.
var Ops = []Op{
	OpCreateEvent,
	OpPayOwnDues,
	OpMarkPaid,
	OpRecordExpense,
	OpRecordAdminExpense,
	OpRecordGeneral,
	OpFlipReimbursement,
	OpSettle,
	OpEditTransaction,
	OpRenameCircle,
	OpAddGuest,
	OpJoinEvent,
}

// Request describes one attempted operation.
type Request struct {
	Role Role
	Op   Op

	// GeneralFund is set when the target event is the circle's general fund.
	GeneralFund bool

	// IsAuthor is set when the actor authored the target transaction.
	IsAuthor bool
}

// Authorize decides whether req may proceed. It never touches the store.
//
// Admins may do everything. On the general fund every write is admin-only.
// Elsewhere members and guests may pay their own dues, claim expenses,
// register themselves on an event and edit or delete what they authored.
func Authorize(req Request) error {
	if req.Role == RoleAdmin {
		return nil
	}
	if req.Role != RoleMember && req.Role != RoleGuest {
		return fmt.Errorf("%w: unknown role %q", ErrForbidden, req.Role)
	}
	if req.GeneralFund {
		return fmt.Errorf("%w: %s on the general fund requires admin", ErrForbidden, req.Op)
	}

	switch req.Op {
	case OpPayOwnDues, OpRecordExpense, OpJoinEvent:
		return nil
	case OpEditTransaction:
		if req.IsAuthor {
			return nil
		}
		return fmt.Errorf("%w: only the author or an admin may change this transaction", ErrForbidden)
	}
	return fmt.Errorf("%w: %s requires admin", ErrForbidden, req.Op)
}

// opForType maps a transaction type to the operation that records it.
func opForType(t models.TransactionType, own bool) Op {
	switch t {
	case models.TypeCollection:
		if own {
			return OpPayOwnDues
		}
		return OpMarkPaid
	case models.TypeExpense:
		return OpRecordExpense
	case models.TypeAdminExpense:
		return OpRecordAdminExpense
	default:
		return OpRecordGeneral
	}
}
