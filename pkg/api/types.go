// Package api defines the circlewallet.v1 RPC messages.
//
// Messages are plain structs carried by the JSON codec in package apiconnect.
// Field names follow the camelCase JSON mapping of protobuf so browser
// clients see the same shapes a generated client would.
package api

// Identity is a signed-in user.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Ephemeral   bool   `json:"ephemeral,omitempty"`
}

type Circle struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedBy string `json:"createdBy"`
	CreatedAt int64  `json:"createdAt"`
}

type Member struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	JoinedAt    int64  `json:"joinedAt"`
}

type Settlement struct {
	Amount   int64  `json:"amount"`
	Mode     string `json:"mode"`
	ClosedAt int64  `json:"closedAt"`
}

type Event struct {
	ID           string      `json:"id"`
	CircleID     string      `json:"circleId"`
	Title        string      `json:"title"`
	FeePerPerson int64       `json:"feePerPerson"`
	Status       string      `json:"status"`
	IsGeneral    bool        `json:"isGeneral,omitempty"`
	Settlement   *Settlement `json:"settlement,omitempty"`
	CreatedAt    int64       `json:"createdAt"`
}

type Participant struct {
	ID          string `json:"id"`
	EventID     string `json:"eventId"`
	DisplayName string `json:"displayName"`
	Paid        bool   `json:"paid"`
	CreatedAt   int64  `json:"createdAt"`
}

// Summary is the amount block of a transaction. Absent on malformed rows.
type Summary struct {
	TotalAmount  int64  `json:"totalAmount"`
	Category     string `json:"category"`
	IsReimbursed bool   `json:"isReimbursed"`
}

type Transaction struct {
	ID          string   `json:"id"`
	CircleID    string   `json:"circleId"`
	EventID     string   `json:"eventId"`
	UserID      string   `json:"userId"`
	UserName    string   `json:"userName"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Summary     *Summary `json:"summary,omitempty"`
	CreatedAt   int64    `json:"createdAt"`
}

type Stats struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Balance int64 `json:"balance"`
}

type PaymentStatus struct {
	ID            string `json:"id"`
	DisplayName   string `json:"displayName"`
	Guest         bool   `json:"guest"`
	Role          string `json:"role,omitempty"`
	Paid          bool   `json:"paid"`
	PreMarked     bool   `json:"preMarked,omitempty"`
	Amount        int64  `json:"amount,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
}

// EventSummary is the full view of one event for the requesting user.
type EventSummary struct {
	Event        *Event          `json:"event"`
	Role         string          `json:"role"`
	Stats        Stats           `json:"stats"`
	Payments     []PaymentStatus `json:"payments"`
	Unreimbursed []*Transaction  `json:"unreimbursed"`
	History      []*Transaction  `json:"history"`
	Transactions []*Transaction  `json:"transactions"`
}

type SettlementEntry struct {
	ID            string `json:"id"`
	DisplayName   string `json:"displayName"`
	Guest         bool   `json:"guest"`
	Reimbursement int64  `json:"reimbursement"`
	Distribution  int64  `json:"distribution"`
	TotalTransfer int64  `json:"totalTransfer"`
}

// SettlementPlan is a settlement proposal. Fingerprint must be sent back
// with CommitSettlementRequest.
type SettlementPlan struct {
	Income             int64             `json:"income"`
	Expense            int64             `json:"expense"`
	Surplus            int64             `json:"surplus"`
	PaidCount          int               `json:"paidCount"`
	PerPersonShare     int64             `json:"perPersonShare"`
	Remainder          int64             `json:"remainder"`
	TotalReimbursement int64             `json:"totalReimbursement"`
	TotalDistribution  int64             `json:"totalDistribution"`
	Entries            []SettlementEntry `json:"entries"`
	Fingerprint        string            `json:"fingerprint"`
}
