package api

// IdentityService

type SignInRequest struct {
	DisplayName string `json:"displayName"`
}

type SignInResponse struct {
	Identity *Identity `json:"identity"`
	Token    string    `json:"token"`
}

// CircleService

type CreateCircleRequest struct {
	Name string `json:"name"`
}

type CreateCircleResponse struct {
	Circle *Circle `json:"circle"`
}

type GetCircleRequest struct {
	CircleID string `json:"circleId"`
}

type GetCircleResponse struct {
	Circle *Circle `json:"circle"`
	Role   string  `json:"role"`
}

type JoinCircleRequest struct {
	CircleID    string `json:"circleId"`
	DisplayName string `json:"displayName,omitempty"`
}

type JoinCircleResponse struct {
	Member *Member `json:"member"`
}

type RenameCircleRequest struct {
	CircleID string `json:"circleId"`
	Name     string `json:"name"`
}

type RenameCircleResponse struct {
	Circle *Circle `json:"circle"`
}

type ListMembersRequest struct {
	CircleID string `json:"circleId"`
}

type ListMembersResponse struct {
	Members []*Member `json:"members"`
}

type CreateEventRequest struct {
	CircleID     string `json:"circleId"`
	Title        string `json:"title"`
	FeePerPerson int64  `json:"feePerPerson"`
}

type CreateEventResponse struct {
	Event *Event `json:"event"`
}

type ListEventsRequest struct {
	CircleID string `json:"circleId"`
}

type ListEventsResponse struct {
	Events []*Event `json:"events"`
}

type AddParticipantRequest struct {
	CircleID    string `json:"circleId"`
	EventID     string `json:"eventId"`
	DisplayName string `json:"displayName"`
	Paid        bool   `json:"paid"`
}

type AddParticipantResponse struct {
	Participant *Participant `json:"participant"`
}

type JoinEventRequest struct {
	CircleID    string `json:"circleId"`
	EventID     string `json:"eventId"`
	DisplayName string `json:"displayName,omitempty"`
}

type JoinEventResponse struct {
	Participant *Participant `json:"participant"`
}

// LedgerService

type RecordTransactionRequest struct {
	CircleID    string `json:"circleId"`
	EventID     string `json:"eventId"`
	Type        string `json:"type"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	// UserID marks another user's dues as paid (collections only, admin only).
	UserID string `json:"userId,omitempty"`
}

type RecordTransactionResponse struct {
	Transaction *Transaction `json:"transaction"`
}

// UpdateTransactionRequest carries a partial update; absent fields are left untouched.
type UpdateTransactionRequest struct {
	CircleID      string  `json:"circleId"`
	EventID       string  `json:"eventId"`
	TransactionID string  `json:"transactionId"`
	Amount        *int64  `json:"amount,omitempty"`
	Description   *string `json:"description,omitempty"`
	Category      *string `json:"category,omitempty"`
}

type UpdateTransactionResponse struct {
	Transaction *Transaction `json:"transaction"`
}

type DeleteTransactionRequest struct {
	CircleID      string `json:"circleId"`
	EventID       string `json:"eventId"`
	TransactionID string `json:"transactionId"`
}

type DeleteTransactionResponse struct{}

type TogglePaymentRequest struct {
	CircleID string `json:"circleId"`
	EventID  string `json:"eventId"`
	// UserID defaults to the caller.
	UserID string `json:"userId,omitempty"`
}

type TogglePaymentResponse struct {
	// Transaction is the collection created, or the one removed when Paid is false.
	Transaction *Transaction `json:"transaction"`
	Paid        bool         `json:"paid"`
}

type MarkReimbursedRequest struct {
	CircleID      string `json:"circleId"`
	EventID       string `json:"eventId"`
	TransactionID string `json:"transactionId"`
}

type MarkReimbursedResponse struct{}

type GetEventSummaryRequest struct {
	CircleID string `json:"circleId"`
	EventID  string `json:"eventId"`
}

type GetEventSummaryResponse struct {
	Summary *EventSummary `json:"summary"`
}

type PreviewSettlementRequest struct {
	CircleID string `json:"circleId"`
	EventID  string `json:"eventId"`
}

type PreviewSettlementResponse struct {
	Plan *SettlementPlan `json:"plan"`
}

type CommitSettlementRequest struct {
	CircleID    string `json:"circleId"`
	EventID     string `json:"eventId"`
	Mode        string `json:"mode"`
	Fingerprint string `json:"fingerprint"`
}

type CommitSettlementResponse struct {
	Event *Event          `json:"event"`
	Plan  *SettlementPlan `json:"plan"`
	Posts []*Transaction  `json:"posts"`
}

type CloseEventRequest struct {
	CircleID string `json:"circleId"`
	EventID  string `json:"eventId"`
}

type CloseEventResponse struct {
	Event *Event `json:"event"`
}

type WatchEventRequest struct {
	CircleID string `json:"circleId"`
	EventID  string `json:"eventId"`
}

type WatchEventResponse struct {
	Summary *EventSummary `json:"summary"`
}
