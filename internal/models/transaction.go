package models

// TransactionType discriminates the five kinds of ledger entry.
type TransactionType string

const (
	// TypeCollection is a dues payment into the event. At most one per (event, user).
	TypeCollection TransactionType = "collection"
	// TypeExpense is an out-of-pocket spend awaiting reimbursement.
	TypeExpense TransactionType = "expense"
	// TypeAdminExpense is a direct spend from pooled funds; reimbursed at creation.
	TypeAdminExpense TransactionType = "admin_expense"
	// TypeGeneralIncome is posted only to the general fund.
	TypeGeneralIncome TransactionType = "general_income"
	// TypeGeneralExpense is posted only to the general fund.
	TypeGeneralExpense TransactionType = "general_expense"
)

// Class is the side of the ledger a transaction type counts towards.
type Class int

const (
	ClassNone Class = iota
	ClassIncome
	ClassExpense
)

var typeClasses = map[TransactionType]Class{
	TypeCollection:     ClassIncome,
	TypeGeneralIncome:  ClassIncome,
	TypeExpense:        ClassExpense,
	TypeAdminExpense:   ClassExpense,
	TypeGeneralExpense: ClassExpense,
}

// Class returns the ledger side for t, or ClassNone for unknown types.
func (t TransactionType) Class() Class {
	return typeClasses[t]
}

// Valid reports whether t is one of the five known types.
func (t TransactionType) Valid() bool {
	_, ok := typeClasses[t]
	return ok
}

// GeneralOnly reports whether t may only be posted to the general fund.
func (t TransactionType) GeneralOnly() bool {
	return t == TypeGeneralIncome || t == TypeGeneralExpense
}

// Category tags what a transaction was spent on.
type Category string

const (
	CategoryFood      Category = "food"
	CategoryTransport Category = "transport"
	CategoryStay      Category = "stay"
	CategoryGoods     Category = "goods"
	CategoryOther     Category = "other"
)

// NormalizeCategory maps unknown or empty categories to CategoryOther.
func NormalizeCategory(c string) Category {
	switch Category(c) {
	case CategoryFood, CategoryTransport, CategoryStay, CategoryGoods:
		return Category(c)
	default:
		return CategoryOther
	}
}

// Transaction is the atomic ledger entry.
type Transaction struct {
	ID       string
	CircleID string
	EventID  string

	// UserID is the identity the entry is attributed to (the payer for collections).
	UserID string

	// UserName is the display name snapshotted at write time.
	UserName string

	Type        TransactionType
	Description string
	CreatedAt   int64

	// Summary carries the amount block. A nil Summary means the stored document
	// is malformed; readers treat its amount as zero.
	Summary *Summary
}

// Summary is the monetary block of a transaction.
type Summary struct {
	// TotalAmount is a non-negative count of whole currency units.
	TotalAmount int64

	Category Category

	// IsReimbursed only ever moves from false to true. Meaningful for expenses;
	// admin expenses are created already reimbursed.
	IsReimbursed bool
}

// IsPendingReimbursement reports whether t is an expense still owed to its author.
func (t *Transaction) IsPendingReimbursement() bool {
	return t.Type == TypeExpense && t.Summary != nil && !t.Summary.IsReimbursed
}

// TransactionPatch is a partial update of the editable fields of a transaction.
// Nil fields are left untouched.
type TransactionPatch struct {
	TotalAmount *int64
	Description *string
	Category    *Category
}

// Empty reports whether the patch changes nothing.
func (p TransactionPatch) Empty() bool {
	return p.TotalAmount == nil && p.Description == nil && p.Category == nil
}
