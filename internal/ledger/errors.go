package ledger

import (
	"errors"
	"fmt"

	"github.com/mmynk/circlewallet/internal/storage"
)

// Sentinel errors for common failure scenarios.
var (
	// Authorization errors
	ErrForbidden = errors.New("ledger: not allowed for your role")

	// State errors
	ErrNotFound           = errors.New("ledger: not found")
	ErrEventClosed        = errors.New("ledger: event is closed")
	ErrAlreadyClosed      = errors.New("ledger: event is already closed")
	ErrGeneralFund        = errors.New("ledger: not possible on the general fund")
	ErrAlreadyPaid        = errors.New("ledger: dues already paid")
	ErrAlreadyReimbursed  = errors.New("ledger: expense already reimbursed")
	ErrStalePlan          = errors.New("ledger: transactions changed since the settlement was calculated")
	ErrSettlementRequired = errors.New("ledger: event has people to settle with; commit a settlement instead")

	// Validation errors
	ErrNothingToSettle = errors.New("ledger: nobody to settle with")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("ledger: invalid %s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return ValidationError{Field: field, Message: message}
}

// ErrorKind classifies ledger errors for callers that map them onto a transport.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAuthorization
	KindState
	KindValidation
	KindStore
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindState:
		return "state"
	case KindValidation:
		return "validation"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// Kind classifies err. Errors that are none of the ledger's own are store errors.
func Kind(err error) ErrorKind {
	var verr ValidationError
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrForbidden):
		return KindAuthorization
	case errors.As(err, &verr), errors.Is(err, ErrNothingToSettle):
		return KindValidation
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrEventClosed),
		errors.Is(err, ErrAlreadyClosed),
		errors.Is(err, ErrGeneralFund),
		errors.Is(err, ErrAlreadyPaid),
		errors.Is(err, ErrAlreadyReimbursed),
		errors.Is(err, ErrStalePlan),
		errors.Is(err, ErrSettlementRequired):
		return KindState
	default:
		return KindStore
	}
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, storage.ErrNotFound)
}

// translate maps store sentinels onto ledger errors, keeping the original in the chain.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, storage.ErrClosed):
		return fmt.Errorf("%w: %w", ErrEventClosed, err)
	default:
		return err
	}
}
