package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/circlewallet/internal/auth"
	"github.com/mmynk/circlewallet/internal/ledger"
	"github.com/mmynk/circlewallet/internal/middleware"
)

var errInternal = errors.New("internal error")

// stateErrors are reported by their sentinel message alone; the wrapped
// store detail stays in the server log.
var stateErrors = []struct {
	err  error
	code connect.Code
}{
	{ledger.ErrNotFound, connect.CodeNotFound},
	{ledger.ErrStalePlan, connect.CodeAborted},
	{ledger.ErrAlreadyPaid, connect.CodeAlreadyExists},
	{ledger.ErrAlreadyClosed, connect.CodeFailedPrecondition},
	{ledger.ErrEventClosed, connect.CodeFailedPrecondition},
	{ledger.ErrGeneralFund, connect.CodeFailedPrecondition},
	{ledger.ErrAlreadyReimbursed, connect.CodeFailedPrecondition},
	{ledger.ErrSettlementRequired, connect.CodeFailedPrecondition},
}

// connectError maps a ledger error onto a Connect error.
func connectError(err error) *connect.Error {
	switch ledger.Kind(err) {
	case ledger.KindAuthorization:
		return connect.NewError(connect.CodePermissionDenied, ledger.ErrForbidden)
	case ledger.KindValidation:
		var verr ledger.ValidationError
		if errors.As(err, &verr) {
			return connect.NewError(connect.CodeInvalidArgument, verr)
		}
		return connect.NewError(connect.CodeInvalidArgument, ledger.ErrNothingToSettle)
	case ledger.KindState:
		for _, s := range stateErrors {
			if errors.Is(err, s.err) {
				return connect.NewError(s.code, s.err)
			}
		}
		return connect.NewError(connect.CodeFailedPrecondition, err)
	default:
		return connect.NewError(connect.CodeInternal, errInternal)
	}
}

// fail logs a failed request and returns its Connect error.
// Store failures are logged at error level, everything else at info.
func fail(method string, err error, args ...any) *connect.Error {
	args = append(args, "error", err)
	if ledger.Kind(err) == ledger.KindStore {
		slog.Error(method+" failed", args...)
	} else {
		slog.Info(method+" refused", args...)
	}
	return connectError(err)
}

// identity returns the authenticated caller.
func identity(ctx context.Context) (auth.Identity, error) {
	id, ok := middleware.GetIdentity(ctx)
	if !ok {
		return auth.Identity{}, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return id, nil
}
