package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/circlewallet/pkg/api"
)

const (
	// LedgerServiceName is the fully-qualified name of the LedgerService service.
	LedgerServiceName = Package + ".LedgerService"

	// LedgerServiceRecordTransactionProcedure is the fully-qualified name of the LedgerService's RecordTransaction RPC.
	LedgerServiceRecordTransactionProcedure = "/" + LedgerServiceName + "/RecordTransaction"
	// LedgerServiceUpdateTransactionProcedure is the fully-qualified name of the LedgerService's UpdateTransaction RPC.
	LedgerServiceUpdateTransactionProcedure = "/" + LedgerServiceName + "/UpdateTransaction"
	// LedgerServiceDeleteTransactionProcedure is the fully-qualified name of the LedgerService's DeleteTransaction RPC.
	LedgerServiceDeleteTransactionProcedure = "/" + LedgerServiceName + "/DeleteTransaction"
	// LedgerServiceTogglePaymentProcedure is the fully-qualified name of the LedgerService's TogglePayment RPC.
	LedgerServiceTogglePaymentProcedure = "/" + LedgerServiceName + "/TogglePayment"
	// LedgerServiceMarkReimbursedProcedure is the fully-qualified name of the LedgerService's MarkReimbursed RPC.
	LedgerServiceMarkReimbursedProcedure = "/" + LedgerServiceName + "/MarkReimbursed"
	// LedgerServiceGetEventSummaryProcedure is the fully-qualified name of the LedgerService's GetEventSummary RPC.
	LedgerServiceGetEventSummaryProcedure = "/" + LedgerServiceName + "/GetEventSummary"
	// LedgerServicePreviewSettlementProcedure is the fully-qualified name of the LedgerService's PreviewSettlement RPC.
	LedgerServicePreviewSettlementProcedure = "/" + LedgerServiceName + "/PreviewSettlement"
	// LedgerServiceCommitSettlementProcedure is the fully-qualified name of the LedgerService's CommitSettlement RPC.
	LedgerServiceCommitSettlementProcedure = "/" + LedgerServiceName + "/CommitSettlement"
	// LedgerServiceCloseEventProcedure is the fully-qualified name of the LedgerService's CloseEvent RPC.
	LedgerServiceCloseEventProcedure = "/" + LedgerServiceName + "/CloseEvent"
	// LedgerServiceWatchEventProcedure is the fully-qualified name of the LedgerService's WatchEvent RPC.
	LedgerServiceWatchEventProcedure = "/" + LedgerServiceName + "/WatchEvent"
)

// LedgerServiceClient is a client for the circlewallet.v1.LedgerService service.
type LedgerServiceClient interface {
	RecordTransaction(context.Context, *connect.Request[api.RecordTransactionRequest]) (*connect.Response[api.RecordTransactionResponse], error)
	UpdateTransaction(context.Context, *connect.Request[api.UpdateTransactionRequest]) (*connect.Response[api.UpdateTransactionResponse], error)
	DeleteTransaction(context.Context, *connect.Request[api.DeleteTransactionRequest]) (*connect.Response[api.DeleteTransactionResponse], error)
	// TogglePayment records or undoes a dues payment.
	TogglePayment(context.Context, *connect.Request[api.TogglePaymentRequest]) (*connect.Response[api.TogglePaymentResponse], error)
	MarkReimbursed(context.Context, *connect.Request[api.MarkReimbursedRequest]) (*connect.Response[api.MarkReimbursedResponse], error)
	GetEventSummary(context.Context, *connect.Request[api.GetEventSummaryRequest]) (*connect.Response[api.GetEventSummaryResponse], error)
	// PreviewSettlement computes a settlement plan without changing anything.
	PreviewSettlement(context.Context, *connect.Request[api.PreviewSettlementRequest]) (*connect.Response[api.PreviewSettlementResponse], error)
	// CommitSettlement closes the event with the previewed plan.
	CommitSettlement(context.Context, *connect.Request[api.CommitSettlementRequest]) (*connect.Response[api.CommitSettlementResponse], error)
	// CloseEvent closes an event that has nobody to settle with.
	CloseEvent(context.Context, *connect.Request[api.CloseEventRequest]) (*connect.Response[api.CloseEventResponse], error)
	// WatchEvent streams a fresh summary after every change to the event.
	WatchEvent(context.Context, *connect.Request[api.WatchEventRequest]) (*connect.ServerStreamForClient[api.WatchEventResponse], error)
}

// NewLedgerServiceClient constructs a client for the circlewallet.v1.LedgerService service.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &ledgerServiceClient{
		recordTransaction: connect.NewClient[api.RecordTransactionRequest, api.RecordTransactionResponse](httpClient, baseURL+LedgerServiceRecordTransactionProcedure, opts...),
		updateTransaction: connect.NewClient[api.UpdateTransactionRequest, api.UpdateTransactionResponse](httpClient, baseURL+LedgerServiceUpdateTransactionProcedure, opts...),
		deleteTransaction: connect.NewClient[api.DeleteTransactionRequest, api.DeleteTransactionResponse](httpClient, baseURL+LedgerServiceDeleteTransactionProcedure, opts...),
		togglePayment:     connect.NewClient[api.TogglePaymentRequest, api.TogglePaymentResponse](httpClient, baseURL+LedgerServiceTogglePaymentProcedure, opts...),
		markReimbursed:    connect.NewClient[api.MarkReimbursedRequest, api.MarkReimbursedResponse](httpClient, baseURL+LedgerServiceMarkReimbursedProcedure, opts...),
		getEventSummary:   connect.NewClient[api.GetEventSummaryRequest, api.GetEventSummaryResponse](httpClient, baseURL+LedgerServiceGetEventSummaryProcedure, opts...),
		previewSettlement: connect.NewClient[api.PreviewSettlementRequest, api.PreviewSettlementResponse](httpClient, baseURL+LedgerServicePreviewSettlementProcedure, opts...),
		commitSettlement:  connect.NewClient[api.CommitSettlementRequest, api.CommitSettlementResponse](httpClient, baseURL+LedgerServiceCommitSettlementProcedure, opts...),
		closeEvent:        connect.NewClient[api.CloseEventRequest, api.CloseEventResponse](httpClient, baseURL+LedgerServiceCloseEventProcedure, opts...),
		watchEvent:        connect.NewClient[api.WatchEventRequest, api.WatchEventResponse](httpClient, baseURL+LedgerServiceWatchEventProcedure, opts...),
	}
}

type ledgerServiceClient struct {
	recordTransaction *connect.Client[api.RecordTransactionRequest, api.RecordTransactionResponse]
	updateTransaction *connect.Client[api.UpdateTransactionRequest, api.UpdateTransactionResponse]
	deleteTransaction *connect.Client[api.DeleteTransactionRequest, api.DeleteTransactionResponse]
	togglePayment     *connect.Client[api.TogglePaymentRequest, api.TogglePaymentResponse]
	markReimbursed    *connect.Client[api.MarkReimbursedRequest, api.MarkReimbursedResponse]
	getEventSummary   *connect.Client[api.GetEventSummaryRequest, api.GetEventSummaryResponse]
	previewSettlement *connect.Client[api.PreviewSettlementRequest, api.PreviewSettlementResponse]
	commitSettlement  *connect.Client[api.CommitSettlementRequest, api.CommitSettlementResponse]
	closeEvent        *connect.Client[api.CloseEventRequest, api.CloseEventResponse]
	watchEvent        *connect.Client[api.WatchEventRequest, api.WatchEventResponse]
}

func (c *ledgerServiceClient) RecordTransaction(ctx context.Context, req *connect.Request[api.RecordTransactionRequest]) (*connect.Response[api.RecordTransactionResponse], error) {
	return c.recordTransaction.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) UpdateTransaction(ctx context.Context, req *connect.Request[api.UpdateTransactionRequest]) (*connect.Response[api.UpdateTransactionResponse], error) {
	return c.updateTransaction.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) DeleteTransaction(ctx context.Context, req *connect.Request[api.DeleteTransactionRequest]) (*connect.Response[api.DeleteTransactionResponse], error) {
	return c.deleteTransaction.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) TogglePayment(ctx context.Context, req *connect.Request[api.TogglePaymentRequest]) (*connect.Response[api.TogglePaymentResponse], error) {
	return c.togglePayment.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) MarkReimbursed(ctx context.Context, req *connect.Request[api.MarkReimbursedRequest]) (*connect.Response[api.MarkReimbursedResponse], error) {
	return c.markReimbursed.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetEventSummary(ctx context.Context, req *connect.Request[api.GetEventSummaryRequest]) (*connect.Response[api.GetEventSummaryResponse], error) {
	return c.getEventSummary.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) PreviewSettlement(ctx context.Context, req *connect.Request[api.PreviewSettlementRequest]) (*connect.Response[api.PreviewSettlementResponse], error) {
	return c.previewSettlement.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) CommitSettlement(ctx context.Context, req *connect.Request[api.CommitSettlementRequest]) (*connect.Response[api.CommitSettlementResponse], error) {
	return c.commitSettlement.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) CloseEvent(ctx context.Context, req *connect.Request[api.CloseEventRequest]) (*connect.Response[api.CloseEventResponse], error) {
	return c.closeEvent.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) WatchEvent(ctx context.Context, req *connect.Request[api.WatchEventRequest]) (*connect.ServerStreamForClient[api.WatchEventResponse], error) {
	return c.watchEvent.CallServerStream(ctx, req)
}

// LedgerServiceHandler is an implementation of the circlewallet.v1.LedgerService service.
type LedgerServiceHandler interface {
	RecordTransaction(context.Context, *connect.Request[api.RecordTransactionRequest]) (*connect.Response[api.RecordTransactionResponse], error)
	UpdateTransaction(context.Context, *connect.Request[api.UpdateTransactionRequest]) (*connect.Response[api.UpdateTransactionResponse], error)
	DeleteTransaction(context.Context, *connect.Request[api.DeleteTransactionRequest]) (*connect.Response[api.DeleteTransactionResponse], error)
	TogglePayment(context.Context, *connect.Request[api.TogglePaymentRequest]) (*connect.Response[api.TogglePaymentResponse], error)
	MarkReimbursed(context.Context, *connect.Request[api.MarkReimbursedRequest]) (*connect.Response[api.MarkReimbursedResponse], error)
	GetEventSummary(context.Context, *connect.Request[api.GetEventSummaryRequest]) (*connect.Response[api.GetEventSummaryResponse], error)
	PreviewSettlement(context.Context, *connect.Request[api.PreviewSettlementRequest]) (*connect.Response[api.PreviewSettlementResponse], error)
	CommitSettlement(context.Context, *connect.Request[api.CommitSettlementRequest]) (*connect.Response[api.CommitSettlementResponse], error)
	CloseEvent(context.Context, *connect.Request[api.CloseEventRequest]) (*connect.Response[api.CloseEventResponse], error)
	WatchEvent(context.Context, *connect.Request[api.WatchEventRequest], *connect.ServerStream[api.WatchEventResponse]) error
}

// NewLedgerServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	recordTransaction := connect.NewUnaryHandler(LedgerServiceRecordTransactionProcedure, svc.RecordTransaction, opts...)
	updateTransaction := connect.NewUnaryHandler(LedgerServiceUpdateTransactionProcedure, svc.UpdateTransaction, opts...)
	deleteTransaction := connect.NewUnaryHandler(LedgerServiceDeleteTransactionProcedure, svc.DeleteTransaction, opts...)
	togglePayment := connect.NewUnaryHandler(LedgerServiceTogglePaymentProcedure, svc.TogglePayment, opts...)
	markReimbursed := connect.NewUnaryHandler(LedgerServiceMarkReimbursedProcedure, svc.MarkReimbursed, opts...)
	getEventSummary := connect.NewUnaryHandler(LedgerServiceGetEventSummaryProcedure, svc.GetEventSummary, opts...)
	previewSettlement := connect.NewUnaryHandler(LedgerServicePreviewSettlementProcedure, svc.PreviewSettlement, opts...)
	commitSettlement := connect.NewUnaryHandler(LedgerServiceCommitSettlementProcedure, svc.CommitSettlement, opts...)
	closeEvent := connect.NewUnaryHandler(LedgerServiceCloseEventProcedure, svc.CloseEvent, opts...)
	watchEvent := connect.NewServerStreamHandler(LedgerServiceWatchEventProcedure, svc.WatchEvent, opts...)
	return "/" + LedgerServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case LedgerServiceRecordTransactionProcedure:
			recordTransaction.ServeHTTP(w, r)
		case LedgerServiceUpdateTransactionProcedure:
			updateTransaction.ServeHTTP(w, r)
		case LedgerServiceDeleteTransactionProcedure:
			deleteTransaction.ServeHTTP(w, r)
		case LedgerServiceTogglePaymentProcedure:
			togglePayment.ServeHTTP(w, r)
		case LedgerServiceMarkReimbursedProcedure:
			markReimbursed.ServeHTTP(w, r)
		case LedgerServiceGetEventSummaryProcedure:
			getEventSummary.ServeHTTP(w, r)
		case LedgerServicePreviewSettlementProcedure:
			previewSettlement.ServeHTTP(w, r)
		case LedgerServiceCommitSettlementProcedure:
			commitSettlement.ServeHTTP(w, r)
		case LedgerServiceCloseEventProcedure:
			closeEvent.ServeHTTP(w, r)
		case LedgerServiceWatchEventProcedure:
			watchEvent.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedLedgerServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedLedgerServiceHandler struct{}

func (UnimplementedLedgerServiceHandler) RecordTransaction(context.Context, *connect.Request[api.RecordTransactionRequest]) (*connect.Response[api.RecordTransactionResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("circlewallet.v1.LedgerService.RecordTransaction is not implemented"))
}

func (UnimplementedLedgerServiceHandler) UpdateTransaction(context.Context, *connect.Request[api.UpdateTransactionRequest]) (*connect.Response[api.UpdateTransactionResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("circlewallet.v1.LedgerService.UpdateTransaction is not implemented"))
}

func (UnimplementedLedgerServiceHandler) DeleteTransaction(context.Context, *connect.Request[api.DeleteTransactionRequest]) (*connect.Response[api.DeleteTransactionResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("circlewallet.v1.LedgerService.DeleteTransaction is not implemented"))
}

func (UnimplementedLedgerServiceHandler) TogglePayment(context.Context, *connect.Request[api.TogglePaymentRequest]) (*connect.Response[api.TogglePaymentResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("circlewallet.v1.LedgerService.TogglePayment is not implemented"))
}

func (UnimplementedLedgerServiceHandler) MarkReimbursed(context.Context, *connect.Request[api.MarkReimbursedRequest]) (*connect.Response[api.MarkReimbursedResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("circlewallet.v1.LedgerService.MarkReimbursed is not implemented"))
}

func (UnimplementedLedgerServiceHandler) GetEventSummary(context.Context, *connect.Request[api.GetEventSummaryRequest]) (*connect.Response[api.GetEventSummaryResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("circlewallet.v1.LedgerService.GetEventSummary is not implemented"))
}

func (UnimplementedLedgerServiceHandler) PreviewSettlement(context.Context, *connect.Request[api.PreviewSettlementRequest]) (*connect.Response[api.PreviewSettlementResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("circlewallet.v1.LedgerService.PreviewSettlement is not implemented"))
}

func (UnimplementedLedgerServiceHandler) CommitSettlement(context.Context, *connect.Request[api.CommitSettlementRequest]) (*connect.Response[api.CommitSettlementResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("circlewallet.v1.LedgerService.CommitSettlement is not implemented"))
}

func (UnimplementedLedgerServiceHandler) CloseEvent(context.Context, *connect.Request[api.CloseEventRequest]) (*connect.Response[api.CloseEventResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("circlewallet.v1.LedgerService.CloseEvent is not implemented"))
}

func (UnimplementedLedgerServiceHandler) WatchEvent(context.Context, *connect.Request[api.WatchEventRequest], *connect.ServerStream[api.WatchEventResponse]) error {
	return connect.NewError(connect.CodeUnimplemented, errors.New("circlewallet.v1.LedgerService.WatchEvent is not implemented"))
}
