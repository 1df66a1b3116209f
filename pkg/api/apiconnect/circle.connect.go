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
	// CircleServiceName is the fully-qualified name of the CircleService service.
	CircleServiceName = Package + ".CircleService"

	// CircleServiceCreateCircleProcedure is the fully-qualified name of the CircleService's CreateCircle RPC.
	CircleServiceCreateCircleProcedure = "/" + CircleServiceName + "/CreateCircle"
	// CircleServiceGetCircleProcedure is the fully-qualified name of the CircleService's GetCircle RPC.
	CircleServiceGetCircleProcedure = "/" + CircleServiceName + "/GetCircle"
	// CircleServiceJoinCircleProcedure is the fully-qualified name of the CircleService's JoinCircle RPC.
	CircleServiceJoinCircleProcedure = "/" + CircleServiceName + "/JoinCircle"
	// CircleServiceRenameCircleProcedure is the fully-qualified name of the CircleService's RenameCircle RPC.
	CircleServiceRenameCircleProcedure = "/" + CircleServiceName + "/RenameCircle"
	// CircleServiceListMembersProcedure is the fully-qualified name of the CircleService's ListMembers RPC.
	CircleServiceListMembersProcedure = "/" + CircleServiceName + "/ListMembers"
	// CircleServiceCreateEventProcedure is the fully-qualified name of the CircleService's CreateEvent RPC.
	CircleServiceCreateEventProcedure = "/" + CircleServiceName + "/CreateEvent"
	// CircleServiceListEventsProcedure is the fully-qualified name of the CircleService's ListEvents RPC.
	CircleServiceListEventsProcedure = "/" + CircleServiceName + "/ListEvents"
	// CircleServiceAddParticipantProcedure is the fully-qualified name of the CircleService's AddParticipant RPC.
	CircleServiceAddParticipantProcedure = "/" + CircleServiceName + "/AddParticipant"
	// CircleServiceJoinEventProcedure is the fully-qualified name of the CircleService's JoinEvent RPC.
	CircleServiceJoinEventProcedure = "/" + CircleServiceName + "/JoinEvent"
)

// CircleServiceClient is a client for the circlewallet.v1.CircleService service.
type CircleServiceClient interface {
	// CreateCircle creates a circle with the caller as admin.
	CreateCircle(context.Context, *connect.Request[api.CreateCircleRequest]) (*connect.Response[api.CreateCircleResponse], error)
	// GetCircle returns the circle and the caller's role in it.
	GetCircle(context.Context, *connect.Request[api.GetCircleRequest]) (*connect.Response[api.GetCircleResponse], error)
	// JoinCircle adds the caller as a member. Joining twice is a no-op.
	JoinCircle(context.Context, *connect.Request[api.JoinCircleRequest]) (*connect.Response[api.JoinCircleResponse], error)
	RenameCircle(context.Context, *connect.Request[api.RenameCircleRequest]) (*connect.Response[api.RenameCircleResponse], error)
	ListMembers(context.Context, *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error)
	CreateEvent(context.Context, *connect.Request[api.CreateEventRequest]) (*connect.Response[api.CreateEventResponse], error)
	// ListEvents returns the general fund first, then events newest first.
	ListEvents(context.Context, *connect.Request[api.ListEventsRequest]) (*connect.Response[api.ListEventsResponse], error)
	// AddParticipant adds a guest to an event. Admin only.
	AddParticipant(context.Context, *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.AddParticipantResponse], error)
	// JoinEvent registers the caller as a guest of an event.
	JoinEvent(context.Context, *connect.Request[api.JoinEventRequest]) (*connect.Response[api.JoinEventResponse], error)
}

// NewCircleServiceClient constructs a client for the circlewallet.v1.CircleService service.
func NewCircleServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) CircleServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &circleServiceClient{
		createCircle:   connect.NewClient[api.CreateCircleRequest, api.CreateCircleResponse](httpClient, baseURL+CircleServiceCreateCircleProcedure, opts...),
		getCircle:      connect.NewClient[api.GetCircleRequest, api.GetCircleResponse](httpClient, baseURL+CircleServiceGetCircleProcedure, opts...),
		joinCircle:     connect.NewClient[api.JoinCircleRequest, api.JoinCircleResponse](httpClient, baseURL+CircleServiceJoinCircleProcedure, opts...),
		renameCircle:   connect.NewClient[api.RenameCircleRequest, api.RenameCircleResponse](httpClient, baseURL+CircleServiceRenameCircleProcedure, opts...),
		listMembers:    connect.NewClient[api.ListMembersRequest, api.ListMembersResponse](httpClient, baseURL+CircleServiceListMembersProcedure, opts...),
		createEvent:    connect.NewClient[api.CreateEventRequest, api.CreateEventResponse](httpClient, baseURL+CircleServiceCreateEventProcedure, opts...),
		listEvents:     connect.NewClient[api.ListEventsRequest, api.ListEventsResponse](httpClient, baseURL+CircleServiceListEventsProcedure, opts...),
		addParticipant: connect.NewClient[api.AddParticipantRequest, api.AddParticipantResponse](httpClient, baseURL+CircleServiceAddParticipantProcedure, opts...),
		joinEvent:      connect.NewClient[api.JoinEventRequest, api.JoinEventResponse](httpClient, baseURL+CircleServiceJoinEventProcedure, opts...),
	}
}

type circleServiceClient struct {
	createCircle   *connect.Client[api.CreateCircleRequest, api.CreateCircleResponse]
	getCircle      *connect.Client[api.GetCircleRequest, api.GetCircleResponse]
	joinCircle     *connect.Client[api.JoinCircleRequest, api.JoinCircleResponse]
	renameCircle   *connect.Client[api.RenameCircleRequest, api.RenameCircleResponse]
	listMembers    *connect.Client[api.ListMembersRequest, api.ListMembersResponse]
	createEvent    *connect.Client[api.CreateEventRequest, api.CreateEventResponse]
	listEvents     *connect.Client[api.ListEventsRequest, api.ListEventsResponse]
	addParticipant *connect.Client[api.AddParticipantRequest, api.AddParticipantResponse]
	joinEvent      *connect.Client[api.JoinEventRequest, api.JoinEventResponse]
}

func (c *circleServiceClient) CreateCircle(ctx context.Context, req *connect.Request[api.CreateCircleRequest]) (*connect.Response[api.CreateCircleResponse], error) {
	return c.createCircle.CallUnary(ctx, req)
}

func (c *circleServiceClient) GetCircle(ctx context.Context, req *connect.Request[api.GetCircleRequest]) (*connect.Response[api.GetCircleResponse], error) {
	return c.getCircle.CallUnary(ctx, req)
}

func (c *circleServiceClient) JoinCircle(ctx context.Context, req *connect.Request[api.JoinCircleRequest]) (*connect.Response[api.JoinCircleResponse], error) {
	return c.joinCircle.CallUnary(ctx, req)
}

func (c *circleServiceClient) RenameCircle(ctx context.Context, req *connect.Request[api.RenameCircleRequest]) (*connect.Response[api.RenameCircleResponse], error) {
	return c.renameCircle.CallUnary(ctx, req)
}

func (c *circleServiceClient) ListMembers(ctx context.Context, req *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error) {
	return c.listMembers.CallUnary(ctx, req)
}

func (c *circleServiceClient) CreateEvent(ctx context.Context, req *connect.Request[api.CreateEventRequest]) (*connect.Response[api.CreateEventResponse], error) {
	return c.createEvent.CallUnary(ctx, req)
}

func (c *circleServiceClient) ListEvents(ctx context.Context, req *connect.Request[api.ListEventsRequest]) (*connect.Response[api.ListEventsResponse], error) {
	return c.listEvents.CallUnary(ctx, req)
}

func (c *circleServiceClient) AddParticipant(ctx context.Context, req *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.AddParticipantResponse], error) {
	return c.addParticipant.CallUnary(ctx, req)
}

func (c *circleServiceClient) JoinEvent(ctx context.Context, req *connect.Request[api.JoinEventRequest]) (*connect.Response[api.JoinEventResponse], error) {
	return c.joinEvent.CallUnary(ctx, req)
}

// CircleServiceHandler is an implementation of the circlewallet.v1.CircleService service.
type CircleServiceHandler interface {
	CreateCircle(context.Context, *connect.Request[api.CreateCircleRequest]) (*connect.Response[api.CreateCircleResponse], error)
	GetCircle(context.Context, *connect.Request[api.GetCircleRequest]) (*connect.Response[api.GetCircleResponse], error)
	JoinCircle(context.Context, *connect.Request[api.JoinCircleRequest]) (*connect.Response[api.JoinCircleResponse], error)
	RenameCircle(context.Context, *connect.Request[api.RenameCircleRequest]) (*connect.Response[api.RenameCircleResponse], error)
	ListMembers(context.Context, *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error)
	CreateEvent(context.Context, *connect.Request[api.CreateEventRequest]) (*connect.Response[api.CreateEventResponse], error)
	ListEvents(context.Context, *connect.Request[api.ListEventsRequest]) (*connect.Response[api.ListEventsResponse], error)
	AddParticipant(context.Context, *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.AddParticipantResponse], error)
	JoinEvent(context.Context, *connect.Request[api.JoinEventRequest]) (*connect.Response[api.JoinEventResponse], error)
}

// NewCircleServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewCircleServiceHandler(svc CircleServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	createCircle := connect.NewUnaryHandler(CircleServiceCreateCircleProcedure, svc.CreateCircle, opts...)
	getCircle := connect.NewUnaryHandler(CircleServiceGetCircleProcedure, svc.GetCircle, opts...)
	joinCircle := connect.NewUnaryHandler(CircleServiceJoinCircleProcedure, svc.JoinCircle, opts...)
	renameCircle := connect.NewUnaryHandler(CircleServiceRenameCircleProcedure, svc.RenameCircle, opts...)
	listMembers := connect.NewUnaryHandler(CircleServiceListMembersProcedure, svc.ListMembers, opts...)
	createEvent := connect.NewUnaryHandler(CircleServiceCreateEventProcedure, svc.CreateEvent, opts...)
	listEvents := connect.NewUnaryHandler(CircleServiceListEventsProcedure, svc.ListEvents, opts...)
	addParticipant := connect.NewUnaryHandler(CircleServiceAddParticipantProcedure, svc.AddParticipant, opts...)
	joinEvent := connect.NewUnaryHandler(CircleServiceJoinEventProcedure, svc.JoinEvent, opts...)
	return "/" + CircleServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case CircleServiceCreateCircleProcedure:
			createCircle.ServeHTTP(w, r)
		case CircleServiceGetCircleProcedure:
			getCircle.ServeHTTP(w, r)
		case CircleServiceJoinCircleProcedure:
			joinCircle.ServeHTTP(w, r)
		case CircleServiceRenameCircleProcedure:
			renameCircle.ServeHTTP(w, r)
		case CircleServiceListMembersProcedure:
			listMembers.ServeHTTP(w, r)
		case CircleServiceCreateEventProcedure:
			createEvent.ServeHTTP(w, r)
		case CircleServiceListEventsProcedure:
			listEvents.ServeHTTP(w, r)
		case CircleServiceAddParticipantProcedure:
			addParticipant.ServeHTTP(w, r)
		case CircleServiceJoinEventProcedure:
			joinEvent.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedCircleServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedCircleServiceHandler struct{}

func (UnimplementedCircleServiceHandler) CreateCircle(context.Context, *connect.Request[api.CreateCircleRequest]) (*connect.Response[api.CreateCircleResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("circlewallet.v1.CircleService.CreateCircle is not implemented"))
}

func (UnimplementedCircleServiceHandler) GetCircle(context.Context, *connect.Request[api.GetCircleRequest]) (*connect.Response[api.GetCircleResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("circlewallet.v1.CircleService.GetCircle is not implemented"))
}

func (UnimplementedCircleServiceHandler) JoinCircle(context.Context, *connect.Request[api.JoinCircleRequest]) (*connect.Response[api.JoinCircleResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("circlewallet.v1.CircleService.JoinCircle is not implemented"))
}

func (UnimplementedCircleServiceHandler) RenameCircle(context.Context, *connect.Request[api.RenameCircleRequest]) (*connect.Response[api.RenameCircleResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("circlewallet.v1.CircleService.RenameCircle is not implemented"))
}

func (UnimplementedCircleServiceHandler) ListMembers(context.Context, *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("circlewallet.v1.CircleService.ListMembers is not implemented"))
}

func (UnimplementedCircleServiceHandler) CreateEvent(context.Context, *connect.Request[api.CreateEventRequest]) (*connect.Response[api.CreateEventResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("circlewallet.v1.CircleService.CreateEvent is not implemented"))
}

func (UnimplementedCircleServiceHandler) ListEvents(context.Context, *connect.Request[api.ListEventsRequest]) (*connect.Response[api.ListEventsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("circlewallet.v1.CircleService.ListEvents is not implemented"))
}

func (UnimplementedCircleServiceHandler) AddParticipant(context.Context, *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.AddParticipantResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("circlewallet.v1.CircleService.AddParticipant is not implemented"))
}

func (UnimplementedCircleServiceHandler) JoinEvent(context.Context, *connect.Request[api.JoinEventRequest]) (*connect.Response[api.JoinEventResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("circlewallet.v1.CircleService.JoinEvent is not implemented"))
}
