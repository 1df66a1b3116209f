package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/circlewallet/internal/ledger"
	"github.com/mmynk/circlewallet/pkg/api"
	"github.com/mmynk/circlewallet/pkg/api/apiconnect"
)

// CircleService implements the Connect CircleService
type CircleService struct {
	apiconnect.UnimplementedCircleServiceHandler
	ledger *ledger.Ledger
}

// NewCircleService creates a new CircleService on top of the ledger.
func NewCircleService(l *ledger.Ledger) *CircleService {
	return &CircleService{ledger: l}
}

// CreateCircle creates a new circle with the caller as its admin.
func (s *CircleService) CreateCircle(ctx context.Context, req *connect.Request[api.CreateCircleRequest]) (*connect.Response[api.CreateCircleResponse], error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateCircle request received", "name", req.Msg.Name, "user_id", id.ID)

	circle, err := s.ledger.CreateCircle(ctx, id, req.Msg.Name)
	if err != nil {
		return nil, fail("CreateCircle", err)
	}

	return connect.NewResponse(&api.CreateCircleResponse{Circle: toAPICircle(circle)}), nil
}

// GetCircle retrieves a circle by its join code.
func (s *CircleService) GetCircle(ctx context.Context, req *connect.Request[api.GetCircleRequest]) (*connect.Response[api.GetCircleResponse], error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetCircle request received", "circle_id", req.Msg.CircleID)

	circle, role, err := s.ledger.GetCircle(ctx, id, req.Msg.CircleID)
	if err != nil {
		return nil, fail("GetCircle", err, "circle_id", req.Msg.CircleID)
	}

	return connect.NewResponse(&api.GetCircleResponse{
		Circle: toAPICircle(circle),
		Role:   string(role),
	}), nil
}

// JoinCircle adds the caller to a circle as a member.
func (s *CircleService) JoinCircle(ctx context.Context, req *connect.Request[api.JoinCircleRequest]) (*connect.Response[api.JoinCircleResponse], error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("JoinCircle request received", "circle_id", req.Msg.CircleID, "user_id", id.ID)

	member, err := s.ledger.JoinCircle(ctx, id, req.Msg.CircleID, req.Msg.DisplayName)
	if err != nil {
		return nil, fail("JoinCircle", err, "circle_id", req.Msg.CircleID)
	}

	return connect.NewResponse(&api.JoinCircleResponse{Member: toAPIMember(member)}), nil
}

// RenameCircle changes a circle's display name.
func (s *CircleService) RenameCircle(ctx context.Context, req *connect.Request[api.RenameCircleRequest]) (*connect.Response[api.RenameCircleResponse], error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RenameCircle request received", "circle_id", req.Msg.CircleID, "name", req.Msg.Name)

	if err := s.ledger.RenameCircle(ctx, id, req.Msg.CircleID, req.Msg.Name); err != nil {
		return nil, fail("RenameCircle", err, "circle_id", req.Msg.CircleID)
	}

	// Fetch the renamed circle
	circle, _, err := s.ledger.GetCircle(ctx, id, req.Msg.CircleID)
	if err != nil {
		return nil, fail("RenameCircle", err, "circle_id", req.Msg.CircleID)
	}

	return connect.NewResponse(&api.RenameCircleResponse{Circle: toAPICircle(circle)}), nil
}

// ListMembers returns a circle's roster in join order.
func (s *CircleService) ListMembers(ctx context.Context, req *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListMembers request received", "circle_id", req.Msg.CircleID)

	members, err := s.ledger.ListMembers(ctx, id, req.Msg.CircleID)
	if err != nil {
		return nil, fail("ListMembers", err, "circle_id", req.Msg.CircleID)
	}

	out := make([]*api.Member, len(members))
	for i, m := range members {
		out[i] = toAPIMember(m)
	}

	slog.Info("ListMembers successful", "circle_id", req.Msg.CircleID, "count", len(out))
	return connect.NewResponse(&api.ListMembersResponse{Members: out}), nil
}

// CreateEvent opens a new event in a circle.
func (s *CircleService) CreateEvent(ctx context.Context, req *connect.Request[api.CreateEventRequest]) (*connect.Response[api.CreateEventResponse], error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateEvent request received",
		"circle_id", req.Msg.CircleID,
		"title", req.Msg.Title,
		"fee_per_person", req.Msg.FeePerPerson,
	)

	event, err := s.ledger.CreateEvent(ctx, id, req.Msg.CircleID, req.Msg.Title, req.Msg.FeePerPerson)
	if err != nil {
		return nil, fail("CreateEvent", err, "circle_id", req.Msg.CircleID)
	}

	return connect.NewResponse(&api.CreateEventResponse{Event: toAPIEvent(event)}), nil
}

// ListEvents returns a circle's events, general fund first.
func (s *CircleService) ListEvents(ctx context.Context, req *connect.Request[api.ListEventsRequest]) (*connect.Response[api.ListEventsResponse], error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListEvents request received", "circle_id", req.Msg.CircleID)

	events, err := s.ledger.ListEvents(ctx, id, req.Msg.CircleID)
	if err != nil {
		return nil, fail("ListEvents", err, "circle_id", req.Msg.CircleID)
	}

	slog.Info("ListEvents successful", "circle_id", req.Msg.CircleID, "count", len(events))
	return connect.NewResponse(&api.ListEventsResponse{Events: toAPIEvents(events)}), nil
}

// AddParticipant adds a guest to an event.
func (s *CircleService) AddParticipant(ctx context.Context, req *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.AddParticipantResponse], error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("AddParticipant request received", "circle_id", req.Msg.CircleID, "event_id", req.Msg.EventID)

	p, err := s.ledger.AddParticipant(ctx, id, req.Msg.CircleID, req.Msg.EventID, req.Msg.DisplayName, req.Msg.Paid)
	if err != nil {
		return nil, fail("AddParticipant", err, "circle_id", req.Msg.CircleID, "event_id", req.Msg.EventID)
	}

	return connect.NewResponse(&api.AddParticipantResponse{Participant: toAPIParticipant(p)}), nil
}

// JoinEvent registers the caller as a guest of an event.
func (s *CircleService) JoinEvent(ctx context.Context, req *connect.Request[api.JoinEventRequest]) (*connect.Response[api.JoinEventResponse], error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("JoinEvent request received", "circle_id", req.Msg.CircleID, "event_id", req.Msg.EventID, "user_id", id.ID)

	p, err := s.ledger.JoinEvent(ctx, id, req.Msg.CircleID, req.Msg.EventID, req.Msg.DisplayName)
	if err != nil {
		return nil, fail("JoinEvent", err, "circle_id", req.Msg.CircleID, "event_id", req.Msg.EventID)
	}

	return connect.NewResponse(&api.JoinEventResponse{Participant: toAPIParticipant(p)}), nil
}
