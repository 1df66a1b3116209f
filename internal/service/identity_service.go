package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/circlewallet/internal/auth"
	"github.com/mmynk/circlewallet/internal/middleware"
	"github.com/mmynk/circlewallet/pkg/api"
	"github.com/mmynk/circlewallet/pkg/api/apiconnect"
)

// IdentityService implements the IdentityService RPC interface.
type IdentityService struct {
	apiconnect.UnimplementedIdentityServiceHandler
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

// NewIdentityService creates a new identity service.
func NewIdentityService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, logger *slog.Logger) *IdentityService {
	return &IdentityService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

// SignIn issues an identity token for a display name. A caller that already
// holds a valid token keeps its identity id and only changes its name.
func (s *IdentityService) SignIn(ctx context.Context, req *connect.Request[api.SignInRequest]) (*connect.Response[api.SignInResponse], error) {
	var previous *auth.Identity
	if id, ok := middleware.GetIdentity(ctx); ok {
		previous = &id
	}
	s.logger.Info("SignIn request", "renaming", previous != nil)

	identity, err := s.authenticator.SignIn(ctx, req.Msg.DisplayName, previous)
	if err != nil {
		s.logger.Warn("SignIn failed", "error", err)
		if errors.Is(err, auth.ErrEmptyDisplayName) || errors.Is(err, auth.ErrLongDisplayName) {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		return nil, connect.NewError(connect.CodeInternal, errInternal)
	}

	// Generate JWT token
	token, err := s.jwtManager.Generate(identity)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", identity.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, errInternal)
	}

	s.logger.Info("Identity signed in", "user_id", identity.ID, "ephemeral", identity.Ephemeral)
	return connect.NewResponse(&api.SignInResponse{
		Identity: toAPIIdentity(identity),
		Token:    token,
	}), nil
}
