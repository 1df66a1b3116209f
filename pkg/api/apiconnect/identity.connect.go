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
	// IdentityServiceName is the fully-qualified name of the IdentityService service.
	IdentityServiceName = Package + ".IdentityService"

	// IdentityServiceSignInProcedure is the fully-qualified name of the IdentityService's SignIn RPC.
	IdentityServiceSignInProcedure = "/" + IdentityServiceName + "/SignIn"
)

// IdentityServiceClient is a client for the circlewallet.v1.IdentityService service.
type IdentityServiceClient interface {
	// SignIn issues an identity token. Sending an existing token renames that identity.
	SignIn(context.Context, *connect.Request[api.SignInRequest]) (*connect.Response[api.SignInResponse], error)
}

// NewIdentityServiceClient constructs a client for the circlewallet.v1.IdentityService service.
func NewIdentityServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) IdentityServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &identityServiceClient{
		signIn: connect.NewClient[api.SignInRequest, api.SignInResponse](httpClient, baseURL+IdentityServiceSignInProcedure, opts...),
	}
}

type identityServiceClient struct {
	signIn *connect.Client[api.SignInRequest, api.SignInResponse]
}

func (c *identityServiceClient) SignIn(ctx context.Context, req *connect.Request[api.SignInRequest]) (*connect.Response[api.SignInResponse], error) {
	return c.signIn.CallUnary(ctx, req)
}

// IdentityServiceHandler is an implementation of the circlewallet.v1.IdentityService service.
type IdentityServiceHandler interface {
	SignIn(context.Context, *connect.Request[api.SignInRequest]) (*connect.Response[api.SignInResponse], error)
}

// NewIdentityServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewIdentityServiceHandler(svc IdentityServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	signIn := connect.NewUnaryHandler(IdentityServiceSignInProcedure, svc.SignIn, opts...)
	return "/" + IdentityServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case IdentityServiceSignInProcedure:
			signIn.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedIdentityServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedIdentityServiceHandler struct{}

func (UnimplementedIdentityServiceHandler) SignIn(context.Context, *connect.Request[api.SignInRequest]) (*connect.Response[api.SignInResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("circlewallet.v1.IdentityService.SignIn is not implemented"))
}
