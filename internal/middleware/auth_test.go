package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/circlewallet/internal/auth"
)

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	identity := auth.Identity{ID: "id-1", DisplayName: "Alice", Ephemeral: true}
	token, err := jwtManager.Generate(identity)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	tests := []struct {
		name     string
		header   string
		required bool
		wantCode connect.Code
		wantID   string
	}{
		{"valid token", "Bearer " + token, true, 0, "id-1"},
		{"missing header", "", true, connect.CodeUnauthenticated, ""},
		{"wrong scheme", "Basic " + token, true, connect.CodeUnauthenticated, ""},
		{"garbage token", "Bearer nope", true, connect.CodeUnauthenticated, ""},
		{"optional without header", "", false, 0, ""},
		{"optional with garbage", "Bearer nope", false, 0, ""},
		{"optional with token", "Bearer " + token, false, 0, "id-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interceptor := OptionalAuth(jwtManager)
			if tt.required {
				interceptor = RequireAuth(jwtManager)
			}

			var seen auth.Identity
			handler := interceptor.WrapUnary(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
				seen, _ = GetIdentity(ctx)
				return nil, nil
			})

			req := connect.NewRequest(&struct{}{})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}
			_, err := handler(context.Background(), req)

			if tt.wantCode != 0 {
				if connect.CodeOf(err) != tt.wantCode {
					t.Fatalf("expected code %v, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if seen.ID != tt.wantID {
				t.Errorf("identity: expected %q, got %q", tt.wantID, seen.ID)
			}
			if tt.wantID != "" && seen.DisplayName != "Alice" {
				t.Errorf("display name: expected Alice, got %q", seen.DisplayName)
			}
		})
	}
}

func TestGetIdentity(t *testing.T) {
	if _, ok := GetIdentity(context.Background()); ok {
		t.Error("expected no identity on a bare context")
	}
	if GetUserID(context.Background()) != "" {
		t.Error("expected empty user id on a bare context")
	}

	ctx := WithIdentity(context.Background(), auth.Identity{ID: "id-2"})
	id, ok := GetIdentity(ctx)
	if !ok || id.ID != "id-2" {
		t.Errorf("expected id-2, got %+v (ok=%v)", id, ok)
	}
}

func TestLoggingInterceptorPassesThrough(t *testing.T) {
	want := errors.New("boom")
	handler := LoggingInterceptor().WrapUnary(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, want
	})
	if _, err := handler(context.Background(), connect.NewRequest(&struct{}{})); !errors.Is(err, want) {
		t.Errorf("expected the handler error back, got %v", err)
	}
}
