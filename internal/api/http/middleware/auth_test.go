package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/meshvault/meshvault-server/internal/model"
)

// MockTokenManager mocks the TokenManager interface
type MockTokenManager struct {
	mock.Mock
}

func (m *MockTokenManager) GenerateSessionToken(accountID string) (string, error) {
	args := m.Called(accountID)
	return args.String(0), args.Error(1)
}

func (m *MockTokenManager) ParseSessionToken(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

// MockResolver mocks the PrincipalResolver interface
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) ResolvePrincipal(ctx context.Context, accountID string) (*model.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func capturePrincipal(t *testing.T, called *bool, got *model.Account, gotOK *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		*got, *gotOK = PrincipalFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestOptionalAuth(t *testing.T) {
	account := model.Account{ID: "acc-1", Username: "ada"}

	tests := []struct {
		name          string
		header        string
		setupMocks    func(tokens *MockTokenManager, resolver *MockResolver)
		wantPrincipal bool
	}{
		{
			name:       "no header passes through anonymously",
			header:     "",
			setupMocks: func(tokens *MockTokenManager, resolver *MockResolver) {},
		},
		{
			name:   "invalid token degrades to anonymous",
			header: "Bearer bad-token",
			setupMocks: func(tokens *MockTokenManager, resolver *MockResolver) {
				tokens.On("ParseSessionToken", "bad-token").Return("", errors.New("invalid token"))
			},
		},
		{
			name:   "stale session degrades to anonymous",
			header: "Bearer stale-token",
			setupMocks: func(tokens *MockTokenManager, resolver *MockResolver) {
				tokens.On("ParseSessionToken", "stale-token").Return("gone", nil)
				resolver.On("ResolvePrincipal", mock.Anything, "gone").Return(nil, nil)
			},
		},
		{
			name:   "valid token attaches principal",
			header: "Bearer good-token",
			setupMocks: func(tokens *MockTokenManager, resolver *MockResolver) {
				tokens.On("ParseSessionToken", "good-token").Return("acc-1", nil)
				resolver.On("ResolvePrincipal", mock.Anything, "acc-1").Return(&account, nil)
			},
			wantPrincipal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := new(MockTokenManager)
			resolver := new(MockResolver)
			tt.setupMocks(tokens, resolver)

			var called, gotOK bool
			var got model.Account
			handler := OptionalAuth(AuthDeps{Tokens: tokens, Resolver: resolver}, capturePrincipal(t, &called, &got, &gotOK))

			req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			require.True(t, called, "next handler must always run")
			assert.Equal(t, tt.wantPrincipal, gotOK)
			if tt.wantPrincipal {
				assert.Equal(t, account, got)
			}
			tokens.AssertExpectations(t)
			resolver.AssertExpectations(t)
		})
	}
}

func TestRequireAuth(t *testing.T) {
	account := model.Account{ID: "acc-1", Username: "ada"}

	tests := []struct {
		name       string
		header     string
		setupMocks func(tokens *MockTokenManager, resolver *MockResolver)
		wantStatus int
		wantNext   bool
	}{
		{
			name:       "missing header rejected",
			header:     "",
			setupMocks: func(tokens *MockTokenManager, resolver *MockResolver) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed header rejected",
			header:     "Token abc",
			setupMocks: func(tokens *MockTokenManager, resolver *MockResolver) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "invalid token rejected",
			header: "Bearer bad-token",
			setupMocks: func(tokens *MockTokenManager, resolver *MockResolver) {
				tokens.On("ParseSessionToken", "bad-token").Return("", errors.New("invalid token"))
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "stale session rejected",
			header: "Bearer stale-token",
			setupMocks: func(tokens *MockTokenManager, resolver *MockResolver) {
				tokens.On("ParseSessionToken", "stale-token").Return("gone", nil)
				resolver.On("ResolvePrincipal", mock.Anything, "gone").Return(nil, nil)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "resolver failure is a server error",
			header: "Bearer good-token",
			setupMocks: func(tokens *MockTokenManager, resolver *MockResolver) {
				tokens.On("ParseSessionToken", "good-token").Return("acc-1", nil)
				resolver.On("ResolvePrincipal", mock.Anything, "acc-1").Return(nil, errors.New("store down"))
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:   "valid token passes through",
			header: "Bearer good-token",
			setupMocks: func(tokens *MockTokenManager, resolver *MockResolver) {
				tokens.On("ParseSessionToken", "good-token").Return("acc-1", nil)
				resolver.On("ResolvePrincipal", mock.Anything, "acc-1").Return(&account, nil)
			},
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := new(MockTokenManager)
			resolver := new(MockResolver)
			tt.setupMocks(tokens, resolver)

			var called, gotOK bool
			var got model.Account
			handler := RequireAuth(AuthDeps{Tokens: tokens, Resolver: resolver}, capturePrincipal(t, &called, &got, &gotOK))

			req := httptest.NewRequest(http.MethodDelete, "/api/model/1", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantNext, called)
			if tt.wantNext {
				require.True(t, gotOK)
				assert.Equal(t, account, got)
			} else {
				assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.NotEmpty(t, body["error"])
			}
			tokens.AssertExpectations(t)
			resolver.AssertExpectations(t)
		})
	}
}

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "standard", header: "Bearer token123", want: "token123"},
		{name: "case insensitive scheme", header: "bearer token123", want: "token123"},
		{name: "padded token", header: "Bearer  token123 ", want: "token123"},
		{name: "empty", header: "", want: ""},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", want: ""},
		{name: "scheme only", header: "Bearer ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractBearer(tt.header))
		})
	}
}
