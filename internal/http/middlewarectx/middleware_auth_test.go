package middlewarectx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mwalimuclement/theory-access/internal/lib/jwt"
	"github.com/mwalimuclement/theory-access/internal/models"
	"github.com/mwalimuclement/theory-access/internal/sessions"
)

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Get(ctx context.Context, tokenID string) (*sessions.Record, bool, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*sessions.Record), args.Bool(1), args.Error(2)
}

type MockUserProvider struct {
	mock.Mock
}

func (m *MockUserProvider) Profile(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestSessionMiddleware(t *testing.T) {
	maker := jwt.NewMaker("test-secret")

	token, claims, err := maker.GenerateToken("user-1", jwt.RoleUser, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		setupStore     func(*MockSessionStore)
		expectedStatus int
		expectNext     bool
	}{
		{
			name:       "valid token with open session",
			authHeader: "Bearer " + token,
			setupStore: func(s *MockSessionStore) {
				s.On("Get", mock.Anything, claims.ID).
					Return(&sessions.Record{UserID: "user-1", Role: jwt.RoleUser}, true, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:           "missing header",
			authHeader:     "",
			setupStore:     func(_ *MockSessionStore) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "malformed header",
			authHeader:     "Token abc",
			setupStore:     func(_ *MockSessionStore) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "garbage token",
			authHeader:     "Bearer not-a-jwt",
			setupStore:     func(_ *MockSessionStore) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:       "session revoked",
			authHeader: "Bearer " + token,
			setupStore: func(s *MockSessionStore) {
				s.On("Get", mock.Anything, claims.ID).Return(nil, false, nil).Once()
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockSessionStore)
			tt.setupStore(store)

			var gotUserID, gotRole, gotTokenID string
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				gotUserID, _ = r.Context().Value(UserID).(string)
				gotRole, _ = r.Context().Value(Role).(string)
				gotTokenID, _ = r.Context().Value(TokenID).(string)
				w.WriteHeader(http.StatusOK)
			})

			handler := SessionMiddleware(maker, store, newNoopLogger())(next)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectNext, nextCalled)
			if tt.expectNext {
				assert.Equal(t, "user-1", gotUserID)
				assert.Equal(t, jwt.RoleUser, gotRole)
				assert.Equal(t, claims.ID, gotTokenID)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestSessionMiddleware_ExpiredToken(t *testing.T) {
	maker := jwt.NewMaker("test-secret")
	token, _, err := maker.GenerateToken("user-1", jwt.RoleUser, -time.Minute)
	require.NoError(t, err)

	store := new(MockSessionStore)
	handler := SessionMiddleware(maker, store, newNoopLogger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	store.AssertExpectations(t)
}

func TestAdminOnlyMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		role           any
		expectedStatus int
	}{
		{name: "admin passes", role: jwt.RoleAdmin, expectedStatus: http.StatusOK},
		{name: "user rejected", role: jwt.RoleUser, expectedStatus: http.StatusForbidden},
		{name: "role missing", role: nil, expectedStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := AdminOnlyMiddleware(newNoopLogger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.role != nil {
				req = req.WithContext(context.WithValue(req.Context(), Role, tt.role))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}

func TestAccessWindowMiddleware(t *testing.T) {
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name           string
		userID         any
		setupUsers     func(*MockUserProvider)
		expectedStatus int
	}{
		{
			name:   "active window passes",
			userID: "user-1",
			setupUsers: func(u *MockUserProvider) {
				u.On("Profile", mock.Anything, "user-1").
					Return(&models.User{ID: "user-1", SubscriptionExpiry: &future}, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "expired window rejected",
			userID: "user-1",
			setupUsers: func(u *MockUserProvider) {
				u.On("Profile", mock.Anything, "user-1").
					Return(&models.User{ID: "user-1", SubscriptionExpiry: &past}, nil).Once()
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:   "no window rejected",
			userID: "user-1",
			setupUsers: func(u *MockUserProvider) {
				u.On("Profile", mock.Anything, "user-1").
					Return(&models.User{ID: "user-1"}, nil).Once()
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "user missing from context",
			userID:         nil,
			setupUsers:     func(_ *MockUserProvider) {},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserProvider)
			tt.setupUsers(users)

			handler := AccessWindowMiddleware(newNoopLogger(), users)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.userID != nil {
				req = req.WithContext(context.WithValue(req.Context(), UserID, tt.userID))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			users.AssertExpectations(t)
		})
	}
}
