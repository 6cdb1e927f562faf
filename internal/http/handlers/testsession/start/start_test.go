package start

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mwalimuclement/theory-access/internal/http/middlewarectx"
	"github.com/mwalimuclement/theory-access/internal/http/response"
	"github.com/mwalimuclement/theory-access/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Start(ctx context.Context, userID string, language models.TestLanguage, testType models.TestType) (*models.TestSession, error) {
	args := m.Called(ctx, userID, language, testType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TestSession), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestHandler_ServeHTTP(t *testing.T) {
	created := &models.TestSession{
		ID:       "sess-1",
		UserID:   "user-1",
		Language: models.LangKinyarwanda,
		TestType: models.TestPractice,
	}

	tests := []struct {
		name           string
		userID         any
		requestBody    any
		setupMock      func(*ServiceMock)
		wantStatusCode int
		wantError      string
	}{
		{
			name:        "valid start",
			userID:      "user-1",
			requestBody: Request{Language: "kinyarwanda", TestType: "practice"},
			setupMock: func(s *ServiceMock) {
				s.On("Start", mock.Anything, "user-1",
					models.LangKinyarwanda, models.TestPractice).
					Return(created, nil).Once()
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "user missing from context",
			userID:         nil,
			requestBody:    Request{Language: "english", TestType: "mock"},
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "unauthorized",
		},
		{
			name:           "invalid json body",
			userID:         "user-1",
			requestBody:    "not a json",
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "unsupported language",
			userID:         "user-1",
			requestBody:    Request{Language: "swahili", TestType: "practice"},
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Language has unsupported value",
		},
		{
			name:           "missing test type",
			userID:         "user-1",
			requestBody:    Request{Language: "french"},
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field TestType is a required field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)
			handler := New(newNoopLogger(), svc)

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/tests", bytes.NewReader(bodyBytes))
			if tt.userID != nil {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserID, tt.userID))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatusCode, rr.Code)

			var resp response.Response
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			if tt.wantError != "" {
				assert.Contains(t, resp.Error, tt.wantError)
			} else {
				assert.Equal(t, response.StatusOK, resp.Status)
			}

			svc.AssertExpectations(t)
		})
	}
}
