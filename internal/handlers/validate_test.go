package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avorobev/authd/internal/services"
)

func TestValidateHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockHashValidator(ctrl)
	handler := NewValidateHandler(mockSvc)

	userID := uuid.New()
	token := uuid.NewString()

	tests := []struct {
		name       string
		target     string
		mockSetup  func()
		wantStatus int
		wantCode   string
	}{
		{
			name:   "redeems the token",
			target: "/auth/validate?seq=" + token,
			mockSetup: func() {
				mockSvc.EXPECT().
					ValidateHash(gomock.Any(), token).
					Return(&services.ValidatedUser{ID: userID, Email: "alice@example.com"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing seq",
			target:     "/auth/validate",
			mockSetup:  func() {},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeValidation,
		},
		{
			name:   "unknown or used token",
			target: "/auth/validate?seq=stale",
			mockSetup: func() {
				mockSvc.EXPECT().
					ValidateHash(gomock.Any(), "stale").
					Return(nil, services.ErrInvalidHash)
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidHash,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()
			handler(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus == http.StatusOK {
				var resp services.ValidatedUser
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, userID, resp.ID)
			}
			if tt.wantCode != "" {
				var body ErrorBody
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, tt.wantCode, body.Error.Code)
			}
		})
	}
}
