package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"libraryapi/internal/auth"
	"libraryapi/internal/entity"
	"libraryapi/internal/store/mocks"
	"libraryapi/internal/testutil"
	"libraryapi/internal/usecase"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestUserHandler_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := mocks.NewMockUserRepository(ctrl)
	handler := NewUserHandler(mockRepo, testSecret)

	tests := []struct {
		name           string
		body           map[string]string
		setupMock      func()
		expectedStatus int
	}{
		{
			name: "success",
			body: map[string]string{
				"email":    "new@example.com",
				"username": "newuser",
				"password": "Test123!@#",
			},
			setupMock: func() {
				mockRepo.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "invalid email",
			body: map[string]string{
				"email":    "not-an-email",
				"username": "newuser",
				"password": "Test123!@#",
			},
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "weak password",
			body: map[string]string{
				"email":    "new@example.com",
				"username": "newuser",
				"password": "password",
			},
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate email",
			body: map[string]string{
				"email":    "taken@example.com",
				"username": "newuser",
				"password": "Test123!@#",
			},
			setupMock: func() {
				mockRepo.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Return(usecase.ErrAlreadyExists)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			w := httptest.NewRecorder()
			r := testutil.NewRequest(http.MethodPost, "/api/v1/users/register", tt.body)

			handler.Register(w, r)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestUserHandler_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := mocks.NewMockUserRepository(ctrl)
	handler := NewUserHandler(mockRepo, testSecret)

	hashed, err := auth.HashPassword("Test123!@#")
	require.NoError(t, err)
	storedUser := entity.User{
		ID:       testutil.TestUser.ID,
		Email:    testutil.TestUser.Email,
		Username: testutil.TestUser.Username,
		Password: hashed,
		Role:     "USER",
	}

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().
			GetByEmail(gomock.Any(), storedUser.Email).
			Return(storedUser, nil)

		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email":    storedUser.Email,
			"password": "Test123!@#",
		})

		handler.Login(w, r)

		resp := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusOK, resp.Code)
		data, ok := resp.Body["data"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, storedUser.ID, data["user_id"])

		token, _ := data["access_token"].(string)
		require.NotEmpty(t, token)
		claims, err := auth.ParseToken(testSecret, token)
		require.NoError(t, err)
		assert.Equal(t, storedUser.ID, claims.Sub)
		assert.Equal(t, "USER", claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockRepo.EXPECT().
			GetByEmail(gomock.Any(), storedUser.Email).
			Return(storedUser, nil)

		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email":    storedUser.Email,
			"password": "Wrong123!@#",
		})

		handler.Login(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		mockRepo.EXPECT().
			GetByEmail(gomock.Any(), "unknown@example.com").
			Return(entity.User{}, usecase.ErrNotFound)

		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email":    "unknown@example.com",
			"password": "Test123!@#",
		})

		handler.Login(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
