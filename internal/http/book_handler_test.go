package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"libraryapi/internal/entity"
	"libraryapi/internal/httpx"
	"libraryapi/internal/store/mocks"
	"libraryapi/internal/testutil"
	"libraryapi/internal/usecase"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func TestBookHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := mocks.NewMockBookRepository(ctrl)
	handler := NewBookHandler(mockRepo)

	tests := []struct {
		name           string
		queryParams    string
		setupMock      func()
		expectedStatus int
	}{
		{
			name:        "success - empty list",
			queryParams: "?page=1&page_size=20",
			setupMock: func() {
				mockRepo.EXPECT().
					List(gomock.Any(), usecase.ListParams{Limit: 20, Offset: 0}).
					Return([]entity.Book{}, 0, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "success - with books",
			queryParams: "?page=2&page_size=10",
			setupMock: func() {
				mockRepo.EXPECT().
					List(gomock.Any(), usecase.ListParams{Limit: 10, Offset: 10}).
					Return([]entity.Book{testutil.TestBook}, 11, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "defaults applied for invalid paging",
			queryParams: "?page=-1&page_size=5000",
			setupMock: func() {
				mockRepo.EXPECT().
					List(gomock.Any(), usecase.ListParams{Limit: 20, Offset: 0}).
					Return([]entity.Book{}, 0, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "server error",
			queryParams: "?page=1&page_size=20",
			setupMock: func() {
				mockRepo.EXPECT().
					List(gomock.Any(), gomock.Any()).
					Return(nil, 0, context.DeadlineExceeded)
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/v1/books"+tt.queryParams, nil)

			handler.List(w, r)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestBookHandler_GetByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := mocks.NewMockBookRepository(ctrl)
	handler := NewBookHandler(mockRepo)

	tests := []struct {
		name           string
		bookID         string
		setupMock      func()
		expectedStatus int
	}{
		{
			name:   "success",
			bookID: testutil.TestBook.ID,
			setupMock: func() {
				mockRepo.EXPECT().
					GetByID(gomock.Any(), testutil.TestBook.ID).
					Return(testutil.TestBook, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "not found",
			bookID: "no-such-book",
			setupMock: func() {
				mockRepo.EXPECT().
					GetByID(gomock.Any(), "no-such-book").
					Return(entity.Book{}, usecase.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/v1/books/"+tt.bookID, nil)
			r.SetPathValue("book_id", tt.bookID)

			handler.GetByID(w, r)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestBookHandler_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := mocks.NewMockBookRepository(ctrl)
	handler := NewBookHandler(mockRepo)

	validBody := map[string]string{
		"title":  "The Go Programming Language",
		"author": "Donovan & Kernighan",
		"isbn":   "978-0-134-19044-0",
	}

	tests := []struct {
		name           string
		body           interface{}
		setupMock      func()
		expectedStatus int
	}{
		{
			name: "success",
			body: validBody,
			setupMock: func() {
				mockRepo.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, book *entity.Book) error {
						assert.Equal(t, testutil.TestUser.ID, book.OwnerID)
						book.ID = "created-book-id"
						return nil
					})
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing title",
			body:           map[string]string{"author": "A", "isbn": "978-0-134-19044-0"},
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad isbn",
			body:           map[string]string{"title": "T", "author": "A", "isbn": "not-an-isbn"},
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate isbn",
			body: validBody,
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
			r := testutil.NewRequest(http.MethodPost, "/api/v1/books", tt.body)
			r = r.WithContext(httpx.ContextWithUser(r.Context(), testutil.TestUser.ID, testutil.TestUser.Role))

			handler.Create(w, r)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestBookHandler_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := mocks.NewMockBookRepository(ctrl)
	handler := NewBookHandler(mockRepo)

	tests := []struct {
		name           string
		setupMock      func()
		expectedStatus int
	}{
		{
			name: "success",
			setupMock: func() {
				mockRepo.EXPECT().
					Delete(gomock.Any(), testutil.TestBook.ID, testutil.TestUser.ID).
					Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name: "not owned",
			setupMock: func() {
				mockRepo.EXPECT().
					Delete(gomock.Any(), testutil.TestBook.ID, testutil.TestUser.ID).
					Return(usecase.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			w := httptest.NewRecorder()
			r := testutil.NewRequest(http.MethodDelete, "/api/v1/books/"+testutil.TestBook.ID, nil)
			r = r.WithContext(httpx.ContextWithUser(r.Context(), testutil.TestUser.ID, testutil.TestUser.Role))
			r.SetPathValue("book_id", testutil.TestBook.ID)

			handler.Delete(w, r)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
