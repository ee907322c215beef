package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invisible_lens/internal/api"
	"invisible_lens/internal/feature/viewcontroller/domain/entity"
	"invisible_lens/internal/feature/viewcontroller/transport/handler"
	"invisible_lens/internal/feature/viewcontroller/usecase"
)

// mockViewUsecase はViewUsecaseインターフェースのモック実装です。ID指定の操作はすべて OpFunc に集約します。
type mockViewUsecase struct {
	CreateFunc func(ctx context.Context) (entity.View, error)
	OpFunc     func(op, id string) (entity.View, error)
}

func (m *mockViewUsecase) Content() entity.Content { return entity.DefaultContent() }

func (m *mockViewUsecase) Create(ctx context.Context) (entity.View, error) {
	return m.CreateFunc(ctx)
}

func (m *mockViewUsecase) Get(ctx context.Context, id string) (entity.View, error) {
	return m.OpFunc("get", id)
}

func (m *mockViewUsecase) Start(ctx context.Context, id string) (entity.View, error) {
	return m.OpFunc("start", id)
}

func (m *mockViewUsecase) Back(ctx context.Context, id string) (entity.View, error) {
	return m.OpFunc("back", id)
}

func (m *mockViewUsecase) OpenAbout(ctx context.Context, id string) (entity.View, error) {
	return m.OpFunc("open_about", id)
}

func (m *mockViewUsecase) CloseAbout(ctx context.Context, id string) (entity.View, error) {
	return m.OpFunc("close_about", id)
}

func setupRouter(uc handler.ViewUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewViewHandler(uc)
	r := gin.New()
	r.GET("/v1/content", h.Content)
	r.POST("/v1/views", h.Create)
	r.GET("/v1/views/:id", h.Get)
	r.POST("/v1/views/:id/start", h.Start)
	r.POST("/v1/views/:id/back", h.Back)
	r.POST("/v1/views/:id/about", h.OpenAbout)
	r.DELETE("/v1/views/:id/about", h.CloseAbout)
	return r
}

func TestViewHandler_Content(t *testing.T) {
	w := httptest.NewRecorder()
	setupRouter(&mockViewUsecase{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/content", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var got api.ContentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Lente Invisible", got.Title)
	assert.Equal(t, "Iniciar escáner", got.StartLabel)
	assert.Len(t, got.AboutEntries, 3)
}

func TestViewHandler_Create(t *testing.T) {
	uc := &mockViewUsecase{
		CreateFunc: func(ctx context.Context) (entity.View, error) {
			return entity.View{ID: "v1", Mode: entity.ModeIntro}, nil
		},
	}

	w := httptest.NewRecorder()
	setupRouter(uc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/views", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":"v1","mode":"intro","aboutVisible":false}`, w.Body.String())
}

func TestViewHandler_Operations(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		expectedOp     string
		result         entity.View
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "success: start",
			method:         http.MethodPost,
			path:           "/v1/views/v1/start",
			expectedOp:     "start",
			result:         entity.View{ID: "v1", Mode: entity.ModeScanner, SessionID: "s1"},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"id":"v1","mode":"scanner","aboutVisible":false,"sessionId":"s1"}`,
		},
		{
			name:           "success: back",
			method:         http.MethodPost,
			path:           "/v1/views/v1/back",
			expectedOp:     "back",
			result:         entity.View{ID: "v1", Mode: entity.ModeIntro},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"id":"v1","mode":"intro","aboutVisible":false}`,
		},
		{
			name:           "success: open about",
			method:         http.MethodPost,
			path:           "/v1/views/v1/about",
			expectedOp:     "open_about",
			result:         entity.View{ID: "v1", Mode: entity.ModeIntro, AboutVisible: true},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"id":"v1","mode":"intro","aboutVisible":true}`,
		},
		{
			name:           "success: close about",
			method:         http.MethodDelete,
			path:           "/v1/views/v1/about",
			expectedOp:     "close_about",
			result:         entity.View{ID: "v1", Mode: entity.ModeScanner, SessionID: "s1"},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"id":"v1","mode":"scanner","aboutVisible":false,"sessionId":"s1"}`,
		},
		{
			name:           "error: view not found",
			method:         http.MethodGet,
			path:           "/v1/views/v1",
			expectedOp:     "get",
			err:            usecase.ErrViewNotFound,
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Vista no encontrada"}`,
		},
		{
			name:           "error: launch failed",
			method:         http.MethodPost,
			path:           "/v1/views/v1/start",
			expectedOp:     "start",
			err:            errors.New("launch scan session: boom"),
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `{"error":"No se pudo iniciar el escáner"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotOp, gotID string
			uc := &mockViewUsecase{
				OpFunc: func(op, id string) (entity.View, error) {
					gotOp, gotID = op, id
					return tt.result, tt.err
				},
			}

			w := httptest.NewRecorder()
			setupRouter(uc).ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.expectedOp, gotOp)
			assert.Equal(t, "v1", gotID)
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
