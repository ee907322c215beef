package handler_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invisible_lens/internal/api"
	"invisible_lens/internal/feature/scanner/adapters/camera"
	"invisible_lens/internal/feature/scanner/domain/entity"
	"invisible_lens/internal/feature/scanner/transport/handler"
	"invisible_lens/internal/feature/scanner/usecase"
)

var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

// mockScannerUsecase はScannerUsecaseインターフェースのモック実装です。
type mockScannerUsecase struct {
	StartSessionFunc func(ctx context.Context, onExit ...func()) (entity.SessionSnapshot, error)
	GetFunc          func(ctx context.Context, id string) (entity.SessionSnapshot, error)
	ReportCameraFunc func(ctx context.Context, id string, granted bool, reason string) error
	PushFrameFunc    func(ctx context.Context, id string, frame entity.CapturedFrame) error
	CaptureFunc      func(ctx context.Context, id string, wait bool) (entity.SessionSnapshot, error)
	ResetFunc        func(ctx context.Context, id string) (entity.SessionSnapshot, error)
	ExitFunc         func(ctx context.Context, id string) error
	ShareFunc        func(ctx context.Context, id string) (string, error)
}

func (m *mockScannerUsecase) StartSession(ctx context.Context, onExit ...func()) (entity.SessionSnapshot, error) {
	return m.StartSessionFunc(ctx, onExit...)
}

func (m *mockScannerUsecase) Get(ctx context.Context, id string) (entity.SessionSnapshot, error) {
	return m.GetFunc(ctx, id)
}

func (m *mockScannerUsecase) ReportCamera(ctx context.Context, id string, granted bool, reason string) error {
	return m.ReportCameraFunc(ctx, id, granted, reason)
}

func (m *mockScannerUsecase) PushFrame(ctx context.Context, id string, frame entity.CapturedFrame) error {
	return m.PushFrameFunc(ctx, id, frame)
}

func (m *mockScannerUsecase) Capture(ctx context.Context, id string, wait bool) (entity.SessionSnapshot, error) {
	return m.CaptureFunc(ctx, id, wait)
}

func (m *mockScannerUsecase) Reset(ctx context.Context, id string) (entity.SessionSnapshot, error) {
	return m.ResetFunc(ctx, id)
}

func (m *mockScannerUsecase) Exit(ctx context.Context, id string) error {
	return m.ExitFunc(ctx, id)
}

func (m *mockScannerUsecase) Share(ctx context.Context, id string) (string, error) {
	return m.ShareFunc(ctx, id)
}

func setupRouter(uc handler.ScannerUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewScannerHandler(uc)
	r := gin.New()
	r.POST("/v1/sessions", h.StartSession)
	r.GET("/v1/sessions/:id", h.GetSession)
	r.POST("/v1/sessions/:id/camera", h.ReportCamera)
	r.PUT("/v1/sessions/:id/frame", h.PushFrame)
	r.POST("/v1/sessions/:id/capture", h.Capture)
	r.POST("/v1/sessions/:id/reset", h.Reset)
	r.DELETE("/v1/sessions/:id", h.Exit)
	r.GET("/v1/sessions/:id/share", h.Share)
	return r
}

func resultSnapshot(source entity.AnalysisSource) entity.SessionSnapshot {
	rec := entity.EntityRecord{
		Title:        "El Guardián",
		Description:  "d",
		VisualStyle:  "v",
		Meaning:      "m",
		EstimatedAge: "a",
		Rarity:       entity.RarityLegendary,
	}
	return entity.SessionSnapshot{
		ID:     "s1",
		State:  entity.StateResult,
		Camera: entity.CameraSession{Active: true},
		Result: &entity.ScanResult{
			Frame:     entity.CapturedFrame{Data: jpegHeader, MIMEType: "image/jpeg"},
			Entity:    &rec,
			Source:    source,
			CreatedAt: time.UnixMilli(1700000000000),
		},
		UpdatedAt: time.UnixMilli(1700000000000),
	}
}

func TestScannerHandler_StartSession(t *testing.T) {
	uc := &mockScannerUsecase{
		StartSessionFunc: func(ctx context.Context, onExit ...func()) (entity.SessionSnapshot, error) {
			return entity.SessionSnapshot{ID: "s1", State: entity.StateIdle}, nil
		},
	}

	w := httptest.NewRecorder()
	setupRouter(uc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/sessions", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	var got api.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, "idle", got.State)
	assert.Nil(t, got.Result)
}

func TestScannerHandler_GetSession(t *testing.T) {
	tests := []struct {
		name           string
		mockFunc       func(ctx context.Context, id string) (entity.SessionSnapshot, error)
		expectedStatus int
		check          func(t *testing.T, body []byte)
	}{
		{
			name: "success: result with accent",
			mockFunc: func(ctx context.Context, id string) (entity.SessionSnapshot, error) {
				return resultSnapshot(entity.SourceAnalyzer), nil
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var got api.SessionResponse
				require.NoError(t, json.Unmarshal(body, &got))
				require.NotNil(t, got.Result)
				require.NotNil(t, got.Result.Entity)
				assert.Equal(t, "Legendario", got.Result.Entity.Rarity)
				assert.Equal(t, entity.RarityLegendary.Accent(), got.Result.Entity.Accent)
				assert.False(t, got.Result.Fallback)
				assert.Equal(t, int64(1700000000000), got.Result.Timestamp)
				assert.True(t, strings.HasPrefix(got.Result.Image, "data:image/jpeg;base64,"))
			},
		},
		{
			name: "success: fallback is flagged",
			mockFunc: func(ctx context.Context, id string) (entity.SessionSnapshot, error) {
				return resultSnapshot(entity.SourceFallback), nil
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var got api.SessionResponse
				require.NoError(t, json.Unmarshal(body, &got))
				assert.True(t, got.Result.Fallback)
				assert.Equal(t, "fallback", got.Result.Source)
			},
		},
		{
			name: "success: camera error is surfaced",
			mockFunc: func(ctx context.Context, id string) (entity.SessionSnapshot, error) {
				return entity.SessionSnapshot{
					ID:     "s1",
					State:  entity.StateError,
					Camera: entity.CameraSession{Error: entity.CameraDeniedMessage},
				}, nil
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var got api.SessionResponse
				require.NoError(t, json.Unmarshal(body, &got))
				assert.Equal(t, "error", got.State)
				assert.Equal(t, entity.CameraDeniedMessage, got.Camera.Error)
			},
		},
		{
			name: "error: session not found",
			mockFunc: func(ctx context.Context, id string) (entity.SessionSnapshot, error) {
				return entity.SessionSnapshot{}, usecase.ErrSessionNotFound
			},
			expectedStatus: http.StatusNotFound,
			check: func(t *testing.T, body []byte) {
				assert.JSONEq(t, `{"error":"Sesión de escaneo no encontrada"}`, string(body))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockScannerUsecase{GetFunc: tt.mockFunc}

			w := httptest.NewRecorder()
			setupRouter(uc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/sessions/s1", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			tt.check(t, w.Body.Bytes())
		})
	}
}

func TestScannerHandler_ReportCamera(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		reportErr      error
		expectedStatus int
		expectedCalls  int
	}{
		{name: "success: granted", body: `{"granted":true}`, expectedStatus: http.StatusOK, expectedCalls: 1},
		{name: "success: denied", body: `{"granted":false,"reason":"NotAllowedError"}`, expectedStatus: http.StatusOK, expectedCalls: 1},
		{name: "error: missing granted", body: `{}`, expectedStatus: http.StatusBadRequest},
		{name: "error: reported twice", body: `{"granted":true}`, reportErr: camera.ErrAlreadyReported, expectedStatus: http.StatusConflict, expectedCalls: 1},
		{name: "error: not a remote camera", body: `{"granted":true}`, reportErr: usecase.ErrUnsupportedCamera, expectedStatus: http.StatusConflict, expectedCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			uc := &mockScannerUsecase{
				ReportCameraFunc: func(ctx context.Context, id string, granted bool, reason string) error {
					calls++
					return tt.reportErr
				},
				GetFunc: func(ctx context.Context, id string) (entity.SessionSnapshot, error) {
					return entity.SessionSnapshot{ID: id, State: entity.StateReady}, nil
				},
			}

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/sessions/s1/camera", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			setupRouter(uc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedCalls, calls)
		})
	}
}

func createMultipartRequest(t *testing.T, fieldName string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(fieldName, "frame.jpg")
	require.NoError(t, err)
	_, err = io.Copy(part, bytes.NewReader(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPut, "/v1/sessions/s1/frame", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestScannerHandler_PushFrame(t *testing.T) {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegHeader)

	tests := []struct {
		name           string
		setupRequest   func(t *testing.T) *http.Request
		pushErr        error
		expectedStatus int
		expectPush     bool
	}{
		{
			name: "success: multipart",
			setupRequest: func(t *testing.T) *http.Request {
				return createMultipartRequest(t, "image", jpegHeader)
			},
			expectedStatus: http.StatusNoContent,
			expectPush:     true,
		},
		{
			name: "success: data url",
			setupRequest: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPut, "/v1/sessions/s1/frame", strings.NewReader(fmt.Sprintf(`{"image":%q}`, dataURL)))
				req.Header.Set("Content-Type", "application/json")
				return req
			},
			expectedStatus: http.StatusNoContent,
			expectPush:     true,
		},
		{
			name: "error: not an image",
			setupRequest: func(t *testing.T) *http.Request {
				return createMultipartRequest(t, "image", []byte("hello"))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "error: wrong field",
			setupRequest: func(t *testing.T) *http.Request {
				return createMultipartRequest(t, "file", jpegHeader)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "error: camera not granted",
			setupRequest: func(t *testing.T) *http.Request {
				return createMultipartRequest(t, "image", jpegHeader)
			},
			pushErr:        camera.ErrNotGranted,
			expectedStatus: http.StatusConflict,
			expectPush:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pushed := false
			uc := &mockScannerUsecase{
				PushFrameFunc: func(ctx context.Context, id string, frame entity.CapturedFrame) error {
					pushed = true
					assert.Equal(t, "image/jpeg", frame.MIMEType)
					assert.Equal(t, jpegHeader, frame.Data)
					return tt.pushErr
				},
			}

			w := httptest.NewRecorder()
			setupRouter(uc).ServeHTTP(w, tt.setupRequest(t))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectPush, pushed)
		})
	}
}

func TestScannerHandler_Capture(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		mockFunc       func(ctx context.Context, id string, wait bool) (entity.SessionSnapshot, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:  "success: wait returns result",
			query: "?wait=true",
			mockFunc: func(ctx context.Context, id string, wait bool) (entity.SessionSnapshot, error) {
				assert.True(t, wait)
				return resultSnapshot(entity.SourceAnalyzer), nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "success: without wait is accepted",
			mockFunc: func(ctx context.Context, id string, wait bool) (entity.SessionSnapshot, error) {
				assert.False(t, wait)
				return entity.SessionSnapshot{ID: id, State: entity.StateAnalyzing}, nil
			},
			expectedStatus: http.StatusAccepted,
		},
		{
			name:           "error: invalid wait",
			query:          "?wait=maybe",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "error: not ready",
			mockFunc: func(ctx context.Context, id string, wait bool) (entity.SessionSnapshot, error) {
				return entity.SessionSnapshot{ID: id, State: entity.StateAnalyzing}, usecase.ErrCaptureUnavailable
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error":"El escáner no está listo para capturar"}`,
		},
		{
			name: "error: no frame yet",
			mockFunc: func(ctx context.Context, id string, wait bool) (entity.SessionSnapshot, error) {
				return entity.SessionSnapshot{ID: id, State: entity.StateReady}, fmt.Errorf("failed to snapshot frame: %w", camera.ErrNoFrame)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error":"Aún no se ha recibido ningún fotograma"}`,
		},
		{
			name: "error: unexpected",
			mockFunc: func(ctx context.Context, id string, wait bool) (entity.SessionSnapshot, error) {
				return entity.SessionSnapshot{}, errors.New("boom")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"Error interno del servidor"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockScannerUsecase{CaptureFunc: tt.mockFunc}

			w := httptest.NewRecorder()
			setupRouter(uc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/sessions/s1/capture"+tt.query, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
		})
	}
}

func TestScannerHandler_ResetExitShare(t *testing.T) {
	uc := &mockScannerUsecase{
		ResetFunc: func(ctx context.Context, id string) (entity.SessionSnapshot, error) {
			return entity.SessionSnapshot{}, fmt.Errorf("%w: reset from ready", usecase.ErrInvalidTransition)
		},
		ExitFunc: func(ctx context.Context, id string) error { return nil },
		ShareFunc: func(ctx context.Context, id string) (string, error) {
			return entity.ShareText(entity.FallbackRecord()), nil
		},
	}
	router := setupRouter(uc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/sessions/s1/reset", nil))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/sessions/s1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/sessions/s1/share", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	var got api.ShareResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Contains(t, got.Text, "Lente Invisible")
}

func TestScannerHandler_ShareWithoutResult(t *testing.T) {
	uc := &mockScannerUsecase{
		ShareFunc: func(ctx context.Context, id string) (string, error) { return "", usecase.ErrNoResult },
	}

	w := httptest.NewRecorder()
	setupRouter(uc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/sessions/s1/share", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
