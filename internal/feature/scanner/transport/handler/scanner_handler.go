// Package handler はscannerフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"invisible_lens/internal/api"
	"invisible_lens/internal/feature/scanner/adapters/camera"
	"invisible_lens/internal/feature/scanner/domain/entity"
	"invisible_lens/internal/feature/scanner/usecase"
)

// ScannerUsecase はスキャンセッション操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type ScannerUsecase interface {
	StartSession(ctx context.Context, onExit ...func()) (entity.SessionSnapshot, error)
	Get(ctx context.Context, id string) (entity.SessionSnapshot, error)
	ReportCamera(ctx context.Context, id string, granted bool, reason string) error
	PushFrame(ctx context.Context, id string, frame entity.CapturedFrame) error
	Capture(ctx context.Context, id string, wait bool) (entity.SessionSnapshot, error)
	Reset(ctx context.Context, id string) (entity.SessionSnapshot, error)
	Exit(ctx context.Context, id string) error
	Share(ctx context.Context, id string) (string, error)
}

// ScannerHandler はスキャンセッションのHTTPリクエストを処理します。
type ScannerHandler struct {
	uc  ScannerUsecase
	now func() time.Time
}

// NewScannerHandler はScannerHandlerの新しいインスタンスを生成します。
func NewScannerHandler(uc ScannerUsecase) *ScannerHandler {
	return &ScannerHandler{uc: uc, now: time.Now}
}

// StartSession は単独のスキャンセッションを開始します。
//
// エンドポイント: POST /v1/sessions
func (h *ScannerHandler) StartSession(c *gin.Context) {
	snap, err := h.uc.StartSession(c.Request.Context())
	if err != nil {
		h.fail(c, "セッション開始に失敗", err)
		return
	}
	c.JSON(http.StatusCreated, toSessionResponse(snap))
}

// GetSession はセッションのスナップショットを返します。
//
// エンドポイント: GET /v1/sessions/:id
func (h *ScannerHandler) GetSession(c *gin.Context) {
	snap, err := h.uc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "セッション取得に失敗", err)
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(snap))
}

// ReportCamera はブラウザでのカメラ取得結果を受け取ります。
//
// エンドポイント: POST /v1/sessions/:id/camera
// Content-Type: application/json
func (h *ScannerHandler) ReportCamera(c *gin.Context) {
	var req api.CameraReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("カメラ報告のバリデーションに失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Solicitud no válida"})
		return
	}

	id := c.Param("id")
	if err := h.uc.ReportCamera(c.Request.Context(), id, *req.Granted, req.Reason); err != nil {
		h.fail(c, "カメラ報告の反映に失敗", err)
		return
	}
	h.respondSnapshot(c, id, http.StatusOK)
}

// PushFrame はブラウザの最新フレームを受け取ります。
//
// エンドポイント: PUT /v1/sessions/:id/frame
// Content-Type: multipart/form-data（フィールド: image）または application/json（data URL）
func (h *ScannerHandler) PushFrame(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*entity.MaxFrameSize)

	frame, err := h.readFrame(c)
	if err != nil {
		slog.Warn("フレームの読み取りに失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Imagen no válida"})
		return
	}

	if err := h.uc.PushFrame(c.Request.Context(), c.Param("id"), frame); err != nil {
		h.fail(c, "フレームの反映に失敗", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ScannerHandler) readFrame(c *gin.Context) (entity.CapturedFrame, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, err := c.FormFile("image")
		if err != nil {
			return entity.CapturedFrame{}, err
		}
		f, err := file.Open()
		if err != nil {
			return entity.CapturedFrame{}, err
		}
		defer func() {
			if err := f.Close(); err != nil {
				slog.Warn("画像ファイルのクローズに失敗", "error", err)
			}
		}()
		data, err := io.ReadAll(f)
		if err != nil {
			return entity.CapturedFrame{}, err
		}
		return entity.NewCapturedFrame(data, h.now())
	}

	var req api.FrameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return entity.CapturedFrame{}, err
	}
	return entity.DecodeDataURL(req.Image, h.now())
}

// Capture は現在のフレームをキャプチャして解析を開始します。
// wait=true の場合は解析完了まで待って結果を返します。
//
// エンドポイント: POST /v1/sessions/:id/capture?wait=true
func (h *ScannerHandler) Capture(c *gin.Context) {
	wait, err := strconv.ParseBool(c.DefaultQuery("wait", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Parámetro wait no válido"})
		return
	}

	snap, err := h.uc.Capture(c.Request.Context(), c.Param("id"), wait)
	if err != nil {
		h.fail(c, "キャプチャに失敗", err)
		return
	}

	status := http.StatusOK
	if snap.State == entity.StateAnalyzing {
		status = http.StatusAccepted
	}
	c.JSON(status, toSessionResponse(snap))
}

// Reset は結果を破棄して次のスキャンに備えます。
//
// エンドポイント: POST /v1/sessions/:id/reset
func (h *ScannerHandler) Reset(c *gin.Context) {
	snap, err := h.uc.Reset(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "リセットに失敗", err)
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(snap))
}

// Exit はセッションを終了してカメラを解放します。
//
// エンドポイント: DELETE /v1/sessions/:id
func (h *ScannerHandler) Exit(c *gin.Context) {
	if err := h.uc.Exit(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "セッション終了に失敗", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Share は結果の共有キャプションを返します。
//
// エンドポイント: GET /v1/sessions/:id/share
func (h *ScannerHandler) Share(c *gin.Context) {
	text, err := h.uc.Share(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "共有テキストの生成に失敗", err)
		return
	}
	c.JSON(http.StatusOK, api.ShareResponse{Text: text})
}

func (h *ScannerHandler) respondSnapshot(c *gin.Context, id string, status int) {
	snap, err := h.uc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "セッション取得に失敗", err)
		return
	}
	c.JSON(status, toSessionResponse(snap))
}

// fail はエラーをHTTPステータスとスペイン語メッセージに変換して返します。
func (h *ScannerHandler) fail(c *gin.Context, msg string, err error) {
	status, text := errorStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error(msg, "error", err, "session_id", c.Param("id"))
	} else {
		slog.Warn(msg, "error", err, "session_id", c.Param("id"))
	}
	c.JSON(status, api.ErrorResponse{Error: text})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrSessionNotFound):
		return http.StatusNotFound, "Sesión de escaneo no encontrada"
	case errors.Is(err, usecase.ErrNoResult):
		return http.StatusNotFound, "No hay ningún resultado para compartir"
	case errors.Is(err, usecase.ErrCaptureUnavailable):
		return http.StatusConflict, "El escáner no está listo para capturar"
	case errors.Is(err, usecase.ErrInvalidTransition):
		return http.StatusConflict, "Operación no válida en el estado actual"
	case errors.Is(err, usecase.ErrUnsupportedCamera):
		return http.StatusConflict, "Esta sesión no acepta fotogramas remotos"
	case errors.Is(err, camera.ErrNoFrame):
		return http.StatusConflict, "Aún no se ha recibido ningún fotograma"
	case errors.Is(err, camera.ErrAlreadyReported),
		errors.Is(err, camera.ErrNotGranted),
		errors.Is(err, camera.ErrCameraClosed),
		errors.Is(err, usecase.ErrCameraUnavailable):
		return http.StatusConflict, entity.CameraDeniedMessage
	case errors.Is(err, entity.ErrEmptyFrame),
		errors.Is(err, entity.ErrFrameTooLarge),
		errors.Is(err, entity.ErrUnsupportedImage):
		return http.StatusBadRequest, "Imagen no válida"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "El análisis tardó demasiado"
	default:
		return http.StatusInternalServerError, "Error interno del servidor"
	}
}
