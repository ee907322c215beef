// Package handler はviewcontrollerフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"invisible_lens/internal/api"
	"invisible_lens/internal/feature/viewcontroller/domain/entity"
	"invisible_lens/internal/feature/viewcontroller/usecase"
)

// ViewUsecase は画面遷移のユースケースインターフェースを定義します。
type ViewUsecase interface {
	Content() entity.Content
	Create(ctx context.Context) (entity.View, error)
	Get(ctx context.Context, id string) (entity.View, error)
	Start(ctx context.Context, id string) (entity.View, error)
	Back(ctx context.Context, id string) (entity.View, error)
	OpenAbout(ctx context.Context, id string) (entity.View, error)
	CloseAbout(ctx context.Context, id string) (entity.View, error)
}

// ViewHandler は画面遷移のHTTPリクエストを処理します。
type ViewHandler struct {
	uc ViewUsecase
}

// NewViewHandler はViewHandlerの新しいインスタンスを生成します。
func NewViewHandler(uc ViewUsecase) *ViewHandler {
	return &ViewHandler{uc: uc}
}

// Content はイントロ画面と情報モーダルの文言を返します。
//
// エンドポイント: GET /v1/content
func (h *ViewHandler) Content(c *gin.Context) {
	content := h.uc.Content()
	entries := make([]api.SectionResponse, 0, len(content.AboutEntries))
	for _, s := range content.AboutEntries {
		entries = append(entries, api.SectionResponse{Heading: s.Heading, Body: s.Body})
	}
	c.JSON(http.StatusOK, api.ContentResponse{
		Title:        content.Title,
		Tagline:      content.Tagline,
		Intro:        content.Intro,
		StartLabel:   content.StartLabel,
		AboutLabel:   content.AboutLabel,
		AboutTitle:   content.AboutTitle,
		AboutLead:    content.AboutLead,
		AboutEntries: entries,
	})
}

// Create はintro画面のビューを作成します。
//
// エンドポイント: POST /v1/views
func (h *ViewHandler) Create(c *gin.Context) {
	v, err := h.uc.Create(c.Request.Context())
	if err != nil {
		h.fail(c, "ビューの作成に失敗", err)
		return
	}
	c.JSON(http.StatusCreated, toViewResponse(v))
}

// Get はビューの状態を返します。
//
// エンドポイント: GET /v1/views/:id
func (h *ViewHandler) Get(c *gin.Context) {
	h.respond(c, "ビューの取得に失敗", h.uc.Get)
}

// Start はscanner画面に遷移します。
//
// エンドポイント: POST /v1/views/:id/start
func (h *ViewHandler) Start(c *gin.Context) {
	h.respond(c, "スキャナー画面への遷移に失敗", h.uc.Start)
}

// Back はintro画面に戻ります。
//
// エンドポイント: POST /v1/views/:id/back
func (h *ViewHandler) Back(c *gin.Context) {
	h.respond(c, "イントロ画面への遷移に失敗", h.uc.Back)
}

// OpenAbout は情報モーダルを表示します。
//
// エンドポイント: POST /v1/views/:id/about
func (h *ViewHandler) OpenAbout(c *gin.Context) {
	h.respond(c, "情報モーダルの表示に失敗", h.uc.OpenAbout)
}

// CloseAbout は情報モーダルを閉じます。
//
// エンドポイント: DELETE /v1/views/:id/about
func (h *ViewHandler) CloseAbout(c *gin.Context) {
	h.respond(c, "情報モーダルのクローズに失敗", h.uc.CloseAbout)
}

func (h *ViewHandler) respond(c *gin.Context, msg string, op func(ctx context.Context, id string) (entity.View, error)) {
	v, err := op(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, msg, err)
		return
	}
	c.JSON(http.StatusOK, toViewResponse(v))
}

func (h *ViewHandler) fail(c *gin.Context, msg string, err error) {
	if errors.Is(err, usecase.ErrViewNotFound) {
		slog.Warn(msg, "error", err, "view_id", c.Param("id"))
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Vista no encontrada"})
		return
	}
	slog.Error(msg, "error", err, "view_id", c.Param("id"))
	c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "No se pudo iniciar el escáner"})
}

func toViewResponse(v entity.View) api.ViewResponse {
	return api.ViewResponse{
		ID:           v.ID,
		Mode:         string(v.Mode),
		AboutVisible: v.AboutVisible,
		SessionID:    v.SessionID,
	}
}
