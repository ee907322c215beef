// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"invisible_lens/internal/api"
)

// cachePingTimeout はキャッシュ疎通確認の上限時間です。
const cachePingTimeout = 500 * time.Millisecond

// CachePinger はキャッシュの疎通確認を行います。*redis.Client が満たします。
type CachePinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// HealthHandler はサービスヘルスチェック用の /healthz エンドポイントを処理します。
type HealthHandler struct {
	cache CachePinger
}

// NewHealthHandler はHealthHandlerを生成します。cache が nil の場合はキャッシュ無効として報告します。
func NewHealthHandler(cache CachePinger) *HealthHandler {
	return &HealthHandler{cache: cache}
}

// Health はHTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
// キャッシュは任意の依存なので、疎通できなくても200を返します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, api.HealthResponse{Status: "ok", Cache: h.cacheStatus(c.Request.Context())})
	}
}

func (h *HealthHandler) cacheStatus(ctx context.Context) string {
	if h.cache == nil {
		return "disabled"
	}
	ctx, cancel := context.WithTimeout(ctx, cachePingTimeout)
	defer cancel()
	if err := h.cache.Ping(ctx).Err(); err != nil {
		slog.Warn("cache ping failed", "error", err)
		return "unavailable"
	}
	return "ok"
}
