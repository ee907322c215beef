package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	scannerhandler "invisible_lens/internal/feature/scanner/transport/handler"
	viewhandler "invisible_lens/internal/feature/viewcontroller/transport/handler"
	"invisible_lens/internal/platform/http/handler"
)

// NewRouter はすべてのエンドポイントを登録したgin.Engineを返します。
// corsOrigins が空の場合は全オリジンを許可します（ブラウザのフロントエンドが別オリジンで動くため）。
func NewRouter(health *handler.HealthHandler, views *viewhandler.ViewHandler,
	scanner *scannerhandler.ScannerHandler, corsOrigins []string) *gin.Engine {
	r := gin.Default()
	r.Use(cors.New(corsConfig(corsOrigins)))

	// 導通確認用
	r.GET("/healthz", health.Health)
	r.HEAD("/healthz", health.Health)

	v1 := r.Group("/v1")

	// イントロ画面・情報モーダルの文言
	v1.GET("/content", views.Content)

	// 画面遷移（intro / scanner / 情報モーダル）
	v := v1.Group("/views")
	{
		v.POST("", views.Create)
		v.GET("/:id", views.Get)
		v.POST("/:id/start", views.Start)
		v.POST("/:id/back", views.Back)
		v.POST("/:id/about", views.OpenAbout)
		v.DELETE("/:id/about", views.CloseAbout)
	}

	// スキャンセッション
	s := v1.Group("/sessions")
	{
		s.POST("", scanner.StartSession)
		s.GET("/:id", scanner.GetSession)
		s.POST("/:id/camera", scanner.ReportCamera)
		s.PUT("/:id/frame", scanner.PushFrame)
		s.POST("/:id/capture", scanner.Capture)
		s.POST("/:id/reset", scanner.Reset)
		s.DELETE("/:id", scanner.Exit)
		s.GET("/:id/share", scanner.Share)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}
