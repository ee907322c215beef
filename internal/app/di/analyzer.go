// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"invisible_lens/internal/app/config"
	"invisible_lens/internal/feature/scanner/adapters/gemini"
	"invisible_lens/internal/feature/scanner/adapters/throttled"
	"invisible_lens/internal/feature/scanner/adapters/vision"
	"invisible_lens/internal/feature/scanner/usecase"
	"invisible_lens/internal/platform/cache"
	infrahttp "invisible_lens/internal/platform/http"
	"invisible_lens/internal/shared/ratelimiter"
)

// NewEntityAnalyzer builds the analyzer chain shared by every scan session:
// Redis cache -> rate limiter -> Gemini (with optional Vision scene hints).
// The returned close function releases the Vision client when one was created.
func NewEntityAnalyzer(ctx context.Context, cfg config.Config, rdb *redis.Client) (usecase.EntityAnalyzer, func() error, error) {
	closeFn := func() error { return nil }

	var opts []gemini.Option
	if cfg.VisionHints {
		detector, err := vision.NewLabelDetector(ctx)
		if err != nil {
			// Hints are optional; scanning still works without them.
			slog.Warn("vision label detector unavailable, continuing without scene hints", "error", err)
		} else {
			opts = append(opts, gemini.WithSceneLabeler(detector))
			closeFn = detector.Close
		}
	}

	g, err := gemini.NewEntityAnalyzer(ctx, gemini.Config{
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.GeminiModel,
		// The session bounds each call with AnalyzerTimeout; the client timeout is a backstop.
		HTTPClient: infrahttp.NewHTTPClient(2 * cfg.AnalyzerTimeout),
	}, opts...)
	if err != nil {
		return nil, nil, errors.Join(fmt.Errorf("create entity analyzer: %w", err), closeFn())
	}

	limited := throttled.NewEntityAnalyzer(g, ratelimiter.NewRateLimiter(cfg.AnalyzerRateLimit, cfg.AnalyzerRateInterval))
	return cache.NewCachingEntityAnalyzer(rdb, cfg.CacheTTL, limited, "entities"), closeFn, nil
}
