// Package throttled はアナライザー呼び出しをレートリミッターで制限するデコレーターを提供します。
package throttled

import (
	"context"
	"fmt"

	"invisible_lens/internal/feature/scanner/domain/entity"
	"invisible_lens/internal/feature/scanner/usecase"
	"invisible_lens/internal/shared/ratelimiter"
)

// EntityAnalyzer は内側のアナライザーを呼ぶ前にリミッターの枠を待ちます。
type EntityAnalyzer struct {
	inner   usecase.EntityAnalyzer
	limiter ratelimiter.Limiter
}

var _ usecase.EntityAnalyzer = (*EntityAnalyzer)(nil)

// NewEntityAnalyzer はアナライザーをリミッターでラップします。
func NewEntityAnalyzer(inner usecase.EntityAnalyzer, limiter ratelimiter.Limiter) *EntityAnalyzer {
	return &EntityAnalyzer{inner: inner, limiter: limiter}
}

// AnalyzeEntity は枠が空くまで待ってから解析します。待機中に ctx が終わった場合は解析しません。
func (a *EntityAnalyzer) AnalyzeEntity(ctx context.Context, frame entity.CapturedFrame) (*entity.EntityRecord, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait aborted: %w", err)
	}
	return a.inner.AnalyzeEntity(ctx, frame)
}
