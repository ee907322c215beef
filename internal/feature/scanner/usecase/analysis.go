package usecase

import (
	"context"
	"errors"
	"log/slog"

	"invisible_lens/internal/feature/scanner/domain/entity"
)

var errEmptyAnalysis = errors.New("analyzer returned no entity")

// AnalyzeWithFallback はアナライザーを1回呼び出し、失敗（エラー・空・不正なレコード）を
// 固定のフォールバックレコードに置き換えます。失敗原因は Analysis.Err に残ります。
func AnalyzeWithFallback(ctx context.Context, analyzer EntityAnalyzer, frame entity.CapturedFrame) entity.Analysis {
	record, err := analyzer.AnalyzeEntity(ctx, frame)
	if err == nil && record == nil {
		err = errEmptyAnalysis
	}
	if err == nil {
		err = record.Validate()
	}
	if err != nil {
		slog.Warn("エンティティ解析に失敗、フォールバックを使用", "error", err)
		return entity.Analysis{Record: entity.FallbackRecord(), Source: entity.SourceFallback, Err: err}
	}
	return entity.Analysis{Record: *record, Source: entity.SourceAnalyzer}
}
