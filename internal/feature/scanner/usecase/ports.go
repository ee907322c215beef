package usecase

import (
	"context"

	"invisible_lens/internal/feature/scanner/domain/entity"
)

// EntityAnalyzer は画像から見えないエンティティを生成する外部サービスのインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type EntityAnalyzer interface {
	// AnalyzeEntity はフレームを解析し、エンティティレコードを返します。
	AnalyzeEntity(ctx context.Context, frame entity.CapturedFrame) (*entity.EntityRecord, error)
}

// Camera はセッションが所有するビデオストリームです。
type Camera interface {
	// Open はストリームを取得します。取得できるまでブロックします。
	Open(ctx context.Context, facing entity.Facing) error
	// Snapshot は現在のフレームを静止画として返します。
	Snapshot(ctx context.Context) (entity.CapturedFrame, error)
	// Close はストリームを解放します。
	Close() error
}

// RemoteFeed はブラウザ側でカメラを扱う場合に、取得結果とフレームを受け取るカメラです。
type RemoteFeed interface {
	Report(granted bool, reason string) error
	PushFrame(frame entity.CapturedFrame) error
}

// SessionRepository はホスト中のスキャンセッションを保持します。
type SessionRepository interface {
	Save(id string, s *ScanSession)
	Get(id string) (*ScanSession, bool)
	Delete(id string)
}
