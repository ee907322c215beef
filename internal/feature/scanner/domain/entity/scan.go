package entity

import "time"

// ScanState はスキャンセッションの状態です。
type ScanState string

const (
	StateIdle      ScanState = "idle"      // カメラ準備前
	StateReady     ScanState = "ready"     // ストリーム有効、結果なし
	StateAnalyzing ScanState = "analyzing" // 解析リクエスト処理中
	StateResult    ScanState = "result"    // 結果表示中
	StateError     ScanState = "error"     // カメラ利用不可（再試行なし）
	StateClosed    ScanState = "closed"    // 終了済み
)

// Facing はカメラの向きです。
type Facing string

const (
	FacingEnvironment Facing = "environment"
	FacingUser        Facing = "user"
)

// CameraDeniedMessage はカメラ取得失敗時に表示する固定メッセージです。
const CameraDeniedMessage = "No se puede acceder a la cámara. Verifica los permisos."

// CameraSession はセッションが保持するビデオストリームの状態です。
type CameraSession struct {
	Active bool
	Error  string
}

// AnalysisSource は解析結果の出所を表します。
type AnalysisSource string

const (
	SourceAnalyzer AnalysisSource = "analyzer"
	SourceFallback AnalysisSource = "fallback"
)

// Analysis はアナライザー呼び出し1回分の結果です。
// Source で実レコードとフォールバックを判別します。Err は隠蔽された失敗原因です。
type Analysis struct {
	Record EntityRecord
	Source AnalysisSource
	Err    error
}

// IsFallback はフォールバックレコードかどうかを返します。
func (a Analysis) IsFallback() bool {
	return a.Source == SourceFallback
}

// ScanResult はキャプチャしたフレームと解析結果の組です。次のスキャンで丸ごと置き換えられます。
type ScanResult struct {
	Frame     CapturedFrame
	Entity    *EntityRecord // nil は空のスキャン
	Source    AnalysisSource
	CreatedAt time.Time
}

// SessionSnapshot はビュー層に公開するセッションの読み取りモデルです。
type SessionSnapshot struct {
	ID        string
	State     ScanState
	Camera    CameraSession
	Result    *ScanResult
	UpdatedAt time.Time
}
