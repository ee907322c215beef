// Package api はHTTPエンドポイントのリクエスト・レスポンス型を定義します。
package api

// ErrorResponse はすべてのエラーレスポンスの共通形式です。
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse は /healthz のレスポンスです。
type HealthResponse struct {
	Status string `json:"status"`
	Cache  string `json:"cache,omitempty"`
}

// SectionResponse は情報モーダルの1項目です。
type SectionResponse struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// ContentResponse はイントロ画面と情報モーダルの文言です。
type ContentResponse struct {
	Title        string            `json:"title"`
	Tagline      string            `json:"tagline"`
	Intro        string            `json:"intro"`
	StartLabel   string            `json:"startLabel"`
	AboutLabel   string            `json:"aboutLabel"`
	AboutTitle   string            `json:"aboutTitle"`
	AboutLead    string            `json:"aboutLead"`
	AboutEntries []SectionResponse `json:"aboutEntries"`
}

// ViewResponse はビューコントローラーの状態です。
type ViewResponse struct {
	ID           string `json:"id"`
	Mode         string `json:"mode"`
	AboutVisible bool   `json:"aboutVisible"`
	SessionID    string `json:"sessionId,omitempty"`
}

// EntityResponse は解析されたエンティティです。
type EntityResponse struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	VisualStyle  string `json:"visualStyle"`
	Meaning      string `json:"meaning"`
	EstimatedAge string `json:"estimatedAge"`
	Rarity       string `json:"rarity"`
	Accent       string `json:"accent"`
}

// ScanResultResponse はキャプチャ1回分の結果です。Timestamp はUnixミリ秒です。
type ScanResultResponse struct {
	Image     string          `json:"image"`
	Entity    *EntityResponse `json:"entity"`
	Source    string          `json:"source"`
	Fallback  bool            `json:"fallback"`
	Timestamp int64           `json:"timestamp"`
}

// CameraResponse はカメラの状態です。
type CameraResponse struct {
	Active bool   `json:"active"`
	Error  string `json:"error,omitempty"`
}

// SessionResponse はスキャンセッションのスナップショットです。
type SessionResponse struct {
	ID        string              `json:"id"`
	State     string              `json:"state"`
	Camera    CameraResponse      `json:"camera"`
	Result    *ScanResultResponse `json:"result,omitempty"`
	UpdatedAt int64               `json:"updatedAt"`
}

// CameraReportRequest はブラウザでのカメラ取得結果です。
type CameraReportRequest struct {
	Granted *bool  `json:"granted" binding:"required"`
	Reason  string `json:"reason"`
}

// FrameRequest はdata URL形式のフレームです（canvas.toDataURL の出力）。
type FrameRequest struct {
	Image string `json:"image" binding:"required"`
}

// ShareResponse は共有キャプションです。
type ShareResponse struct {
	Text string `json:"text"`
}
