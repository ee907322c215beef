// Package entity はviewcontrollerフィーチャーのドメインモデルを定義します。
package entity

import "time"

// Mode はトップレベルの画面です。
type Mode string

const (
	ModeIntro   Mode = "intro"
	ModeScanner Mode = "scanner"
)

// View はクライアント1つ分のビューコントローラーの状態です。
type View struct {
	ID           string
	Mode         Mode
	AboutVisible bool
	SessionID    string // scanner モードでマウント中のスキャンセッション
	UpdatedAt    time.Time
}

// NewView はintro画面、情報モーダル非表示のビューを生成します。
func NewView(id string, now time.Time) *View {
	return &View{ID: id, Mode: ModeIntro, UpdatedAt: now}
}

// Start はintroからscannerに遷移します。既にscannerなら何もせず false を返します。
func (v *View) Start(sessionID string, now time.Time) bool {
	if v.Mode == ModeScanner {
		return false
	}
	v.Mode = ModeScanner
	v.SessionID = sessionID
	v.UpdatedAt = now
	return true
}

// Back はintroに戻り、解放すべきスキャンセッションのIDを返します。
func (v *View) Back(now time.Time) string {
	released := v.SessionID
	v.Mode = ModeIntro
	v.SessionID = ""
	v.UpdatedAt = now
	return released
}

// Detach はセッション側から終了した場合にintroへ戻します。別のセッションなら何もしません。
func (v *View) Detach(sessionID string, now time.Time) bool {
	if sessionID == "" || v.SessionID != sessionID {
		return false
	}
	v.Back(now)
	return true
}

// SetAbout は情報モーダルの表示状態を変更します。モードとは独立です。
func (v *View) SetAbout(visible bool, now time.Time) {
	v.AboutVisible = visible
	v.UpdatedAt = now
}
