package usecase

import (
	"context"

	"invisible_lens/internal/feature/viewcontroller/domain/entity"
)

// ScanLauncher はscanner画面のスキャンセッションを起動・解放します。
type ScanLauncher interface {
	// Launch は新しいスキャンセッションを起動し、そのIDを返します。
	// onExit はセッションが終了したとき（解放・期限切れを含む）に一度呼ばれます。
	Launch(ctx context.Context, onExit func()) (string, error)
	Release(ctx context.Context, sessionID string) error
}

// ViewRepository はビューの保存先です。
type ViewRepository interface {
	Save(id string, v *entity.View)
	Get(id string) (*entity.View, bool)
	Delete(id string)
}
