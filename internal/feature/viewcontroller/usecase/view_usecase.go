// Package usecase はトップレベル画面（intro / scanner）と情報モーダルの切り替えを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"invisible_lens/internal/feature/viewcontroller/domain/entity"
)

// ErrViewNotFound is returned when no view exists for the given ID.
var ErrViewNotFound = errors.New("view not found")

type viewUsecase struct {
	mu       sync.Mutex
	repo     ViewRepository
	launcher ScanLauncher
	now      func() time.Time
}

// NewViewUsecase はviewUsecaseの新しいインスタンスを生成します。
func NewViewUsecase(repo ViewRepository, launcher ScanLauncher) *viewUsecase {
	return &viewUsecase{repo: repo, launcher: launcher, now: time.Now}
}

// Content は画面の固定文言を返します。
func (u *viewUsecase) Content() entity.Content {
	return entity.DefaultContent()
}

// Create はintro画面のビューを新規作成します。
func (u *viewUsecase) Create(ctx context.Context) (entity.View, error) {
	v := entity.NewView(uuid.NewString(), u.now())
	u.mu.Lock()
	u.repo.Save(v.ID, v)
	u.mu.Unlock()
	return *v, nil
}

// Get はビューの現在の状態を返します。
func (u *viewUsecase) Get(ctx context.Context, id string) (entity.View, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	v, ok := u.repo.Get(id)
	if !ok {
		return entity.View{}, ErrViewNotFound
	}
	return *v, nil
}

// Start はscanner画面に遷移し、スキャンセッションをマウントします。
// 既にscannerの場合は何もしません。
func (u *viewUsecase) Start(ctx context.Context, id string) (entity.View, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	v, ok := u.repo.Get(id)
	if !ok {
		return entity.View{}, ErrViewNotFound
	}
	if v.Mode == entity.ModeScanner {
		return *v, nil
	}

	// フックは u.mu を取得してから sessionID を読むため、Start が返るまで待たされる
	var sessionID string
	sessionID, err := u.launcher.Launch(ctx, func() { u.detach(id, sessionID) })
	if err != nil {
		return *v, fmt.Errorf("launch scan session: %w", err)
	}
	v.Start(sessionID, u.now())
	u.repo.Save(id, v)

	slog.Info("スキャナー画面に遷移", "view_id", id, "session_id", sessionID)
	return *v, nil
}

// Back はintro画面に戻り、マウント中のスキャンセッションを解放します。
func (u *viewUsecase) Back(ctx context.Context, id string) (entity.View, error) {
	u.mu.Lock()
	v, ok := u.repo.Get(id)
	if !ok {
		u.mu.Unlock()
		return entity.View{}, ErrViewNotFound
	}
	released := v.Back(u.now())
	u.repo.Save(id, v)
	snapshot := *v
	u.mu.Unlock()

	// 解放時の終了フックが u.mu を取得するため、ロック外で呼ぶ
	if released != "" {
		if err := u.launcher.Release(ctx, released); err != nil {
			slog.Warn("スキャンセッションの解放に失敗", "view_id", id, "session_id", released, "error", err)
		}
	}
	return snapshot, nil
}

// OpenAbout は情報モーダルを表示します。
func (u *viewUsecase) OpenAbout(ctx context.Context, id string) (entity.View, error) {
	return u.setAbout(id, true)
}

// CloseAbout は情報モーダルを閉じます。
func (u *viewUsecase) CloseAbout(ctx context.Context, id string) (entity.View, error) {
	return u.setAbout(id, false)
}

func (u *viewUsecase) setAbout(id string, visible bool) (entity.View, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	v, ok := u.repo.Get(id)
	if !ok {
		return entity.View{}, ErrViewNotFound
	}
	v.SetAbout(visible, u.now())
	u.repo.Save(id, v)
	return *v, nil
}

// Release はビューの破棄時にマウント中のスキャンセッションを解放します。
func (u *viewUsecase) Release(ctx context.Context, v *entity.View) {
	if v == nil || v.SessionID == "" {
		return
	}
	if err := u.launcher.Release(ctx, v.SessionID); err != nil {
		slog.Warn("スキャンセッションの解放に失敗", "view_id", v.ID, "session_id", v.SessionID, "error", err)
	}
}

// detach はスキャンセッション側の終了をビューに反映します。
func (u *viewUsecase) detach(viewID, sessionID string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	v, ok := u.repo.Get(viewID)
	if !ok {
		return
	}
	if v.Detach(sessionID, u.now()) {
		u.repo.Save(viewID, v)
		slog.Info("スキャンセッション終了によりイントロ画面に戻る", "view_id", viewID, "session_id", sessionID)
	}
}
