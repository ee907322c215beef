package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"invisible_lens/internal/feature/scanner/domain/entity"
)

// DefaultCameraTimeout はカメラ取得を待つ上限時間です。
const DefaultCameraTimeout = 30 * time.Second

// CameraFactory はセッションごとに新しいカメラを生成します。
type CameraFactory func() Camera

// Config はスキャンセッションの共通設定です。
type Config struct {
	CameraTimeout   time.Duration
	AnalysisTimeout time.Duration
	Facing          entity.Facing
}

// scannerUsecase は複数クライアントのスキャンセッションをホストします。
type scannerUsecase struct {
	repo      SessionRepository
	analyzer  EntityAnalyzer
	newCamera CameraFactory
	cfg       Config
}

// NewScannerUsecase はscannerUsecaseの新しいインスタンスを生成します。
// analyzer は起動時に一度だけ構築したものを全セッションで共有します。
func NewScannerUsecase(repo SessionRepository, analyzer EntityAnalyzer, newCamera CameraFactory, cfg Config) *scannerUsecase {
	if cfg.CameraTimeout <= 0 {
		cfg.CameraTimeout = DefaultCameraTimeout
	}
	if cfg.AnalysisTimeout <= 0 {
		cfg.AnalysisTimeout = DefaultAnalysisTimeout
	}
	if cfg.Facing == "" {
		cfg.Facing = entity.FacingEnvironment
	}
	return &scannerUsecase{repo: repo, analyzer: analyzer, newCamera: newCamera, cfg: cfg}
}

// StartSession は新しいセッションを登録し、バックグラウンドでカメラ取得を開始します。
// onExit はセッション終了時に呼ばれます。
func (u *scannerUsecase) StartSession(ctx context.Context, onExit ...func()) (entity.SessionSnapshot, error) {
	id := uuid.NewString()
	opts := []SessionOption{
		WithAnalysisTimeout(u.cfg.AnalysisTimeout),
		WithFacing(u.cfg.Facing),
		WithExitHook(func() { u.repo.Delete(id) }),
	}
	for _, fn := range onExit {
		opts = append(opts, WithExitHook(fn))
	}
	s := NewScanSession(id, u.newCamera(), u.analyzer, opts...)
	u.repo.Save(id, s)

	go func() {
		mctx, cancel := context.WithTimeout(context.Background(), u.cfg.CameraTimeout)
		defer cancel()
		if err := s.Mount(mctx); err != nil {
			slog.Warn("セッションのマウントに失敗", "session_id", id, "error", err)
		}
	}()

	slog.Info("スキャンセッションを開始", "session_id", id)
	return s.Snapshot(), nil
}

func (u *scannerUsecase) session(id string) (*ScanSession, error) {
	s, ok := u.repo.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Get はセッションのスナップショットを返します。
func (u *scannerUsecase) Get(ctx context.Context, id string) (entity.SessionSnapshot, error) {
	s, err := u.session(id)
	if err != nil {
		return entity.SessionSnapshot{}, err
	}
	return s.Snapshot(), nil
}

// ReportCamera はブラウザでのカメラ取得結果をセッションのカメラに伝えます。
func (u *scannerUsecase) ReportCamera(ctx context.Context, id string, granted bool, reason string) error {
	feed, err := u.feed(id)
	if err != nil {
		return err
	}
	return feed.Report(granted, reason)
}

// PushFrame はブラウザから届いた最新フレームをセッションのカメラに渡します。
func (u *scannerUsecase) PushFrame(ctx context.Context, id string, frame entity.CapturedFrame) error {
	feed, err := u.feed(id)
	if err != nil {
		return err
	}
	return feed.PushFrame(frame)
}

func (u *scannerUsecase) feed(id string) (RemoteFeed, error) {
	s, err := u.session(id)
	if err != nil {
		return nil, err
	}
	feed, ok := s.Camera().(RemoteFeed)
	if !ok {
		return nil, ErrUnsupportedCamera
	}
	return feed, nil
}

// Capture はキャプチャを開始します。wait が真なら解析完了まで待ちます。
func (u *scannerUsecase) Capture(ctx context.Context, id string, wait bool) (entity.SessionSnapshot, error) {
	s, err := u.session(id)
	if err != nil {
		return entity.SessionSnapshot{}, err
	}
	if err := s.Capture(ctx); err != nil {
		return s.Snapshot(), err
	}
	if wait {
		return s.Await(ctx)
	}
	return s.Snapshot(), nil
}

// Reset は結果を破棄してreadyに戻します。
func (u *scannerUsecase) Reset(ctx context.Context, id string) (entity.SessionSnapshot, error) {
	s, err := u.session(id)
	if err != nil {
		return entity.SessionSnapshot{}, err
	}
	if err := s.Reset(); err != nil {
		return s.Snapshot(), err
	}
	return s.Snapshot(), nil
}

// Exit はセッションを終了し、カメラを解放します。
func (u *scannerUsecase) Exit(ctx context.Context, id string) error {
	s, err := u.session(id)
	if err != nil {
		return err
	}
	return s.Exit()
}

// Share は結果の共有キャプションを返します。
func (u *scannerUsecase) Share(ctx context.Context, id string) (string, error) {
	s, err := u.session(id)
	if err != nil {
		return "", err
	}
	return s.ShareText()
}
