package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"invisible_lens/internal/feature/scanner/domain/entity"
)

// DefaultAnalysisTimeout は解析リクエスト1回あたりの上限時間です。
const DefaultAnalysisTimeout = 30 * time.Second

// SessionOption はScanSessionの設定を変更します。
type SessionOption func(*ScanSession)

// WithAnalysisTimeout は解析リクエストのタイムアウトを設定します。
func WithAnalysisTimeout(d time.Duration) SessionOption {
	return func(s *ScanSession) {
		if d > 0 {
			s.analysisTimeout = d
		}
	}
}

// WithFacing は取得するカメラの向きを設定します。
func WithFacing(f entity.Facing) SessionOption {
	return func(s *ScanSession) {
		if f != "" {
			s.facing = f
		}
	}
}

// WithExitHook はセッション終了時に呼ばれる関数を登録します。
func WithExitHook(fn func()) SessionOption {
	return func(s *ScanSession) {
		if fn != nil {
			s.exitHooks = append(s.exitHooks, fn)
		}
	}
}

// WithClock は時刻の取得元を差し替えます。
func WithClock(now func() time.Time) SessionOption {
	return func(s *ScanSession) {
		if now != nil {
			s.now = now
		}
	}
}

// ScanSession はカメラの取得、フレームのキャプチャ、解析呼び出し、結果の保持を担う状態機械です。
//
//	idle -> ready -> analyzing -> result -> ready
//	idle -> error
//	(any) -> closed
//
// 解析は常に1件まで。カメラの解放はどの終了経路でも1回だけ行われます。
type ScanSession struct {
	id              string
	camera          Camera
	analyzer        EntityAnalyzer
	facing          entity.Facing
	analysisTimeout time.Duration
	now             func() time.Time

	mu        sync.Mutex
	state     entity.ScanState
	mounting  bool
	capturing bool
	cameraErr string
	result    *entity.ScanResult
	cancel    context.CancelFunc
	inflight  chan struct{}
	updatedAt time.Time
	exitHooks []func()

	releaseOnce sync.Once
	releaseErr  error
}

// NewScanSession はidle状態のScanSessionを生成します。カメラはMountで取得します。
func NewScanSession(id string, camera Camera, analyzer EntityAnalyzer, opts ...SessionOption) *ScanSession {
	s := &ScanSession{
		id:              id,
		camera:          camera,
		analyzer:        analyzer,
		facing:          entity.FacingEnvironment,
		analysisTimeout: DefaultAnalysisTimeout,
		now:             time.Now,
		state:           entity.StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.updatedAt = s.now()
	return s
}

// ID はセッションIDを返します。
func (s *ScanSession) ID() string { return s.id }

// Camera はセッションが所有するカメラを返します。
func (s *ScanSession) Camera() Camera { return s.camera }

// Mount はカメラを取得します。成功するとready、失敗するとerrorに遷移します（再試行なし）。
func (s *ScanSession) Mount(ctx context.Context) error {
	s.mu.Lock()
	if s.state != entity.StateIdle || s.mounting {
		s.mu.Unlock()
		return fmt.Errorf("%w: mount from %s", ErrInvalidTransition, s.state)
	}
	s.mounting = true
	s.mu.Unlock()

	err := s.camera.Open(ctx, s.facing)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mounting = false
	if s.state != entity.StateIdle {
		return fmt.Errorf("%w: session %s closed during camera acquisition", ErrInvalidTransition, s.id)
	}
	s.updatedAt = s.now()
	if err != nil {
		s.state = entity.StateError
		s.cameraErr = entity.CameraDeniedMessage
		slog.Warn("カメラの取得に失敗", "session_id", s.id, "error", err)
		return fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
	}
	s.state = entity.StateReady
	slog.Info("カメラを取得", "session_id", s.id, "facing", s.facing)
	return nil
}

// Capture は現在のフレームを固定し、解析を開始します。ready以外では何もせず ErrCaptureUnavailable を返します。
// フレームの取得中はロックを保持しないため、その間も Exit や Snapshot はすぐに返ります。
func (s *ScanSession) Capture(ctx context.Context) error {
	s.mu.Lock()
	if s.state != entity.StateReady || s.capturing {
		s.mu.Unlock()
		return ErrCaptureUnavailable
	}
	s.capturing = true
	s.mu.Unlock()

	frame, err := s.camera.Snapshot(ctx)

	s.mu.Lock()
	s.capturing = false
	if s.state != entity.StateReady {
		s.mu.Unlock()
		return fmt.Errorf("%w: session %s left ready during capture", ErrInvalidTransition, s.id)
	}
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to snapshot frame: %w", err)
	}

	actx, cancel := context.WithTimeout(context.Background(), s.analysisTimeout)
	done := make(chan struct{})
	s.state = entity.StateAnalyzing
	s.result = nil
	s.cancel = cancel
	s.inflight = done
	s.updatedAt = s.now()
	s.mu.Unlock()

	go s.analyze(actx, cancel, frame, done)
	return nil
}

func (s *ScanSession) analyze(ctx context.Context, cancel context.CancelFunc, frame entity.CapturedFrame, done chan struct{}) {
	defer close(done)
	defer cancel()

	analysis := AnalyzeWithFallback(ctx, s.analyzer, frame)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != entity.StateAnalyzing || s.inflight != done {
		slog.Info("終了済みセッションの解析結果を破棄", "session_id", s.id, "source", analysis.Source)
		return
	}
	record := analysis.Record
	s.result = &entity.ScanResult{
		Frame:     frame,
		Entity:    &record,
		Source:    analysis.Source,
		CreatedAt: s.now(),
	}
	s.state = entity.StateResult
	s.cancel = nil
	s.inflight = nil
	s.updatedAt = s.result.CreatedAt
}

// Await は処理中の解析が終わるまで待ち、最新のスナップショットを返します。
func (s *ScanSession) Await(ctx context.Context) (entity.SessionSnapshot, error) {
	s.mu.Lock()
	ch := s.inflight
	s.mu.Unlock()

	if ch != nil {
		select {
		case <-ch:
		case <-ctx.Done():
			return s.Snapshot(), ctx.Err()
		}
	}
	return s.Snapshot(), nil
}

// Reset は結果を破棄してreadyに戻します。result以外では ErrInvalidTransition を返します。
func (s *ScanSession) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != entity.StateResult {
		return fmt.Errorf("%w: reset from %s", ErrInvalidTransition, s.state)
	}
	s.result = nil
	s.state = entity.StateReady
	s.updatedAt = s.now()
	return nil
}

// Exit はどの状態からでも呼び出せます。処理中の解析をキャンセルし、カメラを解放してclosedに遷移します。
// 2回目以降の呼び出しは何もしません。
func (s *ScanSession) Exit() error {
	s.mu.Lock()
	if s.state == entity.StateClosed {
		s.mu.Unlock()
		return nil
	}
	s.state = entity.StateClosed
	s.result = nil
	s.updatedAt = s.now()
	cancel := s.cancel
	s.cancel = nil
	hooks := s.exitHooks
	s.exitHooks = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	err := s.release()
	for _, h := range hooks {
		h()
	}
	slog.Info("スキャンセッションを終了", "session_id", s.id)
	return err
}

// OnExit は終了時のフックを追加します。既に終了している場合は即座に呼び出します。
func (s *ScanSession) OnExit(fn func()) {
	s.mu.Lock()
	if s.state != entity.StateClosed {
		s.exitHooks = append(s.exitHooks, fn)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	fn()
}

func (s *ScanSession) release() error {
	s.releaseOnce.Do(func() {
		if err := s.camera.Close(); err != nil {
			s.releaseErr = fmt.Errorf("failed to release camera: %w", err)
		}
	})
	return s.releaseErr
}

// State は現在の状態を返します。
func (s *ScanSession) State() entity.ScanState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot はビュー層向けの読み取りモデルを返します。
func (s *ScanSession) Snapshot() entity.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := entity.SessionSnapshot{
		ID:    s.id,
		State: s.state,
		Camera: entity.CameraSession{
			Active: s.state == entity.StateReady || s.state == entity.StateAnalyzing || s.state == entity.StateResult,
			Error:  s.cameraErr,
		},
		UpdatedAt: s.updatedAt,
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}

// ShareText は現在の結果の共有キャプションを返します。
func (s *ScanSession) ShareText() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil || s.result.Entity == nil {
		return "", ErrNoResult
	}
	return entity.ShareText(*s.result.Entity), nil
}
