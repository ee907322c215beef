// Package camera はスキャンセッションが利用するカメラの実装を提供します。
package camera

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"invisible_lens/internal/feature/scanner/domain/entity"
	"invisible_lens/internal/feature/scanner/usecase"
)

var (
	ErrPermissionDenied = errors.New("camera permission denied")
	ErrAcquireTimeout   = errors.New("camera acquisition timed out")
	ErrAlreadyReported  = errors.New("camera acquisition already reported")
	ErrNotGranted       = errors.New("camera has not been granted")
	ErrNoFrame          = errors.New("no frame received yet")
	ErrCameraClosed     = errors.New("camera is closed")
)

type report struct {
	granted bool
	reason  string
}

// Remote はブラウザ側の getUserMedia ストリームをサーバー側で表すカメラです。
// ブラウザは取得結果を Report で通知し、現在のフレームを PushFrame で送り続けます。
type Remote struct {
	mu       sync.Mutex
	reportCh chan report
	closeCh  chan struct{}
	reported bool
	granted  bool
	closed   bool
	frame    *entity.CapturedFrame
	now      func() time.Time
}

var (
	_ usecase.Camera     = (*Remote)(nil)
	_ usecase.RemoteFeed = (*Remote)(nil)
)

// NewRemote は取得結果の通知を待つRemoteカメラを生成します。
func NewRemote() *Remote {
	return &Remote{
		reportCh: make(chan report, 1),
		closeCh:  make(chan struct{}),
		now:      time.Now,
	}
}

// Open はブラウザからの取得結果を待ちます。
func (r *Remote) Open(ctx context.Context, facing entity.Facing) error {
	select {
	case rep := <-r.reportCh:
		if !rep.granted {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, rep.reason)
		}
		return nil
	case <-r.closeCh:
		return ErrCameraClosed
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrAcquireTimeout, ctx.Err())
	}
}

// Report はブラウザでのカメラ取得結果を記録します。1回だけ受け付けます。
func (r *Remote) Report(granted bool, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrCameraClosed
	}
	if r.reported {
		return ErrAlreadyReported
	}
	r.reported = true
	r.granted = granted
	r.reportCh <- report{granted: granted, reason: reason}
	return nil
}

// PushFrame は最新フレームを置き換えます。許可される前のフレームは拒否します。
func (r *Remote) PushFrame(frame entity.CapturedFrame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrCameraClosed
	}
	if !r.granted {
		return ErrNotGranted
	}
	f := frame.Clone()
	r.frame = &f
	return nil
}

// Snapshot は最新フレームの複製をキャプチャ時刻付きで返します。
func (r *Remote) Snapshot(ctx context.Context) (entity.CapturedFrame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return entity.CapturedFrame{}, ErrCameraClosed
	}
	if r.frame == nil {
		return entity.CapturedFrame{}, ErrNoFrame
	}
	f := r.frame.Clone()
	f.CapturedAt = r.now()
	return f, nil
}

// Close はストリームを解放し、保持しているフレームを破棄します。
func (r *Remote) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.frame = nil
	close(r.closeCh)
	return nil
}
