package camera

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"invisible_lens/internal/feature/scanner/domain/entity"
	"invisible_lens/internal/feature/scanner/usecase"
)

// File はディスク上の静止画をフレームとして返すカメラです。CLIで使用します。
type File struct {
	path string

	mu     sync.Mutex
	opened bool
	closed bool
}

var _ usecase.Camera = (*File)(nil)

// NewFile は指定した画像ファイルを読むFileカメラを生成します。
func NewFile(path string) *File {
	return &File{path: path}
}

// Open はファイルが読み取り可能な通常ファイルであることを確認します。
func (f *File) Open(ctx context.Context, facing entity.Facing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrCameraClosed
	}
	info, err := os.Stat(f.path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", f.path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", f.path)
	}
	f.opened = true
	return nil
}

// Snapshot はファイルを読み込み、検証済みのフレームとして返します。
func (f *File) Snapshot(ctx context.Context) (entity.CapturedFrame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return entity.CapturedFrame{}, ErrCameraClosed
	}
	if !f.opened {
		return entity.CapturedFrame{}, ErrNoFrame
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return entity.CapturedFrame{}, fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	return entity.NewCapturedFrame(data, time.Now())
}

// Close はカメラを閉じます。
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
