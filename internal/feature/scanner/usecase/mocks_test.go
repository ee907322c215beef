package usecase_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"invisible_lens/internal/feature/scanner/domain/entity"
	"invisible_lens/internal/feature/scanner/usecase"
)

// ErrAPI はモックと期待値の間で共有されるセンチネルエラーです。
var ErrAPI = errors.New("api error")

// mockCamera はCameraインターフェースのモック実装です。
type mockCamera struct {
	OpenFunc     func(ctx context.Context, facing entity.Facing) error
	SnapshotFunc func(ctx context.Context) (entity.CapturedFrame, error)
	closeCalls   atomic.Int32
}

func (m *mockCamera) Open(ctx context.Context, facing entity.Facing) error {
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, facing)
	}
	return nil
}

func (m *mockCamera) Snapshot(ctx context.Context) (entity.CapturedFrame, error) {
	if m.SnapshotFunc != nil {
		return m.SnapshotFunc(ctx)
	}
	return testFrame(), nil
}

func (m *mockCamera) Close() error {
	m.closeCalls.Add(1)
	return nil
}

func (m *mockCamera) CloseCalls() int { return int(m.closeCalls.Load()) }

// mockRemoteCamera はRemoteFeedも実装するカメラのモックです。
type mockRemoteCamera struct {
	mockCamera
	mu      sync.Mutex
	reports []bool
	frames  int
}

func (m *mockRemoteCamera) Report(granted bool, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, granted)
	return nil
}

func (m *mockRemoteCamera) PushFrame(frame entity.CapturedFrame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames++
	return nil
}

// mockAnalyzer はEntityAnalyzerインターフェースのモック実装です。
type mockAnalyzer struct {
	AnalyzeFunc func(ctx context.Context, frame entity.CapturedFrame) (*entity.EntityRecord, error)
	calls       atomic.Int32
}

func (m *mockAnalyzer) AnalyzeEntity(ctx context.Context, frame entity.CapturedFrame) (*entity.EntityRecord, error) {
	m.calls.Add(1)
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, frame)
	}
	return nil, errors.New("AnalyzeFunc is not implemented")
}

func (m *mockAnalyzer) Calls() int { return int(m.calls.Load()) }

// memoryRepo はSessionRepositoryのテスト用実装です。
type memoryRepo struct {
	mu       sync.Mutex
	sessions map[string]*usecase.ScanSession
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{sessions: map[string]*usecase.ScanSession{}}
}

func (r *memoryRepo) Save(id string, s *usecase.ScanSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = s
}

func (r *memoryRepo) Get(id string) (*usecase.ScanSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *memoryRepo) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func testFrame() entity.CapturedFrame {
	return entity.CapturedFrame{
		Data:       []byte("fake-jpeg"),
		MIMEType:   "image/jpeg",
		CapturedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func rareRecord() *entity.EntityRecord {
	return &entity.EntityRecord{
		Title:        "X",
		Description:  "Una espiral de luz suspendida sobre la mesa.",
		VisualStyle:  "Barroco Bioluminiscente",
		Meaning:      "La memoria de las conversaciones pasadas.",
		EstimatedAge: "300 años",
		Rarity:       entity.RarityRare,
	}
}
