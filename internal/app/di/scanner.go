package di

import (
	"invisible_lens/internal/app/config"
	"invisible_lens/internal/feature/scanner/adapters/camera"
	"invisible_lens/internal/feature/scanner/transport/handler"
	"invisible_lens/internal/feature/scanner/usecase"
	"invisible_lens/internal/platform/session"
)

// ScannerService is the scanner usecase as seen by the HTTP handler and the view launcher.
type ScannerService = handler.ScannerUsecase

// NewScannerUsecase wires the scan session host on top of an in-memory TTL store.
// A session evicted from the store is exited, which releases its camera.
func NewScannerUsecase(cfg config.Config, analyzer usecase.EntityAnalyzer) ScannerService {
	store := session.NewMemoryStore[*usecase.ScanSession](cfg.SessionTTL, 0, func(id string, s *usecase.ScanSession) {
		_ = s.Exit()
	})
	newCamera := func() usecase.Camera { return camera.NewRemote() }
	return usecase.NewScannerUsecase(store, analyzer, newCamera, usecase.Config{
		CameraTimeout:   cfg.CameraTimeout,
		AnalysisTimeout: cfg.AnalyzerTimeout,
	})
}
