package di

import (
	"context"
	"errors"

	"invisible_lens/internal/app/config"
	scannerusecase "invisible_lens/internal/feature/scanner/usecase"
	"invisible_lens/internal/feature/viewcontroller/domain/entity"
	"invisible_lens/internal/feature/viewcontroller/transport/handler"
	"invisible_lens/internal/feature/viewcontroller/usecase"
	"invisible_lens/internal/platform/session"
)

// scanLauncher adapts the scanner usecase to the view controller's ScanLauncher port.
type scanLauncher struct {
	scanner ScannerService
}

var _ usecase.ScanLauncher = (*scanLauncher)(nil)

func (l *scanLauncher) Launch(ctx context.Context, onExit func()) (string, error) {
	snap, err := l.scanner.StartSession(ctx, onExit)
	if err != nil {
		return "", err
	}
	return snap.ID, nil
}

// Release exits the scan session. A session that already expired counts as released.
func (l *scanLauncher) Release(ctx context.Context, sessionID string) error {
	err := l.scanner.Exit(ctx, sessionID)
	if errors.Is(err, scannerusecase.ErrSessionNotFound) {
		return nil
	}
	return err
}

// NewViewUsecase wires the view controller. Views share the session TTL; an evicted view
// releases the scan session it had mounted.
func NewViewUsecase(cfg config.Config, scanner ScannerService) handler.ViewUsecase {
	launcher := &scanLauncher{scanner: scanner}

	var uc interface {
		handler.ViewUsecase
		Release(ctx context.Context, v *entity.View)
	}
	store := session.NewMemoryStore[*entity.View](cfg.SessionTTL, 0, func(id string, v *entity.View) {
		uc.Release(context.Background(), v)
	})
	uc = usecase.NewViewUsecase(store, launcher)
	return uc
}
