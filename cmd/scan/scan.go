package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"invisible_lens/internal/app/config"
	"invisible_lens/internal/app/di"
	"invisible_lens/internal/feature/scanner/adapters/camera"
	"invisible_lens/internal/feature/scanner/domain/entity"
	"invisible_lens/internal/feature/scanner/usecase"
	infraredis "invisible_lens/internal/platform/redis"
)

func newScanCmd() *cobra.Command {
	var (
		imagePath string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Reveal the invisible entity hidden in a photo",
		Long: `scan runs one capture of the Invisible Lens against a still image on disk.

The image is sent to Gemini, which imagines the hidden artwork living in the scene.
If the analysis fails, the fixed fallback entity is printed instead.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			rdb := connectCache(ctx, cfg.Redis)
			if rdb != nil {
				defer func() { _ = rdb.Close() }()
			}

			analyzer, closeAnalyzer, err := di.NewEntityAnalyzer(ctx, cfg, rdb)
			if err != nil {
				return err
			}
			defer func() { _ = closeAnalyzer() }()

			return runScan(ctx, cmd.OutOrStdout(), imagePath, asJSON, analyzer, cfg)
		},
	}

	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "path to a JPEG, PNG or WebP image")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

// connectCache returns nil when Redis is not configured or unreachable; the scan then runs uncached.
func connectCache(ctx context.Context, cfg infraredis.Config) *redis.Client {
	rdb, err := infraredis.NewRedisClient(ctx, cfg)
	if err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
		return nil
	}
	return rdb
}

type scanOutput struct {
	entity.EntityRecord
	Accent   string `json:"accent"`
	Fallback bool   `json:"fallback"`
	Share    string `json:"share"`
}

// runScan mounts a file camera, captures once and prints the entity.
func runScan(ctx context.Context, out io.Writer, imagePath string, asJSON bool, analyzer usecase.EntityAnalyzer, cfg config.Config) error {
	s := usecase.NewScanSession("cli", camera.NewFile(imagePath), analyzer,
		usecase.WithAnalysisTimeout(cfg.AnalyzerTimeout))
	defer func() { _ = s.Exit() }()

	mctx, cancel := context.WithTimeout(ctx, cfg.CameraTimeout)
	defer cancel()
	if err := s.Mount(mctx); err != nil {
		return err
	}
	if err := s.Capture(ctx); err != nil {
		return err
	}
	snap, err := s.Await(ctx)
	if err != nil {
		return err
	}
	if snap.Result == nil || snap.Result.Entity == nil {
		return errors.New("scan produced no entity")
	}

	rec := *snap.Result.Entity
	res := scanOutput{
		EntityRecord: rec,
		Accent:       rec.Rarity.Accent(),
		Fallback:     snap.Result.Source == entity.SourceFallback,
		Share:        entity.ShareText(rec),
	}
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintf(out, "%s [%s]\n\n", rec.Title, rec.Rarity)
	fmt.Fprintf(out, "%s\n\n", rec.Description)
	fmt.Fprintf(out, "Estilo visual:  %s\n", rec.VisualStyle)
	fmt.Fprintf(out, "Edad estimada:  %s\n", rec.EstimatedAge)
	fmt.Fprintf(out, "Significado:    %s\n", rec.Meaning)
	if res.Fallback {
		fmt.Fprintln(out, "\n(análisis no disponible; se muestra la entidad de reserva)")
	}
	return nil
}
