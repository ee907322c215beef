// Package gemini はGoogle Gemini APIを使用したエンティティ解析クライアントを提供します。
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"invisible_lens/internal/feature/scanner/domain/entity"
	"invisible_lens/internal/feature/scanner/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
	// DefaultTemperature は創作性を高めるための生成温度です。
	DefaultTemperature float32 = 0.9
	// maxSceneHints はプロンプトに含めるシーンラベルの上限です。
	maxSceneHints = 5
)

// ErrEmptyResponse はGeminiが本文を返さなかったことを表します。
var ErrEmptyResponse = errors.New("no hay respuesta del mundo invisible")

// contentGenerator は genai.Models のうち本パッケージが使うメソッドです。
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// SceneLabeler は画像からシーンのラベルを抽出します。プロンプトのヒントとして使います。
type SceneLabeler interface {
	DetectLabels(ctx context.Context, imageData []byte) ([]string, error)
}

// Config はGeminiクライアントの設定です。
type Config struct {
	APIKey      string       // 空の場合は GOOGLE_GENAI_USE_VERTEXAI などの環境変数（ADC）に従う
	Model       string       // 空の場合は DefaultModel
	Temperature float32      // 0 の場合は DefaultTemperature
	HTTPClient  *http.Client // nil の場合はSDKのデフォルト
}

// EntityAnalyzer はGeminiで画像から見えないエンティティを生成します。
type EntityAnalyzer struct {
	models      contentGenerator
	model       string
	temperature float32
	labeler     SceneLabeler
}

// EntityAnalyzerがEntityAnalyzerインターフェースを実装していることをコンパイル時に検証します。
var _ usecase.EntityAnalyzer = (*EntityAnalyzer)(nil)

// Option はEntityAnalyzerの設定を変更します。
type Option func(*EntityAnalyzer)

// WithSceneLabeler はシーンラベルの抽出器を設定します。
func WithSceneLabeler(l SceneLabeler) Option {
	return func(a *EntityAnalyzer) { a.labeler = l }
}

// NewEntityAnalyzer はGeminiクライアントを1つ生成し、それを保持するEntityAnalyzerを返します。
// クライアントは起動時に一度だけ作成し、全セッションで共有します。
func NewEntityAnalyzer(ctx context.Context, cfg Config, opts ...Option) (*EntityAnalyzer, error) {
	cc := &genai.ClientConfig{HTTPClient: cfg.HTTPClient}
	if cfg.APIKey != "" {
		cc.APIKey = cfg.APIKey
		cc.Backend = genai.BackendGeminiAPI
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return newEntityAnalyzer(client.Models, cfg.Model, cfg.Temperature, opts...), nil
}

func newEntityAnalyzer(models contentGenerator, model string, temperature float32, opts ...Option) *EntityAnalyzer {
	if model == "" {
		model = DefaultModel
	}
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	a := &EntityAnalyzer{models: models, model: model, temperature: temperature}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeEntity はフレームをGeminiに送り、構造化されたエンティティレコードを返します。
func (a *EntityAnalyzer) AnalyzeEntity(ctx context.Context, frame entity.CapturedFrame) (*entity.EntityRecord, error) {
	if len(frame.Data) == 0 {
		return nil, entity.ErrEmptyFrame
	}
	mimeType := frame.MIMEType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(frame.Data, mimeType),
		genai.NewPartFromText(buildPrompt(a.sceneHints(ctx, frame.Data))),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   entitySchema(),
		Temperature:      genai.Ptr(a.temperature),
	}

	resp, err := a.models.GenerateContent(ctx, a.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini API request failed: %w", err)
	}
	if resp == nil {
		return nil, ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, ErrEmptyResponse
	}

	record, err := parseEntity(text)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (a *EntityAnalyzer) sceneHints(ctx context.Context, data []byte) []string {
	if a.labeler == nil {
		return nil
	}
	labels, err := a.labeler.DetectLabels(ctx, data)
	if err != nil {
		slog.Warn("シーンラベルの取得に失敗、ヒントなしで続行", "error", err)
		return nil
	}
	if len(labels) > maxSceneHints {
		labels = labels[:maxSceneHints]
	}
	return labels
}
