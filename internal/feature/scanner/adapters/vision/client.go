// Package vision はGoogle Cloud Vision APIを使用したシーンラベル検出クライアントを提供します。
// 検出したラベルはGeminiへのプロンプトのヒントとして使います。
package vision

import (
	"context"
	"fmt"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"invisible_lens/internal/feature/scanner/adapters/gemini"
)

const (
	// defaultMaxLabels はAPIに要求するラベル数です。
	defaultMaxLabels = 10
	// defaultMinScore はヒントとして採用するラベルの最低スコアです。
	defaultMinScore float32 = 0.6
)

// LabelDetector はGoogle Cloud Vision APIを使用してシーンのラベルを検出します。
type LabelDetector struct {
	client   *gvision.ImageAnnotatorClient
	minScore float32
}

// LabelDetectorがSceneLabelerを実装していることをコンパイル時に検証します。
var _ gemini.SceneLabeler = (*LabelDetector)(nil)

// NewLabelDetector はADCを使用してLabelDetectorの新しいインスタンスを生成します。
func NewLabelDetector(ctx context.Context) (*LabelDetector, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &LabelDetector{client: client, minScore: defaultMinScore}, nil
}

// Close はVision APIクライアントを解放します。
func (v *LabelDetector) Close() error {
	return v.client.Close()
}

// DetectLabels は画像バイト列からスコア順のラベルを返します。
func (v *LabelDetector) DetectLabels(ctx context.Context, imageData []byte) ([]string, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: imageData},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: defaultMaxLabels},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision API request failed: %w", err)
	}
	return labelsFromResponse(resp, v.minScore)
}

// labelsFromResponse はレスポンスから minScore 以上のラベル名を取り出します。
func labelsFromResponse(resp *visionpb.BatchAnnotateImagesResponse, minScore float32) ([]string, error) {
	if resp == nil || len(resp.Responses) == 0 {
		return nil, nil
	}
	first := resp.Responses[0]
	if first.Error != nil {
		return nil, fmt.Errorf("vision API error: %s", first.Error.Message)
	}

	labels := make([]string, 0, len(first.LabelAnnotations))
	for _, l := range first.LabelAnnotations {
		if l.Score < minScore || l.Description == "" {
			continue
		}
		labels = append(labels, l.Description)
	}
	return labels, nil
}
