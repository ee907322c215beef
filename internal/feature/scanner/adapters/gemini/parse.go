package gemini

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"invisible_lens/internal/feature/scanner/domain/entity"
)

// ErrMalformedResponse はレスポンス本文がエンティティとして解釈できないことを表します。
var ErrMalformedResponse = errors.New("malformed entity response")

var entityFields = []string{"title", "description", "visualStyle", "meaning", "estimatedAge", "rarity"}

// parseEntity はGeminiの JSON 本文をエンティティレコードに変換します。
func parseEntity(text string) (entity.EntityRecord, error) {
	body := stripCodeFence(text)
	if !gjson.Valid(body) {
		return entity.EntityRecord{}, fmt.Errorf("%w: invalid json", ErrMalformedResponse)
	}
	root := gjson.Parse(body)
	if !root.IsObject() {
		return entity.EntityRecord{}, fmt.Errorf("%w: expected object", ErrMalformedResponse)
	}

	values := root.Map()
	for _, f := range entityFields {
		v, ok := values[f]
		if !ok || v.Type != gjson.String || strings.TrimSpace(v.Str) == "" {
			return entity.EntityRecord{}, fmt.Errorf("%w: missing field %q", ErrMalformedResponse, f)
		}
	}

	rarity, err := entity.ParseRarity(values["rarity"].Str)
	if err != nil {
		return entity.EntityRecord{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	record := entity.EntityRecord{
		Title:        strings.TrimSpace(values["title"].Str),
		Description:  strings.TrimSpace(values["description"].Str),
		VisualStyle:  strings.TrimSpace(values["visualStyle"].Str),
		Meaning:      strings.TrimSpace(values["meaning"].Str),
		EstimatedAge: strings.TrimSpace(values["estimatedAge"].Str),
		Rarity:       rarity,
	}
	if err := record.Validate(); err != nil {
		return entity.EntityRecord{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return record, nil
}

// stripCodeFence は ```json ... ``` で囲まれた本文から中身を取り出します。
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
