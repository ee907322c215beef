// Package entity はscannerフィーチャーのドメインモデルを定義します。
package entity

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Rarity は発見されたエンティティの希少度です。値はクライアントに表示するスペイン語ラベルです。
type Rarity string

const (
	RarityCommon    Rarity = "Común"
	RarityRare      Rarity = "Raro"
	RarityLegendary Rarity = "Legendario"
	RarityArtifact  Rarity = "Artefacto"
)

// Rarities は希少度の全候補を表示順で返します。
func Rarities() []Rarity {
	return []Rarity{RarityCommon, RarityRare, RarityLegendary, RarityArtifact}
}

// ParseRarity はラベル（スペイン語・英語、大文字小文字を区別しない）から希少度を解決します。
func ParseRarity(s string) (Rarity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "común", "comun", "common":
		return RarityCommon, nil
	case "raro", "rare":
		return RarityRare, nil
	case "legendario", "legendary":
		return RarityLegendary, nil
	case "artefacto", "artifact":
		return RarityArtifact, nil
	}
	return "", fmt.Errorf("unknown rarity %q", s)
}

// Accent は希少度ごとの表示アクセントカラーを返します。
func (r Rarity) Accent() string {
	switch r {
	case RarityCommon:
		return "gray"
	case RarityRare:
		return "cyan"
	case RarityLegendary:
		return "amber"
	case RarityArtifact:
		return "purple"
	default:
		return "white"
	}
}

// EntityRecord は解析で得られた「見えないエンティティ」の記述です。
type EntityRecord struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description" validate:"required"`
	VisualStyle  string `json:"visualStyle" validate:"required"`
	Meaning      string `json:"meaning" validate:"required"`
	EstimatedAge string `json:"estimatedAge" validate:"required"`
	Rarity       Rarity `json:"rarity" validate:"required,oneof=Común Raro Legendario Artefacto"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate は全フィールドが埋まっており、希少度が列挙値であることを検証します。
func (r EntityRecord) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid entity record: %w", err)
	}
	return nil
}

// FallbackRecord は解析失敗時に表示する固定のレコードを返します。
func FallbackRecord() EntityRecord {
	return EntityRecord{
		Title:        "Anomalía de Vacío Estático",
		Description:  "La interferencia impide una lectura clara. El éter invisible está turbulento aquí. Intenta escanear de nuevo con mejor luz.",
		VisualStyle:  "Ruido Glitch",
		Meaning:      "El universo te está ocultando algo.",
		EstimatedAge: "Desconocida",
		Rarity:       RarityCommon,
	}
}

// ShareText は共有用のキャプションを生成します。
func ShareText(r EntityRecord) string {
	return fmt.Sprintf("Encontré «%s» (%s) con la Lente Invisible. %s \"%s\"",
		r.Title, r.Rarity, r.Description, r.Meaning)
}
