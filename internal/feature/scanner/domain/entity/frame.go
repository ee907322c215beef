package entity

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// MaxFrameSize はフレーム1枚あたりの最大サイズ（10MB）です。
const MaxFrameSize = 10 * 1024 * 1024

var (
	ErrEmptyFrame       = errors.New("frame is empty")
	ErrFrameTooLarge    = fmt.Errorf("frame exceeds maximum of %d bytes", MaxFrameSize)
	ErrUnsupportedImage = errors.New("unsupported image format")
)

var supportedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// CapturedFrame はキャプチャ時点のビデオフレームを静止画としてエンコードしたものです。
// 解析リクエスト1回分の間だけ存在します。
type CapturedFrame struct {
	Data       []byte
	MIMEType   string
	CapturedAt time.Time
}

// NewCapturedFrame は画像バイト列を検証し、MIMEタイプを判定してフレームを生成します。
func NewCapturedFrame(data []byte, capturedAt time.Time) (CapturedFrame, error) {
	if len(data) == 0 {
		return CapturedFrame{}, ErrEmptyFrame
	}
	if len(data) > MaxFrameSize {
		return CapturedFrame{}, ErrFrameTooLarge
	}
	mt := mimetype.Detect(data)
	if _, ok := supportedImageTypes[mt.String()]; !ok {
		return CapturedFrame{}, fmt.Errorf("%w: %s", ErrUnsupportedImage, mt.String())
	}
	return CapturedFrame{Data: data, MIMEType: mt.String(), CapturedAt: capturedAt}, nil
}

// DecodeDataURL は canvas.toDataURL 形式（またはヘッダーなしのbase64）の文字列をフレームに変換します。
func DecodeDataURL(s string, capturedAt time.Time) (CapturedFrame, error) {
	payload := strings.TrimSpace(s)
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 || !strings.HasSuffix(payload[:idx], ";base64") {
			return CapturedFrame{}, fmt.Errorf("%w: malformed data url", ErrUnsupportedImage)
		}
		payload = payload[idx+1:]
	}
	if payload == "" {
		return CapturedFrame{}, ErrEmptyFrame
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxFrameSize+3 {
		return CapturedFrame{}, ErrFrameTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return CapturedFrame{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return NewCapturedFrame(data, capturedAt)
}

// DataURL はフレームを data URL 形式で返します。
func (f CapturedFrame) DataURL() string {
	if len(f.Data) == 0 {
		return ""
	}
	return "data:" + f.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
}

// Clone はバイト列を複製したフレームを返します。
func (f CapturedFrame) Clone() CapturedFrame {
	out := f
	out.Data = append([]byte(nil), f.Data...)
	return out
}
