// Package usecase はscannerフィーチャーのスキャンサイクル（状態遷移と解析リクエストの制御）を実装します。
package usecase

import "errors"

var (
	// ErrSessionNotFound is returned when no scan session exists for the given ID.
	ErrSessionNotFound = errors.New("scan session not found")

	// ErrCaptureUnavailable is returned when capture is requested outside the ready state.
	// The session state is left untouched.
	ErrCaptureUnavailable = errors.New("capture is only available when the session is ready")

	// ErrInvalidTransition is returned when an operation is not valid in the current state.
	ErrInvalidTransition = errors.New("invalid scan session transition")

	// ErrCameraUnavailable wraps every camera acquisition failure.
	ErrCameraUnavailable = errors.New("camera unavailable")

	// ErrUnsupportedCamera is returned when a remote-only operation targets another camera kind.
	ErrUnsupportedCamera = errors.New("camera does not accept remote frames")

	// ErrNoResult is returned when a share caption is requested without a result.
	ErrNoResult = errors.New("scan session has no result")
)
