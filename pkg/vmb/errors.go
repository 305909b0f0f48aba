package vmb

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors. Typed errors below match them through errors.Is.
var (
	// ErrLibraryNotFound is returned when the shared library cannot be loaded.
	ErrLibraryNotFound = errors.New("vmb: library not found")

	// ErrSymbolMissing is returned when a required entry point is not exported,
	// usually because the library belongs to a different SDK generation.
	ErrSymbolMissing = errors.New("vmb: required symbol missing")

	// ErrLibraryClosed is returned by Library.Close on the second call.
	ErrLibraryClosed = errors.New("vmb: library already closed")

	// ErrEnumerationRace is returned when the number of cameras changed between
	// the count query and the fill query.
	ErrEnumerationRace = errors.New("vmb: camera list changed during enumeration")

	// ErrBufferTooSmall is returned when a frame buffer is smaller than PayloadSize.
	ErrBufferTooSmall = errors.New("vmb: frame buffer smaller than payload size")

	// ErrTimedOut is returned when no frame completed within the wait timeout.
	// The frame stays queued; waiting again is allowed.
	ErrTimedOut = errors.New("vmb: timed out waiting for frame")

	// ErrFrameAborted is returned when a frame was delivered with a status
	// other than complete.
	ErrFrameAborted = errors.New("vmb: frame not complete")

	ErrAccessDenied    = errors.New("vmb: access denied")
	ErrFeatureNotFound = errors.New("vmb: feature not found")
	ErrTypeMismatch    = errors.New("vmb: feature type mismatch")

	ErrSessionActive      = errors.New("vmb: another session is already active in this process")
	ErrSessionClosed      = errors.New("vmb: session is shut down")
	ErrCameraNotFound     = errors.New("vmb: camera not found")
	ErrCameraAlreadyOpen  = errors.New("vmb: camera already open in this session")
	ErrCameraClosed       = errors.New("vmb: camera is closed")
	ErrCaptureActive      = errors.New("vmb: camera already has an announced frame buffer")
	ErrInvalidState       = errors.New("vmb: operation not allowed in current capture state")
	ErrInvalidFeatureName = errors.New("vmb: invalid feature name")
)

// LoadError describes a failure to load the library or resolve one of its symbols.
type LoadError struct {
	Path   string
	Symbol string // empty when the library itself failed to load
	Err    error  // ErrLibraryNotFound or ErrSymbolMissing
	Cause  error  // loader diagnostic, may be nil
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("vmb: load %q", e.Path)
	if e.Symbol != "" {
		msg += fmt.Sprintf(": symbol %s", e.Symbol)
	}
	msg += ": " + e.Err.Error()
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// APIError is a non-success result from a Vmb call. The numeric code is kept
// for diagnostics.
type APIError struct {
	Op      string // C function name, e.g. VmbCameraOpen
	Feature string // feature name for feature access calls
	Code    ErrorCode
}

func (e *APIError) Error() string {
	if e.Feature != "" {
		return fmt.Sprintf("vmb: %s(%q) failed: %s (%d)", e.Op, e.Feature, e.Code, int32(e.Code))
	}
	return fmt.Sprintf("vmb: %s failed: %s (%d)", e.Op, e.Code, int32(e.Code))
}

// Is lets callers test for the structured outcomes carried by a code.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAccessDenied:
		return e.Code == ErrorInvalidAccess
	case ErrFeatureNotFound:
		return e.Feature != "" && e.Code == ErrorNotFound
	case ErrTypeMismatch:
		return e.Code == ErrorWrongType
	}
	return false
}

// IsAccessDenied returns true if the device refused the requested access mode.
func (e *APIError) IsAccessDenied() bool {
	return e.Code == ErrorInvalidAccess
}

// EnumerationRaceError reports a camera count mismatch between the two list calls.
type EnumerationRaceError struct {
	Expected uint32
	Found    uint32
}

func (e *EnumerationRaceError) Error() string {
	return fmt.Sprintf("vmb: camera list changed during enumeration: counted %d, listed %d", e.Expected, e.Found)
}

func (e *EnumerationRaceError) Is(target error) bool {
	return target == ErrEnumerationRace
}

// BufferTooSmallError is returned before anything is announced.
type BufferTooSmallError struct {
	Size     int
	Required int64
}

func (e *BufferTooSmallError) Error() string {
	return fmt.Sprintf("vmb: frame buffer of %d bytes is smaller than payload size %d", e.Size, e.Required)
}

func (e *BufferTooSmallError) Is(target error) bool {
	return target == ErrBufferTooSmall
}

// FrameStatusError carries the receive status of a frame that did not complete.
type FrameStatusError struct {
	FrameID uint64
	Status  FrameStatus
}

func (e *FrameStatusError) Error() string {
	return fmt.Sprintf("vmb: frame %d not complete: %s (%d)", e.FrameID, e.Status, int32(e.Status))
}

func (e *FrameStatusError) Is(target error) bool {
	return target == ErrFrameAborted
}

func check(op string, code ErrorCode) error {
	if code == ErrorSuccess {
		return nil
	}
	return &APIError{Op: op, Code: code}
}

func checkFeature(op, feature string, code ErrorCode) error {
	if code == ErrorSuccess {
		return nil
	}
	return &APIError{Op: op, Feature: feature, Code: code}
}
