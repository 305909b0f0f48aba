package vmb

import (
	"fmt"
	"strings"
	"unsafe"
)

// Handle is an opaque VmbHandle_t.
type Handle uintptr

// AccessMode is the VmbAccessMode_t bitmask. The set of defined bits depends
// on the SDK generation the package was built for.
type AccessMode uint32

func (m AccessMode) String() string {
	if m == AccessModeNone {
		return "None"
	}
	var parts []string
	for _, bit := range accessModeBits {
		if m&bit.mode != 0 {
			parts = append(parts, bit.name)
			m &^= bit.mode
		}
	}
	if m != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(m)))
	}
	return strings.Join(parts, "|")
}

// Has reports whether all bits of mode are permitted.
func (m AccessMode) Has(mode AccessMode) bool {
	return m&mode == mode
}

// VersionInfo mirrors VmbVersionInfo_t.
type VersionInfo struct {
	Major uint32
	Minor uint32
	Patch uint32
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// CameraInfo is a host-owned copy of one VmbCameraInfo_t entry. Fields that
// do not exist in the compiled SDK generation are left empty.
type CameraInfo struct {
	ID              string     `json:"id"`
	ExtendedID      string     `json:"extendedId,omitempty"`
	InterfaceID     string     `json:"interfaceId,omitempty"`
	Name            string     `json:"name"`
	Model           string     `json:"model"`
	Serial          string     `json:"serial"`
	PermittedAccess AccessMode `json:"permittedAccess"`
	StreamCount     int        `json:"streamCount"`
}

// Frame is a snapshot of the output fields of VmbFrame_t, taken after a wait.
type Frame struct {
	Status       FrameStatus `json:"status"`
	FrameID      uint64      `json:"frameId"`
	Timestamp    uint64      `json:"timestamp"`
	Width        uint32      `json:"width"`
	Height       uint32      `json:"height"`
	OffsetX      uint32      `json:"offsetX"`
	OffsetY      uint32      `json:"offsetY"`
	PixelFormat  PixelFormat `json:"pixelFormat"`
	ImageSize    uint32      `json:"imageSize"`
	BufferSize   uint32      `json:"bufferSize"`
	ReceiveFlags uint32      `json:"receiveFlags"`
}

// Complete reports whether the frame was fully received.
func (f Frame) Complete() bool {
	return f.Status == FrameStatusComplete
}

// Data returns the announced buffer as a byte slice without copying.
func (f *RawFrame) Data() []byte {
	if f.Buffer == nil || f.BufferSize == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(f.Buffer), f.BufferSize)
}

// goString copies a NUL terminated string out of memory owned by the library.
func goString(p uintptr) string {
	if p == 0 {
		return ""
	}
	base := unsafe.Pointer(p)
	n := 0
	for *(*byte)(unsafe.Add(base, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(base), n))
}

const (
	rawCameraInfoSize = uint32(unsafe.Sizeof(RawCameraInfo{}))
	rawFrameSize      = uint32(unsafe.Sizeof(RawFrame{}))
	versionInfoSize   = uint32(unsafe.Sizeof(VersionInfo{}))
)
