//go:build !vmb_legacy

package vmb

import (
	"unsafe"

	"github.com/ebitengine/purego"
)

// Generation names the SDK generation whose ABI this package was compiled for.
const Generation = "VmbC"

const (
	AccessModeNone      AccessMode = 0
	AccessModeFull      AccessMode = 1
	AccessModeRead      AccessMode = 2
	AccessModeUnknown   AccessMode = 4
	AccessModeExclusive AccessMode = 8
)

var accessModeBits = []struct {
	mode AccessMode
	name string
}{
	{AccessModeFull, "Full"},
	{AccessModeRead, "Read"},
	{AccessModeUnknown, "Unknown"},
	{AccessModeExclusive, "Exclusive"},
}

// Documented sizes on 64-bit targets, checked at compile time in abi_check.go.
const (
	abiCameraInfoSize = 80
	abiFrameSize      = 112
)

var defaultLibraryPaths = map[string]string{
	"linux":   "/opt/VimbaX_2023-4/api/lib/libVmbC.so",
	"darwin":  "/Library/Frameworks/VmbC.framework/Versions/A/VmbC",
	"windows": `C:\Program Files\Allied Vision\Vimba X\bin\VmbC.dll`,
}

var libraryFileNames = map[string]string{
	"linux":   "libVmbC.so",
	"darwin":  "VmbC",
	"windows": "VmbC.dll",
}

// RawCameraInfo mirrors VmbCameraInfo_t from VmbC.h (Vimba X).
type RawCameraInfo struct {
	CameraIDString       uintptr
	CameraIDExtended     uintptr
	CameraName           uintptr
	ModelName            uintptr
	SerialString         uintptr
	TransportLayerHandle uintptr
	InterfaceHandle      uintptr
	LocalDeviceHandle    uintptr
	StreamHandles        uintptr
	StreamCount          uint32
	PermittedAccess      uint32
}

// RawFrame mirrors VmbFrame_t from VmbC.h (Vimba X).
type RawFrame struct {
	Buffer           unsafe.Pointer
	BufferSize       uint32
	Context          [4]uintptr
	ReceiveStatus    int32
	FrameID          uint64
	Timestamp        uint64
	ImageData        uintptr
	ReceiveFlags     uint32
	PixelFormat      uint32
	Width            uint32
	Height           uint32
	OffsetX          uint32
	OffsetY          uint32
	PayloadType      uint32
	ChunkDataPresent uint8
}

// Describe copies the entry into host memory.
func (r *RawCameraInfo) Describe() CameraInfo {
	return CameraInfo{
		ID:              goString(r.CameraIDString),
		ExtendedID:      goString(r.CameraIDExtended),
		Name:            goString(r.CameraName),
		Model:           goString(r.ModelName),
		Serial:          goString(r.SerialString),
		PermittedAccess: AccessMode(r.PermittedAccess),
		StreamCount:     int(r.StreamCount),
	}
}

// Populate fills the entry the way the library does; cstr must return the
// address of a NUL terminated copy of s that outlives the entry.
func (r *RawCameraInfo) Populate(info CameraInfo, cstr func(s string) uintptr) {
	*r = RawCameraInfo{
		CameraIDString:   cstr(info.ID),
		CameraIDExtended: cstr(info.ExtendedID),
		CameraName:       cstr(info.Name),
		ModelName:        cstr(info.Model),
		SerialString:     cstr(info.Serial),
		StreamCount:      uint32(info.StreamCount),
		PermittedAccess:  uint32(info.PermittedAccess),
	}
}

// Snapshot copies the output fields of the frame.
func (f *RawFrame) Snapshot() Frame {
	return Frame{
		Status:       FrameStatus(f.ReceiveStatus),
		FrameID:      f.FrameID,
		Timestamp:    f.Timestamp,
		Width:        f.Width,
		Height:       f.Height,
		OffsetX:      f.OffsetX,
		OffsetY:      f.OffsetY,
		PixelFormat:  PixelFormat(f.PixelFormat),
		ImageSize:    f.BufferSize,
		BufferSize:   f.BufferSize,
		ReceiveFlags: f.ReceiveFlags,
	}
}

// SetResult writes the output fields the way the library does on completion.
// VmbC has no imageSize field; the image spans the whole buffer.
func (f *RawFrame) SetResult(fr Frame) {
	f.ReceiveStatus = int32(fr.Status)
	f.FrameID = fr.FrameID
	f.Timestamp = fr.Timestamp
	f.Width = fr.Width
	f.Height = fr.Height
	f.OffsetX = fr.OffsetX
	f.OffsetY = fr.OffsetY
	f.PixelFormat = uint32(fr.PixelFormat)
	f.ReceiveFlags = fr.ReceiveFlags
	f.ImageData = uintptr(f.Buffer)
}

func bindStartup(sym uintptr) func() int32 {
	var fn func(pathConfiguration *byte) int32
	purego.RegisterFunc(&fn, sym)
	return func() int32 {
		return fn(nil)
	}
}
