//go:build vmb_legacy

package vmb

import (
	"unsafe"

	"github.com/ebitengine/purego"
)

// Generation names the SDK generation whose ABI this package was compiled for.
const Generation = "VimbaC"

const (
	AccessModeNone   AccessMode = 0
	AccessModeFull   AccessMode = 1
	AccessModeRead   AccessMode = 2
	AccessModeConfig AccessMode = 4
	AccessModeLite   AccessMode = 8
)

var accessModeBits = []struct {
	mode AccessMode
	name string
}{
	{AccessModeFull, "Full"},
	{AccessModeRead, "Read"},
	{AccessModeConfig, "Config"},
	{AccessModeLite, "Lite"},
}

// Documented sizes on 64-bit targets, checked at compile time in abi_check.go.
const (
	abiCameraInfoSize = 48
	abiFrameSize      = 104
)

var defaultLibraryPaths = map[string]string{
	"linux":   "/opt/Vimba_5_1/VimbaC/DynamicLib/x86_64bit/libVimbaC.so",
	"darwin":  "/Library/Frameworks/VimbaC.framework/Versions/A/VimbaC",
	"windows": `C:\Program Files\Allied Vision\Vimba_5.1\VimbaC\Bin\Win64\VimbaC.dll`,
}

var libraryFileNames = map[string]string{
	"linux":   "libVimbaC.so",
	"darwin":  "VimbaC",
	"windows": "VimbaC.dll",
}

// RawCameraInfo mirrors VmbCameraInfo_t from VimbaC.h (Vimba 5 and earlier).
type RawCameraInfo struct {
	CameraIDString    uintptr
	CameraName        uintptr
	ModelName         uintptr
	SerialString      uintptr
	PermittedAccess   uint32
	InterfaceIDString uintptr
}

// RawFrame mirrors VmbFrame_t from VimbaC.h (Vimba 5 and earlier).
type RawFrame struct {
	Buffer        unsafe.Pointer
	BufferSize    uint32
	Context       [4]uintptr
	ReceiveStatus int32
	ReceiveFlags  uint32
	ImageSize     uint32
	AncillarySize uint32
	PixelFormat   uint32
	Width         uint32
	Height        uint32
	OffsetX       uint32
	OffsetY       uint32
	FrameID       uint64
	Timestamp     uint64
}

// Describe copies the entry into host memory.
func (r *RawCameraInfo) Describe() CameraInfo {
	return CameraInfo{
		ID:              goString(r.CameraIDString),
		InterfaceID:     goString(r.InterfaceIDString),
		Name:            goString(r.CameraName),
		Model:           goString(r.ModelName),
		Serial:          goString(r.SerialString),
		PermittedAccess: AccessMode(r.PermittedAccess),
		StreamCount:     1,
	}
}

// Populate fills the entry the way the library does; cstr must return the
// address of a NUL terminated copy of s that outlives the entry.
func (r *RawCameraInfo) Populate(info CameraInfo, cstr func(s string) uintptr) {
	*r = RawCameraInfo{
		CameraIDString:    cstr(info.ID),
		CameraName:        cstr(info.Name),
		ModelName:         cstr(info.Model),
		SerialString:      cstr(info.Serial),
		PermittedAccess:   uint32(info.PermittedAccess),
		InterfaceIDString: cstr(info.InterfaceID),
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
		ImageSize:    f.ImageSize,
		BufferSize:   f.BufferSize,
		ReceiveFlags: f.ReceiveFlags,
	}
}

// SetResult writes the output fields the way the library does on completion.
func (f *RawFrame) SetResult(fr Frame) {
	f.ReceiveStatus = int32(fr.Status)
	f.FrameID = fr.FrameID
	f.Timestamp = fr.Timestamp
	f.Width = fr.Width
	f.Height = fr.Height
	f.OffsetX = fr.OffsetX
	f.OffsetY = fr.OffsetY
	f.PixelFormat = uint32(fr.PixelFormat)
	f.ImageSize = fr.ImageSize
	f.ReceiveFlags = fr.ReceiveFlags
}

func bindStartup(sym uintptr) func() int32 {
	var fn func() int32
	purego.RegisterFunc(&fn, sym)
	return fn
}
