//go:build !vmb_legacy && (amd64 || arm64)

package vmb

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCameraInfoLayout(t *testing.T) {
	var r RawCameraInfo
	assert.EqualValues(t, 80, unsafe.Sizeof(r))
	assert.EqualValues(t, 0, unsafe.Offsetof(r.CameraIDString))
	assert.EqualValues(t, 8, unsafe.Offsetof(r.CameraIDExtended))
	assert.EqualValues(t, 32, unsafe.Offsetof(r.SerialString))
	assert.EqualValues(t, 64, unsafe.Offsetof(r.StreamHandles))
	assert.EqualValues(t, 72, unsafe.Offsetof(r.StreamCount))
	assert.EqualValues(t, 76, unsafe.Offsetof(r.PermittedAccess))
}

func TestFrameLayout(t *testing.T) {
	var f RawFrame
	tests := []struct {
		name   string
		got    uintptr
		offset uintptr
	}{
		{"buffer", unsafe.Offsetof(f.Buffer), 0},
		{"bufferSize", unsafe.Offsetof(f.BufferSize), 8},
		{"context", unsafe.Offsetof(f.Context), 16},
		{"receiveStatus", unsafe.Offsetof(f.ReceiveStatus), 48},
		{"frameID", unsafe.Offsetof(f.FrameID), 56},
		{"timestamp", unsafe.Offsetof(f.Timestamp), 64},
		{"imageData", unsafe.Offsetof(f.ImageData), 72},
		{"receiveFlags", unsafe.Offsetof(f.ReceiveFlags), 80},
		{"pixelFormat", unsafe.Offsetof(f.PixelFormat), 84},
		{"width", unsafe.Offsetof(f.Width), 88},
		{"height", unsafe.Offsetof(f.Height), 92},
		{"offsetX", unsafe.Offsetof(f.OffsetX), 96},
		{"offsetY", unsafe.Offsetof(f.OffsetY), 100},
		{"payloadType", unsafe.Offsetof(f.PayloadType), 104},
		{"chunkDataPresent", unsafe.Offsetof(f.ChunkDataPresent), 108},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.offset, tt.got, tt.name)
	}
	assert.EqualValues(t, 112, unsafe.Sizeof(f))
}

// The library writes the output fields as raw bytes at the C offsets; the
// snapshot must read back exactly what was written.
func TestFrameByteRoundTrip(t *testing.T) {
	buf := make([]byte, 64)
	var f RawFrame
	f.Buffer = unsafe.Pointer(&buf[0])
	f.BufferSize = uint32(len(buf))

	raw := unsafe.Slice((*byte)(unsafe.Pointer(&f)), unsafe.Sizeof(f))
	ne := binary.NativeEndian
	ne.PutUint32(raw[48:], uint32(0xffffffff)) // receiveStatus -1
	ne.PutUint64(raw[56:], 42)
	ne.PutUint64(raw[64:], 1_700_000_000_000)
	ne.PutUint32(raw[80:], 0x5)
	ne.PutUint32(raw[84:], uint32(PixelFormatMono8))
	ne.PutUint32(raw[88:], 640)
	ne.PutUint32(raw[92:], 480)
	ne.PutUint32(raw[96:], 8)
	ne.PutUint32(raw[100:], 16)

	got := f.Snapshot()
	assert.Equal(t, Frame{
		Status:       FrameStatusIncomplete,
		FrameID:      42,
		Timestamp:    1_700_000_000_000,
		Width:        640,
		Height:       480,
		OffsetX:      8,
		OffsetY:      16,
		PixelFormat:  PixelFormatMono8,
		ImageSize:    64,
		BufferSize:   64,
		ReceiveFlags: 5,
	}, got)

	// and the other way round
	var g RawFrame
	g.Buffer = f.Buffer
	g.SetResult(got)
	graw := unsafe.Slice((*byte)(unsafe.Pointer(&g)), unsafe.Sizeof(g))
	assert.Equal(t, raw[48:72], graw[48:72])
	assert.Equal(t, raw[80:104], graw[80:104])
	assert.Equal(t, uint64(uintptr(f.Buffer)), ne.Uint64(graw[72:]), "imageData points at the buffer")
}

func TestCameraInfoByteRoundTrip(t *testing.T) {
	var keep [][]byte
	cstr := func(s string) uintptr {
		b := append([]byte(s), 0)
		keep = append(keep, b)
		return uintptr(unsafe.Pointer(&b[0]))
	}

	in := CameraInfo{
		ID:              "DEV_000F315B1234",
		ExtendedID:      "tl::DEV_000F315B1234",
		Name:            "Allied Vision 1800 U-500m",
		Model:           "1800 U-500m",
		Serial:          "0123456789",
		PermittedAccess: AccessModeFull | AccessModeRead,
		StreamCount:     1,
	}
	var r RawCameraInfo
	r.Populate(in, cstr)

	raw := unsafe.Slice((*byte)(unsafe.Pointer(&r)), unsafe.Sizeof(r))
	require.EqualValues(t, 1, binary.NativeEndian.Uint32(raw[72:]))
	require.EqualValues(t, 3, binary.NativeEndian.Uint32(raw[76:]))
	assert.Equal(t, "0123456789", goString(uintptr(binary.NativeEndian.Uint64(raw[32:]))))

	assert.Equal(t, in, r.Describe())
	assert.Len(t, keep, 5)
}

func TestWindowsDefaultLibraryPath(t *testing.T) {
	assert.Equal(t, `C:\Program Files\Allied Vision\Vimba X\bin\VmbC.dll`, defaultLibraryPaths["windows"])
}
