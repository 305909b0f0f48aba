//go:build vmb_legacy && (amd64 || arm64)

package vmb

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestCameraInfoLayout(t *testing.T) {
	var r RawCameraInfo
	assert.EqualValues(t, 48, unsafe.Sizeof(r))
	assert.EqualValues(t, 24, unsafe.Offsetof(r.SerialString))
	assert.EqualValues(t, 32, unsafe.Offsetof(r.PermittedAccess))
	assert.EqualValues(t, 40, unsafe.Offsetof(r.InterfaceIDString))
}

func TestFrameLayout(t *testing.T) {
	var f RawFrame
	assert.EqualValues(t, 104, unsafe.Sizeof(f))
	assert.EqualValues(t, 48, unsafe.Offsetof(f.ReceiveStatus))
	assert.EqualValues(t, 52, unsafe.Offsetof(f.ReceiveFlags))
	assert.EqualValues(t, 56, unsafe.Offsetof(f.ImageSize))
	assert.EqualValues(t, 64, unsafe.Offsetof(f.PixelFormat))
	assert.EqualValues(t, 68, unsafe.Offsetof(f.Width))
	assert.EqualValues(t, 80, unsafe.Offsetof(f.OffsetY))
	assert.EqualValues(t, 88, unsafe.Offsetof(f.FrameID))
	assert.EqualValues(t, 96, unsafe.Offsetof(f.Timestamp))
}

func TestFrameByteRoundTrip(t *testing.T) {
	var f RawFrame
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&f)), unsafe.Sizeof(f))
	ne := binary.NativeEndian
	ne.PutUint32(raw[8:], 2048)
	ne.PutUint32(raw[56:], 1024)
	ne.PutUint32(raw[64:], uint32(PixelFormatMono8))
	ne.PutUint32(raw[68:], 32)
	ne.PutUint32(raw[72:], 32)
	ne.PutUint64(raw[88:], 7)

	got := f.Snapshot()
	assert.Equal(t, FrameStatusComplete, got.Status)
	assert.EqualValues(t, 2048, got.BufferSize)
	assert.EqualValues(t, 1024, got.ImageSize)
	assert.EqualValues(t, 32, got.Width)
	assert.EqualValues(t, 7, got.FrameID)
	assert.Equal(t, PixelFormatMono8, got.PixelFormat)

	var g RawFrame
	g.BufferSize = 2048
	g.SetResult(got)
	graw := unsafe.Slice((*byte)(unsafe.Pointer(&g)), unsafe.Sizeof(g))
	assert.Equal(t, raw, graw)
}
