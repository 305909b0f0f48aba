package snapshot

import (
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strawlab/vmbc-go/pkg/vmb"
)

func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func TestSaveMono8(t *testing.T) {
	dir := t.TempDir()
	frame := vmb.Frame{
		Status:      vmb.FrameStatusComplete,
		FrameID:     3,
		Width:       32,
		Height:      32,
		PixelFormat: vmb.PixelFormatMono8,
		ImageSize:   1024,
		BufferSize:  1024,
	}

	res, err := Save(filepath.Join(dir, "out", "frame.png"), "DEV_1", frame, pattern(1024))
	require.NoError(t, err)
	assert.False(t, res.Raw)
	assert.Equal(t, filepath.Join(dir, "out", "frame.toml"), res.Sidecar)

	img, err := imaging.Open(res.Image)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 32), img.Bounds())
	r, _, _, _ := img.At(5, 1).RGBA()
	assert.EqualValues(t, 37, r>>8)

	data, err := os.ReadFile(res.Sidecar)
	require.NoError(t, err)
	var meta Metadata
	require.NoError(t, toml.Unmarshal(data, &meta))
	assert.Equal(t, "DEV_1", meta.Camera)
	assert.Equal(t, "frame.png", meta.Image)
	assert.EqualValues(t, 3, meta.FrameID)
	assert.Equal(t, "Mono8", meta.PixelFormat)
	assert.Equal(t, "complete", meta.Status)
	assert.False(t, meta.CapturedAt.IsZero())
}

func TestSaveUnsupportedFormatWritesRaw(t *testing.T) {
	dir := t.TempDir()
	frame := vmb.Frame{Width: 4, Height: 4, PixelFormat: vmb.PixelFormat(0x02100032), ImageSize: 16}

	res, err := Save(filepath.Join(dir, "frame.png"), "DEV_1", frame, pattern(64))
	require.NoError(t, err)
	assert.True(t, res.Raw)
	assert.Equal(t, filepath.Join(dir, "frame.raw"), res.Image)

	raw, err := os.ReadFile(res.Image)
	require.NoError(t, err)
	assert.Equal(t, pattern(16), raw)

	sidecar, err := os.ReadFile(res.Sidecar)
	require.NoError(t, err)
	assert.Contains(t, string(sidecar), "raw = true")
}

func TestToImage(t *testing.T) {
	t.Run("bgr8 is swapped", func(t *testing.T) {
		img, err := ToImage(vmb.Frame{Width: 2, Height: 1, PixelFormat: vmb.PixelFormatBGR8}, []byte{1, 2, 3, 4, 5, 6})
		require.NoError(t, err)
		nrgba := img.(*image.NRGBA)
		assert.Equal(t, []uint8{3, 2, 1, 255, 6, 5, 4, 255}, nrgba.Pix)
	})

	t.Run("mono16 little endian", func(t *testing.T) {
		img, err := ToImage(vmb.Frame{Width: 1, Height: 1, PixelFormat: vmb.PixelFormatMono16}, []byte{0x34, 0x12})
		require.NoError(t, err)
		assert.Equal(t, []uint8{0x12, 0x34}, img.(*image.Gray16).Pix)
	})

	t.Run("mono12 is scaled", func(t *testing.T) {
		img, err := ToImage(vmb.Frame{Width: 1, Height: 1, PixelFormat: vmb.PixelFormatMono12}, []byte{0xff, 0x0f})
		require.NoError(t, err)
		assert.Equal(t, []uint8{0xff, 0xf0}, img.(*image.Gray16).Pix)
	})

	t.Run("short payload", func(t *testing.T) {
		_, err := ToImage(vmb.Frame{Width: 640, Height: 480, PixelFormat: vmb.PixelFormatMono8}, pattern(1024))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too short")
	})

	t.Run("no geometry", func(t *testing.T) {
		_, err := ToImage(vmb.Frame{PixelFormat: vmb.PixelFormatMono8}, pattern(16))
		assert.Error(t, err)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := ToImage(vmb.Frame{Width: 1, Height: 1, PixelFormat: 0x1234}, pattern(16))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestDefaultName(t *testing.T) {
	a, b := DefaultName(), DefaultName()
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "frame-"))
	assert.Equal(t, ".png", filepath.Ext(a))
	assert.Len(t, a, len("frame-")+8+len(".png"))
}
