// Package snapshot writes a captured frame to disk as an image plus a TOML
// sidecar describing it.
package snapshot

import (
	"encoding/binary"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dchest/uniuri"
	"github.com/disintegration/imaging"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/strawlab/vmbc-go/pkg/vmb"
)

// Metadata is the content of the sidecar file.
type Metadata struct {
	Camera      string    `toml:"camera"`
	Image       string    `toml:"image"`
	FrameID     uint64    `toml:"frame_id"`
	Timestamp   uint64    `toml:"timestamp"`
	Width       uint32    `toml:"width"`
	Height      uint32    `toml:"height"`
	OffsetX     uint32    `toml:"offset_x"`
	OffsetY     uint32    `toml:"offset_y"`
	PixelFormat string    `toml:"pixel_format"`
	Status      string    `toml:"status"`
	ImageSize   uint32    `toml:"image_size"`
	Raw         bool      `toml:"raw,omitempty"`
	CapturedAt  time.Time `toml:"captured_at"`
}

// Result names the files Save wrote.
type Result struct {
	Image   string
	Sidecar string
	Raw     bool
}

// DefaultName returns a fresh file name such as frame-x3Kd9QaZ.png.
func DefaultName() string {
	return "frame-" + uniuri.NewLen(8) + ".png"
}

// Save writes data, the payload of frame, to path. The image format follows
// the extension of path. Pixel formats that have no image.Image equivalent
// are written unchanged with a .raw extension instead. The sidecar is the
// image path with a .toml extension.
func Save(path, camera string, frame vmb.Frame, data []byte) (*Result, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create output directory")
	}

	res := &Result{Image: path}
	img, err := ToImage(frame, data)
	switch {
	case err == nil:
		if err := imaging.Save(img, path); err != nil {
			return nil, errors.Wrapf(err, "failed to write %s", path)
		}
	case errors.Is(err, ErrUnsupportedFormat):
		res.Raw = true
		res.Image = replaceExt(path, ".raw")
		n := min(int(frame.ImageSize), len(data))
		if err := os.WriteFile(res.Image, data[:n], 0o644); err != nil {
			return nil, errors.Wrapf(err, "failed to write %s", res.Image)
		}
	default:
		return nil, err
	}

	meta := Metadata{
		Camera:      camera,
		Image:       filepath.Base(res.Image),
		FrameID:     frame.FrameID,
		Timestamp:   frame.Timestamp,
		Width:       frame.Width,
		Height:      frame.Height,
		OffsetX:     frame.OffsetX,
		OffsetY:     frame.OffsetY,
		PixelFormat: frame.PixelFormat.String(),
		Status:      frame.Status.String(),
		ImageSize:   frame.ImageSize,
		Raw:         res.Raw,
		CapturedAt:  time.Now().UTC().Truncate(time.Second),
	}
	out, err := toml.Marshal(meta)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize frame metadata")
	}
	res.Sidecar = replaceExt(path, ".toml")
	if err := os.WriteFile(res.Sidecar, out, 0o644); err != nil {
		return nil, errors.Wrapf(err, "failed to write %s", res.Sidecar)
	}
	return res, nil
}

// ErrUnsupportedFormat is returned by ToImage for pixel formats it cannot map.
var ErrUnsupportedFormat = errors.New("unsupported pixel format")

// ToImage wraps or converts a frame payload into an image. Mono8 and the
// Bayer formats become gray images (Bayer data is left as the raw mosaic),
// Mono10 to Mono16 become 16-bit gray, and the 8-bit color formats become
// NRGBA.
func ToImage(frame vmb.Frame, data []byte) (image.Image, error) {
	w, h := int(frame.Width), int(frame.Height)
	if w <= 0 || h <= 0 {
		return nil, errors.Errorf("frame %d has no geometry (%dx%d)", frame.FrameID, w, h)
	}
	rect := image.Rect(0, 0, w, h)
	pixels := w * h

	need := func(bytesPerPixel int) error {
		if len(data) < pixels*bytesPerPixel {
			return errors.Errorf("payload of %d bytes too short for %dx%d %s", len(data), w, h, frame.PixelFormat)
		}
		return nil
	}

	switch frame.PixelFormat {
	case vmb.PixelFormatMono8,
		vmb.PixelFormatBayerGR8, vmb.PixelFormatBayerRG8,
		vmb.PixelFormatBayerGB8, vmb.PixelFormatBayerBG8:
		if err := need(1); err != nil {
			return nil, err
		}
		img := image.NewGray(rect)
		copy(img.Pix, data[:pixels])
		return img, nil

	case vmb.PixelFormatMono10, vmb.PixelFormatMono12, vmb.PixelFormatMono14, vmb.PixelFormatMono16:
		if err := need(2); err != nil {
			return nil, err
		}
		shift := map[vmb.PixelFormat]uint{
			vmb.PixelFormatMono10: 6,
			vmb.PixelFormatMono12: 4,
			vmb.PixelFormatMono14: 2,
		}[frame.PixelFormat]
		img := image.NewGray16(rect)
		for i := 0; i < pixels; i++ {
			// little endian on the wire, big endian in image.Gray16
			v := binary.LittleEndian.Uint16(data[2*i:]) << shift
			binary.BigEndian.PutUint16(img.Pix[2*i:], v)
		}
		return img, nil

	case vmb.PixelFormatRGB8, vmb.PixelFormatBGR8:
		if err := need(3); err != nil {
			return nil, err
		}
		r, b := 0, 2
		if frame.PixelFormat == vmb.PixelFormatBGR8 {
			r, b = 2, 0
		}
		img := image.NewNRGBA(rect)
		for i := 0; i < pixels; i++ {
			src, dst := data[3*i:3*i+3], img.Pix[4*i:4*i+4]
			dst[0], dst[1], dst[2], dst[3] = src[r], src[1], src[b], 0xff
		}
		return img, nil

	case vmb.PixelFormatRGBA8, vmb.PixelFormatBGRA8:
		if err := need(4); err != nil {
			return nil, err
		}
		img := image.NewNRGBA(rect)
		copy(img.Pix, data[:4*pixels])
		if frame.PixelFormat == vmb.PixelFormatBGRA8 {
			for i := 0; i < pixels; i++ {
				img.Pix[4*i], img.Pix[4*i+2] = img.Pix[4*i+2], img.Pix[4*i]
			}
		}
		return img, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedFormat, "%s", frame.PixelFormat)
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
