package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/strawlab/vmbc-go/config"
	"github.com/strawlab/vmbc-go/internal/snapshot"
	"github.com/strawlab/vmbc-go/pkg/vmb"
)

type GrabOptions struct {
	Camera     string
	Timeout    time.Duration
	Trigger    string
	Output     string
	Save       bool
	BufferSize int64
	JSON       bool
}

func NewGrabCommand() *cobra.Command {
	opts := &GrabOptions{}

	cmd := &cobra.Command{
		Use:   "grab",
		Short: "Capture a single frame",
		Long: `Start the API, open the first camera (or --camera), print its firmware version,
pixel format and payload size, then capture one frame synchronously.

A frame delivered incomplete is reported with its status and is not saved; it
does not fail the command. The exit code tells the failure class: 2 library not
loadable, 3 API error, 4 timed out, 5 buffer too small, 6 camera list changed
while enumerating.`,
		Example: `  vmbc grab
  vmbc grab --camera DEV_000F315B1234 --timeout 500ms
  vmbc grab --save
  vmbc grab --output frames/first.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("timeout") {
				opts.Timeout = config.GetCaptureTimeout()
			}
			if !cmd.Flags().Changed("trigger") {
				opts.Trigger = config.GetTriggerCommand()
			}
			return ExecuteGrab(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Camera, "camera", "c", "", "Camera ID, extended ID or serial number (default: first camera)")
	flags.DurationVarP(&opts.Timeout, "timeout", "t", 2*time.Second, "How long to wait for the frame")
	flags.StringVar(&opts.Trigger, "trigger", vmb.FeatureAcquisitionStart, "Command feature that starts acquisition")
	flags.StringVarP(&opts.Output, "output", "o", "", "Write the frame to this image file (format from extension)")
	flags.BoolVar(&opts.Save, "save", false, "Write the frame to the output directory under a generated name")
	flags.Int64Var(&opts.BufferSize, "buffer-size", 0, "Frame buffer size in bytes (default: PayloadSize)")
	flags.BoolVar(&opts.JSON, "json", false, "Print the frame descriptor as JSON")

	return cmd
}

type grabResult struct {
	Camera          vmb.CameraInfo `json:"camera"`
	FirmwareVersion string         `json:"firmwareVersion"`
	PixelFormat     string         `json:"pixelFormat"`
	PayloadSize     int64          `json:"payloadSize"`
	Frame           vmb.Frame      `json:"frame"`
	Image           string         `json:"image,omitempty"`
	Sidecar         string         `json:"sidecar,omitempty"`
}

func ExecuteGrab(cmd *cobra.Command, opts *GrabOptions) error {
	out := cmd.OutOrStdout()
	return withSession(func(sess *vmb.Session) error {
		res, err := grab(sess, opts, out)
		if err != nil {
			return err
		}
		if opts.JSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		return nil
	})
}

func grab(sess *vmb.Session, opts *GrabOptions, out io.Writer) (res *grabResult, err error) {
	text := out
	if opts.JSON {
		text = io.Discard
	}

	info, err := pickCamera(sess, opts.Camera)
	if err != nil {
		return nil, err
	}
	res = &grabResult{Camera: info}
	fmt.Fprintf(text, "Camera:      %s (%s %s)\n", color.New(color.FgCyan).Sprint(info.ID), info.Name, info.Model)

	cam, err := sess.OpenCamera(info, vmb.AccessModeFull)
	if err != nil {
		return nil, err
	}
	defer func() {
		firstError(&err, cam.Close(), "close camera")
	}()

	if res.FirmwareVersion, err = cam.FeatureString(vmb.FeatureDeviceFirmwareVersion); err != nil {
		return nil, err
	}
	if res.PixelFormat, err = cam.FeatureEnum(vmb.FeaturePixelFormat); err != nil {
		return nil, err
	}
	if res.PayloadSize, err = cam.PayloadSize(); err != nil {
		return nil, err
	}
	fmt.Fprintf(text, "Firmware:    %s\n", res.FirmwareVersion)
	fmt.Fprintf(text, "PixelFormat: %s\n", res.PixelFormat)
	fmt.Fprintf(text, "PayloadSize: %d\n", res.PayloadSize)

	size := res.PayloadSize
	if opts.BufferSize > 0 {
		size = opts.BufferSize
	}
	capture, err := cam.NewCapture(make([]byte, size))
	if err != nil {
		return nil, err
	}
	defer func() {
		firstError(&err, capture.Close(), "end capture")
	}()

	if err := capture.Start(); err != nil {
		return nil, err
	}
	frame, err := capture.Grab(opts.Trigger, opts.Timeout)
	if errors.Is(err, vmb.ErrFrameAborted) {
		// An incomplete frame is reported, not fatal, and never saved.
		res.Frame = frame
		fmt.Fprintf(text, "Frame:       #%d %s\n", frame.FrameID,
			color.New(color.FgRed).Sprintf("not complete, status %s (%d)", frame.Status, int32(frame.Status)))
		return res, nil
	}
	if err != nil {
		return nil, err
	}
	res.Frame = frame
	fmt.Fprintf(text, "Frame:       #%d %dx%d %s, %s\n", frame.FrameID, frame.Width, frame.Height, frame.PixelFormat, color.New(color.FgGreen).Sprint(frame.Status))

	path := opts.Output
	if path == "" && opts.Save {
		path = filepath.Join(config.GetOutputDir(), snapshot.DefaultName())
	}
	if path == "" {
		return res, nil
	}

	data, err := capture.Payload()
	if err != nil {
		return nil, err
	}
	saved, err := snapshot.Save(path, info.ID, frame, data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to save frame")
	}
	res.Image, res.Sidecar = saved.Image, saved.Sidecar
	fmt.Fprintf(text, "Saved:       %s (%s)\n", saved.Image, saved.Sidecar)
	return res, nil
}

// pickCamera returns the camera matching id, or the first camera when id is empty.
func pickCamera(sess *vmb.Session, id string) (vmb.CameraInfo, error) {
	if id != "" {
		info, err := sess.Camera(id)
		if err != nil {
			return vmb.CameraInfo{}, errors.Wrapf(err, "camera %q", id)
		}
		return info, nil
	}

	cameras, err := sess.Cameras()
	if err != nil {
		return vmb.CameraInfo{}, err
	}
	if len(cameras) == 0 {
		return vmb.CameraInfo{}, errors.Wrap(vmb.ErrCameraNotFound, "no cameras found")
	}
	return cameras[0], nil
}
