package vmb

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// Camera is an open camera handle. It is only usable while its Session is
// active and must be closed before the Session (Session.Close does this for
// cameras that are still open).
type Camera struct {
	sess   *Session
	info   CameraInfo
	mode   AccessMode
	handle Handle

	// guarded by the camera's key in sess.camLock
	closed  bool
	capture *Capture
}

// OpenCamera opens the camera described by info with the requested access
// mode. A camera can be opened once per session; a second open returns
// ErrCameraAlreadyOpen without calling into the library. A device held by
// another process yields an *APIError matching ErrAccessDenied.
func (s *Session) OpenCamera(info CameraInfo, mode AccessMode) (*Camera, error) {
	if info.ID == "" || strings.IndexByte(info.ID, 0) >= 0 {
		return nil, errors.Wrapf(ErrCameraNotFound, "invalid camera id %q", info.ID)
	}

	s.camLock.LockKey(info.ID)
	defer s.camLock.UnlockKey(info.ID)

	var cam *Camera
	err := s.do(func() error {
		if s.closing {
			return ErrSessionClosed
		}
		if _, ok := s.handles.Get(info.ID); ok {
			return ErrCameraAlreadyOpen
		}

		var h Handle
		if err := check(OpCameraOpen, s.drv.CameraOpen(info.ID, mode, &h)); err != nil {
			return err
		}

		cam = &Camera{sess: s, info: info, mode: mode, handle: h}
		s.handles.Insert(info.ID, h)
		s.cameras = append(s.cameras, cam)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("opened camera", "camera", info.ID, "mode", mode.String())
	return cam, nil
}

// OpenCameraByID looks the id up with Camera and opens it.
func (s *Session) OpenCameraByID(id string, mode AccessMode) (*Camera, error) {
	info, err := s.Camera(id)
	if err != nil {
		return nil, errors.Wrapf(err, "camera %q", id)
	}
	return s.OpenCamera(info, mode)
}

// Info returns the descriptor the camera was opened with.
func (c *Camera) Info() CameraInfo {
	return c.info
}

// AccessMode returns the mode the camera was opened with.
func (c *Camera) AccessMode() AccessMode {
	return c.mode
}

// Handle returns the raw camera handle.
func (c *Camera) Handle() Handle {
	return c.handle
}

// Close tears down an outstanding capture, then closes the device. Closing
// an already closed camera is a no-op.
func (c *Camera) Close() error {
	c.lock()
	defer c.unlock()
	return c.closeLocked()
}

func (c *Camera) closeLocked() error {
	if c.closed {
		return nil
	}

	var first error
	if c.capture != nil {
		if err := c.capture.closeLocked(); err != nil {
			first = err
		}
	}

	err := c.sess.do(func() error {
		return check(OpCameraClose, c.sess.drv.CameraClose(c.handle))
	})
	if err != nil {
		if first == nil {
			first = err
		} else {
			c.sess.log.Warn("camera close failed after capture teardown error", "camera", c.info.ID, "error", err)
		}
	} else if c.capture != nil {
		// VmbCameraClose drops every frame still announced on the handle.
		c.capture.releaseLocked()
	}

	// The handle is unusable after VmbCameraClose whatever it returned.
	c.closed = true
	c.sess.mu.Lock()
	c.sess.handles.Delete(c.info.ID)
	c.sess.cameras = slices.DeleteFunc(c.sess.cameras, func(o *Camera) bool { return o == c })
	c.sess.mu.Unlock()

	c.sess.log.Debug("closed camera", "camera", c.info.ID)
	return first
}

func (c *Camera) lock() {
	c.sess.camLock.LockKey(c.info.ID)
}

func (c *Camera) unlock() {
	if err := c.sess.camLock.UnlockKey(c.info.ID); err != nil {
		c.sess.log.Error("camera unlock failed", "camera", c.info.ID, "error", err)
	}
}

// call runs a driver call for an open camera.
func (c *Camera) call(fn func() error) error {
	if c.closed {
		return ErrCameraClosed
	}
	return c.sess.do(fn)
}
