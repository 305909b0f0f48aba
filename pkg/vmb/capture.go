package vmb

import (
	"fmt"
	"math"
	"runtime"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/pkg/errors"
)

// CaptureState is the position of a Capture in the synchronous acquisition
// sequence announce -> start -> queue -> trigger -> wait.
type CaptureState int

const (
	StateIdle CaptureState = iota
	StateBufferAnnounced
	StateCapturing
	StateFrameQueued
	StateCompleted
	StateTimedOut
	StateAborted
	StateClosed
)

var captureStateNames = [...]string{
	StateIdle:            "Idle",
	StateBufferAnnounced: "BufferAnnounced",
	StateCapturing:       "Capturing",
	StateFrameQueued:     "FrameQueued",
	StateCompleted:       "Completed",
	StateTimedOut:        "TimedOut",
	StateAborted:         "Aborted",
	StateClosed:          "Closed",
}

func (s CaptureState) String() string {
	if s >= 0 && int(s) < len(captureStateNames) {
		return captureStateNames[s]
	}
	return fmt.Sprintf("CaptureState(%d)", int(s))
}

// captureTokens tags each announced frame so a wait can verify the library
// handed back the frame it was given.
var captureTokens atomic.Uint64

// Capture owns one announced frame buffer of a camera. From NewCapture until
// Close the buffer is pinned, registered with the library and unreachable to
// the caller; Buffer returns it once Close has revoked it.
type Capture struct {
	cam   *Camera
	token uintptr

	// guarded by the camera's key lock
	state     CaptureState
	started   bool
	announced bool
	buf       []byte
	frame     *RawFrame
	pinner    runtime.Pinner
	last      Frame
	released  []byte
}

// NewCapture announces buf as the frame buffer of the camera. buf must hold
// at least PayloadSize bytes; a smaller buffer fails with
// *BufferTooSmallError before anything is announced. The capture takes
// ownership of buf: the caller must not touch it until Close returns.
func (c *Camera) NewCapture(buf []byte) (*Capture, error) {
	c.lock()
	defer c.unlock()

	if c.closed {
		return nil, ErrCameraClosed
	}
	if c.capture != nil {
		return nil, ErrCaptureActive
	}

	payload, err := c.featureIntLocked(FeaturePayloadSize)
	if err != nil {
		return nil, err
	}
	if int64(len(buf)) < payload || len(buf) == 0 {
		return nil, &BufferTooSmallError{Size: len(buf), Required: max(payload, 1)}
	}
	if uint64(len(buf)) > math.MaxUint32 {
		return nil, errors.Errorf("vmb: frame buffer of %d bytes exceeds the 32-bit size field", len(buf))
	}

	cp := &Capture{
		cam:   c,
		token: uintptr(captureTokens.Add(1)),
		buf:   buf,
		frame: new(RawFrame),
	}
	cp.frame.Buffer = unsafe.Pointer(&buf[0])
	cp.frame.BufferSize = uint32(len(buf))
	cp.frame.Context[0] = cp.token

	// The library keeps both addresses until the frame is revoked.
	cp.pinner.Pin(&buf[0])
	cp.pinner.Pin(cp.frame)

	err = c.call(func() error {
		return check(OpFrameAnnounce, c.sess.drv.FrameAnnounce(c.handle, cp.frame, rawFrameSize))
	})
	if err != nil {
		cp.pinner.Unpin()
		return nil, err
	}

	cp.announced = true
	cp.state = StateBufferAnnounced
	c.capture = cp
	c.sess.log.Debug("announced frame buffer", "camera", c.info.ID, "size", len(buf))
	return cp, nil
}

// State returns the current state.
func (cp *Capture) State() CaptureState {
	cp.cam.lock()
	defer cp.cam.unlock()
	return cp.state
}

// Last returns the most recent frame snapshot returned by Wait.
func (cp *Capture) Last() Frame {
	cp.cam.lock()
	defer cp.cam.unlock()
	return cp.last
}

// Start starts the capture engine. If the library refuses, the buffer is
// revoked and the capture closed before the error is returned, so no
// announcement outlives a failed start.
func (cp *Capture) Start() error {
	cp.cam.lock()
	defer cp.cam.unlock()

	if cp.state != StateBufferAnnounced {
		return cp.stateError("start")
	}

	err := cp.cam.call(func() error {
		return check(OpCaptureStart, cp.cam.sess.drv.CaptureStart(cp.cam.handle))
	})
	if err != nil {
		if cerr := cp.closeLocked(); cerr != nil {
			cp.cam.sess.log.Error("cleanup after failed capture start", "camera", cp.cam.info.ID, "error", cerr)
		}
		return err
	}

	cp.started = true
	cp.state = StateCapturing
	return nil
}

// Queue submits the buffer to the capture queue. It is allowed once per
// expected frame: after Start, or after a previous frame completed or aborted.
func (cp *Capture) Queue() error {
	cp.cam.lock()
	defer cp.cam.unlock()
	return cp.queueLocked()
}

func (cp *Capture) queueLocked() error {
	switch cp.state {
	case StateCapturing, StateCompleted, StateAborted:
	default:
		return cp.stateError("queue")
	}

	err := cp.cam.call(func() error {
		return check(OpCaptureFrameQueue, cp.cam.sess.drv.CaptureFrameQueue(cp.cam.handle, cp.frame))
	})
	if err != nil {
		return err
	}
	cp.state = StateFrameQueued
	return nil
}

// Trigger runs the command feature that starts acquisition, normally
// AcquisitionStart. The buffer must be queued.
func (cp *Capture) Trigger(command string) error {
	if err := validateFeatureName(command); err != nil {
		return err
	}
	cp.cam.lock()
	defer cp.cam.unlock()
	return cp.triggerLocked(command)
}

func (cp *Capture) triggerLocked(command string) error {
	if cp.state != StateFrameQueued && cp.state != StateTimedOut {
		return cp.stateError("trigger")
	}
	return cp.cam.runCommandLocked(command)
}

// Wait blocks until the queued frame is filled or timeout elapses.
//
// A timeout returns ErrTimedOut, never an *APIError; the frame stays queued
// and Wait may be called again. A frame delivered with a status other than
// complete is returned together with a *FrameStatusError. Any other failure
// is an *APIError.
func (cp *Capture) Wait(timeout time.Duration) (Frame, error) {
	cp.cam.lock()
	defer cp.cam.unlock()
	return cp.waitLocked(timeout)
}

func (cp *Capture) waitLocked(timeout time.Duration) (Frame, error) {
	if cp.state != StateFrameQueued && cp.state != StateTimedOut {
		return Frame{}, cp.stateError("wait")
	}

	ms := timeout.Milliseconds()
	switch {
	case ms < 0:
		ms = 0
	case ms > math.MaxUint32:
		ms = math.MaxUint32
	}

	var code ErrorCode
	err := cp.cam.call(func() error {
		code = cp.cam.sess.drv.CaptureFrameWait(cp.cam.handle, cp.frame, uint32(ms))
		return nil
	})
	if err != nil {
		return Frame{}, err
	}
	if code == ErrorTimeout {
		cp.state = StateTimedOut
		return Frame{}, ErrTimedOut
	}
	if err := check(OpCaptureFrameWait, code); err != nil {
		return Frame{}, err
	}
	if cp.frame.Context[0] != cp.token {
		return Frame{}, errors.Errorf("vmb: %s returned a frame with foreign context %#x", OpCaptureFrameWait, cp.frame.Context[0])
	}

	f := cp.frame.Snapshot()
	cp.last = f
	if !f.Complete() {
		cp.state = StateAborted
		return f, &FrameStatusError{FrameID: f.FrameID, Status: f.Status}
	}
	cp.state = StateCompleted
	return f, nil
}

// Grab runs queue, trigger and wait for one frame.
func (cp *Capture) Grab(trigger string, timeout time.Duration) (Frame, error) {
	if err := validateFeatureName(trigger); err != nil {
		return Frame{}, err
	}
	cp.cam.lock()
	defer cp.cam.unlock()

	if err := cp.queueLocked(); err != nil {
		return Frame{}, err
	}
	if err := cp.triggerLocked(trigger); err != nil {
		return Frame{}, err
	}
	return cp.waitLocked(timeout)
}

// Payload returns a copy of the image bytes of the last completed or aborted
// frame. It fails while a frame is queued, since the library may be writing
// into the buffer.
func (cp *Capture) Payload() ([]byte, error) {
	cp.cam.lock()
	defer cp.cam.unlock()

	src := cp.buf
	switch cp.state {
	case StateCompleted, StateAborted:
	case StateClosed:
		src = cp.released
		if cp.announced {
			src = cp.buf
		}
		if cp.last.BufferSize == 0 {
			return nil, cp.stateError("read payload")
		}
	default:
		return nil, cp.stateError("read payload")
	}

	n := min(int(cp.last.ImageSize), len(src))
	out := make([]byte, n)
	copy(out, src[:n])
	return out, nil
}

// Close stops capturing and revokes the buffer, in that order, from
// whatever state the capture is in. Every step runs even if an earlier one
// fails; the first failure is returned and the rest are logged. If the revoke
// fails the library still owns the buffer: it stays pinned, Buffer returns
// nil, and a later Close retries the revoke. Closing the camera releases it
// as well. Once the buffer is released, Close is a no-op.
func (cp *Capture) Close() error {
	cp.cam.lock()
	defer cp.cam.unlock()
	return cp.closeLocked()
}

func (cp *Capture) closeLocked() error {
	if cp.state == StateClosed && !cp.announced {
		return nil
	}

	var first error
	step := func(op string, code ErrorCode) {
		err := check(op, code)
		if err == nil {
			return
		}
		if first == nil {
			first = err
			return
		}
		cp.cam.sess.log.Warn("capture teardown step failed", "camera", cp.cam.info.ID, "op", op, "error", err)
	}

	err := cp.cam.sess.do(func() error {
		drv := cp.cam.sess.drv
		if cp.started {
			step(OpCaptureEnd, drv.CaptureEnd(cp.cam.handle))
			step(OpCaptureQueueFlush, drv.CaptureQueueFlush(cp.cam.handle))
			cp.started = false
		}
		if cp.announced {
			code := drv.FrameRevoke(cp.cam.handle, cp.frame)
			step(OpFrameRevoke, code)
			if code == ErrorSuccess {
				cp.announced = false
			}
		}
		return nil
	})
	if err != nil && first == nil {
		first = err
	}

	cp.state = StateClosed
	if cp.announced {
		cp.cam.sess.log.Warn("frame buffer still announced after teardown", "camera", cp.cam.info.ID)
		return first
	}
	cp.releaseLocked()
	return first
}

// releaseLocked hands the buffer back once the library no longer holds it.
func (cp *Capture) releaseLocked() {
	cp.announced = false
	cp.pinner.Unpin()
	cp.released = cp.buf
	cp.buf = nil
	cp.frame = nil
	if cp.cam.capture == cp {
		cp.cam.capture = nil
	}
}

// Buffer returns the caller's buffer once Close has revoked it, nil before.
func (cp *Capture) Buffer() []byte {
	cp.cam.lock()
	defer cp.cam.unlock()
	if cp.state != StateClosed || cp.announced {
		return nil
	}
	return cp.released
}

func (cp *Capture) stateError(op string) error {
	return errors.Wrapf(ErrInvalidState, "cannot %s in state %s", op, cp.state)
}
