// Package vmbtest provides an in-memory vmb.Driver that behaves like the Vmb
// C API closely enough to exercise sessions, enumeration, feature access and
// synchronous capture without a camera or the vendor library.
package vmbtest

import (
	"slices"
	"sync"
	"time"
	"unsafe"

	"github.com/strawlab/vmbc-go/pkg/vmb"
)

// Feature values stored in Camera.Features are typed by their Go type:
// int64 (or int), float64, bool, string, Enum or Command.
type (
	Enum    string
	Command struct{}
)

// Camera is a simulated device.
type Camera struct {
	Info     vmb.CameraInfo
	Features map[string]any

	// Busy makes every open fail with ErrorInvalidAccess, as if another
	// process held the device.
	Busy bool
}

// NewCamera returns a camera with the features the vmbc tool reads: a
// 640x480 Mono8 sensor with a 1024 byte payload.
func NewCamera(id string) *Camera {
	return &Camera{
		Info: vmb.CameraInfo{
			ID:              id,
			ExtendedID:      "mock-tl::" + id,
			Name:            "Mock Camera",
			Model:           "Mock-640",
			Serial:          "SN-" + id,
			PermittedAccess: vmb.AccessModeFull | vmb.AccessModeRead,
			StreamCount:     1,
		},
		Features: map[string]any{
			vmb.FeaturePayloadSize:           int64(1024),
			vmb.FeatureWidth:                 int64(640),
			vmb.FeatureHeight:                int64(480),
			vmb.FeaturePixelFormat:           Enum("Mono8"),
			vmb.FeatureDeviceFirmwareVersion: "00.01.00.mock",
			vmb.FeatureAcquisitionStart:      Command{},
			vmb.FeatureAcquisitionStop:       Command{},
			"ExposureTime":                   float64(5000),
			"ReverseX":                       false,
		},
	}
}

type device struct {
	cam       *Camera
	announced []*vmb.RawFrame
	queued    []*vmb.RawFrame
	capturing bool
	acquiring bool
	frames    uint64
}

// Driver is a scriptable vmb.Driver. The zero value is not usable; call New.
type Driver struct {
	// Version is reported by VersionQuery.
	Version vmb.VersionInfo

	// RequireTrigger makes a wait time out unless the acquisition start
	// command ran since the capture was started. Defaults to true.
	RequireTrigger bool

	// NeverComplete makes every wait time out.
	NeverComplete bool

	// Status is the receive status written into delivered frames.
	Status vmb.FrameStatus

	// MaxWait caps how long a timing out wait actually sleeps.
	MaxWait time.Duration

	// AfterCount runs once after the next counting CamerasList call and may
	// add or remove cameras to simulate a hot plug between the two calls.
	AfterCount func(d *Driver)

	mu         sync.Mutex
	started    bool
	cameras    []*Camera
	open       map[vmb.Handle]*device
	nextHandle vmb.Handle
	fail       map[string]vmb.ErrorCode
	calls      []string
	strs       [][]byte
	enums      map[string][]byte
}

var _ vmb.Driver = (*Driver)(nil)

// New returns a driver exposing cameras.
func New(cameras ...*Camera) *Driver {
	return &Driver{
		Version:        vmb.VersionInfo{Major: 1, Minor: 0, Patch: 4},
		RequireTrigger: true,
		MaxWait:        50 * time.Millisecond,
		cameras:        cameras,
		open:           make(map[vmb.Handle]*device),
		nextHandle:     0x1000,
		fail:           make(map[string]vmb.ErrorCode),
		enums:          make(map[string][]byte),
	}
}

// Fail makes every later call of op return code until Clear is called.
func (d *Driver) Fail(op string, code vmb.ErrorCode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fail[op] = code
}

// Clear removes an injected failure.
func (d *Driver) Clear(op string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.fail, op)
}

// AddCamera plugs a camera in.
func (d *Driver) AddCamera(c *Camera) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cameras = append(d.cameras, c)
}

// RemoveCamera unplugs the camera with the given id.
func (d *Driver) RemoveCamera(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cameras = slices.DeleteFunc(d.cameras, func(c *Camera) bool { return c.Info.ID == id })
}

// Calls returns the recorded call sequence as C function names.
func (d *Driver) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.calls)
}

// Count returns how often op was called.
func (d *Driver) Count(op string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.calls {
		if c == op {
			n++
		}
	}
	return n
}

// Outstanding returns the number of frames announced and not yet revoked.
func (d *Driver) Outstanding() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, dev := range d.open {
		n += len(dev.announced)
	}
	return n
}

// OpenHandles returns the number of open camera handles.
func (d *Driver) OpenHandles() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.open)
}

// Started reports whether Startup ran without a matching Shutdown.
func (d *Driver) Started() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.started
}

// enter records op and returns the injected failure, if any. d.mu must be held.
func (d *Driver) enter(op string) (vmb.ErrorCode, bool) {
	d.calls = append(d.calls, op)
	code, ok := d.fail[op]
	return code, ok
}

// cstr keeps a NUL terminated copy of s alive for the lifetime of the driver.
func (d *Driver) cstr(s string) uintptr {
	b := append([]byte(s), 0)
	d.strs = append(d.strs, b)
	return uintptr(unsafe.Pointer(&b[0]))
}

func (d *Driver) device(h vmb.Handle) (*device, vmb.ErrorCode) {
	if !d.started {
		return nil, vmb.ErrorApiNotStarted
	}
	dev, ok := d.open[h]
	if !ok {
		return nil, vmb.ErrorBadHandle
	}
	return dev, vmb.ErrorSuccess
}

func (d *Driver) Startup() vmb.ErrorCode {
	d.mu.Lock()
	defer d.mu.Unlock()
	if code, ok := d.enter(vmb.OpStartup); ok {
		return code
	}
	d.started = true
	return vmb.ErrorSuccess
}

func (d *Driver) Shutdown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enter(vmb.OpShutdown)
	d.started = false
	clear(d.open)
}

func (d *Driver) VersionQuery(info *vmb.VersionInfo, sizeofInfo uint32) vmb.ErrorCode {
	d.mu.Lock()
	defer d.mu.Unlock()
	if code, ok := d.enter(vmb.OpVersionQuery); ok {
		return code
	}
	if info == nil {
		return vmb.ErrorBadParameter
	}
	if uintptr(sizeofInfo) != unsafe.Sizeof(*info) {
		return vmb.ErrorStructSize
	}
	*info = d.Version
	return vmb.ErrorSuccess
}

func (d *Driver) CamerasList(list *vmb.RawCameraInfo, listLength uint32, numFound *uint32, sizeofInfo uint32) vmb.ErrorCode {
	d.mu.Lock()
	if code, ok := d.enter(vmb.OpCamerasList); ok {
		d.mu.Unlock()
		return code
	}
	if !d.started {
		d.mu.Unlock()
		return vmb.ErrorApiNotStarted
	}
	if numFound == nil {
		d.mu.Unlock()
		return vmb.ErrorBadParameter
	}
	if uintptr(sizeofInfo) != unsafe.Sizeof(vmb.RawCameraInfo{}) {
		d.mu.Unlock()
		return vmb.ErrorStructSize
	}

	if list == nil {
		*numFound = uint32(len(d.cameras))
		hook := d.AfterCount
		d.AfterCount = nil
		d.mu.Unlock()
		if hook != nil {
			hook(d)
		}
		return vmb.ErrorSuccess
	}
	defer d.mu.Unlock()

	*numFound = uint32(len(d.cameras))
	entries := unsafe.Slice(list, listLength)
	n := min(int(listLength), len(d.cameras))
	for i := 0; i < n; i++ {
		entries[i].Populate(d.cameras[i].Info, d.cstr)
	}
	if len(d.cameras) > int(listLength) {
		return vmb.ErrorMoreData
	}
	return vmb.ErrorSuccess
}

func (d *Driver) CameraOpen(id string, mode vmb.AccessMode, handle *vmb.Handle) vmb.ErrorCode {
	d.mu.Lock()
	defer d.mu.Unlock()
	if code, ok := d.enter(vmb.OpCameraOpen); ok {
		return code
	}
	if !d.started {
		return vmb.ErrorApiNotStarted
	}
	if handle == nil {
		return vmb.ErrorBadParameter
	}
	idx := slices.IndexFunc(d.cameras, func(c *Camera) bool { return c.Info.ID == id })
	if idx < 0 {
		return vmb.ErrorNotFound
	}
	cam := d.cameras[idx]
	if cam.Busy || !cam.Info.PermittedAccess.Has(mode) {
		return vmb.ErrorInvalidAccess
	}
	for _, dev := range d.open {
		if dev.cam == cam {
			return vmb.ErrorInvalidAccess
		}
	}

	d.nextHandle++
	d.open[d.nextHandle] = &device{cam: cam}
	*handle = d.nextHandle
	return vmb.ErrorSuccess
}

func (d *Driver) CameraClose(handle vmb.Handle) vmb.ErrorCode {
	d.mu.Lock()
	defer d.mu.Unlock()
	if code, ok := d.enter(vmb.OpCameraClose); ok {
		return code
	}
	if _, code := d.device(handle); code != vmb.ErrorSuccess {
		return code
	}
	delete(d.open, handle)
	return vmb.ErrorSuccess
}

// feature looks name up on the device behind handle. d.mu must be held.
func (d *Driver) feature(op string, handle vmb.Handle, name string) (any, vmb.ErrorCode) {
	if code, ok := d.enter(op); ok {
		return nil, code
	}
	dev, code := d.device(handle)
	if code != vmb.ErrorSuccess {
		return nil, code
	}
	v, ok := dev.cam.Features[name]
	if !ok {
		return nil, vmb.ErrorNotFound
	}
	return v, vmb.ErrorSuccess
}

func (d *Driver) FeatureIntGet(handle vmb.Handle, name string, value *int64) vmb.ErrorCode {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, code := d.feature(vmb.OpFeatureIntGet, handle, name)
	if code != vmb.ErrorSuccess {
		return code
	}
	switch v := v.(type) {
	case int64:
		*value = v
	case int:
		*value = int64(v)
	default:
		return vmb.ErrorWrongType
	}
	return vmb.ErrorSuccess
}

func (d *Driver) FeatureFloatGet(handle vmb.Handle, name string, value *float64) vmb.ErrorCode {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, code := d.feature(vmb.OpFeatureFloatGet, handle, name)
	if code != vmb.ErrorSuccess {
		return code
	}
	f, ok := v.(float64)
	if !ok {
		return vmb.ErrorWrongType
	}
	*value = f
	return vmb.ErrorSuccess
}

func (d *Driver) FeatureBoolGet(handle vmb.Handle, name string, value *uint8) vmb.ErrorCode {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, code := d.feature(vmb.OpFeatureBoolGet, handle, name)
	if code != vmb.ErrorSuccess {
		return code
	}
	b, ok := v.(bool)
	if !ok {
		return vmb.ErrorWrongType
	}
	*value = 0
	if b {
		*value = 1
	}
	return vmb.ErrorSuccess
}

// FeatureEnumGet hands out a pointer into driver owned storage that is
// overwritten by the next read of the same feature, like the C API does.
func (d *Driver) FeatureEnumGet(handle vmb.Handle, name string, value *uintptr) vmb.ErrorCode {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, code := d.feature(vmb.OpFeatureEnumGet, handle, name)
	if code != vmb.ErrorSuccess {
		return code
	}
	e, ok := v.(Enum)
	if !ok {
		return vmb.ErrorWrongType
	}
	buf := d.enums[name]
	if cap(buf) < len(e)+1 {
		buf = make([]byte, len(e)+1, 64+len(e))
	}
	buf = buf[:len(e)+1]
	copy(buf, e)
	buf[len(e)] = 0
	d.enums[name] = buf
	*value = uintptr(unsafe.Pointer(&buf[0]))
	return vmb.ErrorSuccess
}

func (d *Driver) FeatureStringGet(handle vmb.Handle, name string, buffer *byte, bufferSize uint32, sizeFilled *uint32) vmb.ErrorCode {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, code := d.feature(vmb.OpFeatureStringGet, handle, name)
	if code != vmb.ErrorSuccess {
		return code
	}
	s, ok := v.(string)
	if !ok {
		return vmb.ErrorWrongType
	}
	need := uint32(len(s) + 1)
	if sizeFilled != nil {
		*sizeFilled = need
	}
	if buffer == nil {
		return vmb.ErrorSuccess
	}
	if bufferSize < need {
		return vmb.ErrorMoreData
	}
	dst := unsafe.Slice(buffer, bufferSize)
	copy(dst, s)
	dst[len(s)] = 0
	return vmb.ErrorSuccess
}

func (d *Driver) FeatureCommandRun(handle vmb.Handle, name string) vmb.ErrorCode {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, code := d.feature(vmb.OpFeatureCommandRun, handle, name)
	if code != vmb.ErrorSuccess {
		return code
	}
	if _, ok := v.(Command); !ok {
		return vmb.ErrorWrongType
	}
	dev := d.open[handle]
	switch name {
	case vmb.FeatureAcquisitionStart:
		dev.acquiring = true
	case vmb.FeatureAcquisitionStop:
		dev.acquiring = false
	}
	return vmb.ErrorSuccess
}

func (d *Driver) FrameAnnounce(handle vmb.Handle, frame *vmb.RawFrame, sizeofFrame uint32) vmb.ErrorCode {
	d.mu.Lock()
	defer d.mu.Unlock()
	if code, ok := d.enter(vmb.OpFrameAnnounce); ok {
		return code
	}
	dev, code := d.device(handle)
	if code != vmb.ErrorSuccess {
		return code
	}
	if frame == nil || frame.Buffer == nil || frame.BufferSize == 0 {
		return vmb.ErrorBadParameter
	}
	if uintptr(sizeofFrame) != unsafe.Sizeof(*frame) {
		return vmb.ErrorStructSize
	}
	if slices.Contains(dev.announced, frame) {
		return vmb.ErrorAlready
	}
	dev.announced = append(dev.announced, frame)
	return vmb.ErrorSuccess
}

func (d *Driver) FrameRevoke(handle vmb.Handle, frame *vmb.RawFrame) vmb.ErrorCode {
	d.mu.Lock()
	defer d.mu.Unlock()
	if code, ok := d.enter(vmb.OpFrameRevoke); ok {
		return code
	}
	dev, code := d.device(handle)
	if code != vmb.ErrorSuccess {
		return code
	}
	if slices.Contains(dev.queued, frame) {
		return vmb.ErrorInUse
	}
	idx := slices.Index(dev.announced, frame)
	if idx < 0 {
		return vmb.ErrorBadParameter
	}
	dev.announced = slices.Delete(dev.announced, idx, idx+1)
	return vmb.ErrorSuccess
}

func (d *Driver) CaptureStart(handle vmb.Handle) vmb.ErrorCode {
	d.mu.Lock()
	defer d.mu.Unlock()
	if code, ok := d.enter(vmb.OpCaptureStart); ok {
		return code
	}
	dev, code := d.device(handle)
	if code != vmb.ErrorSuccess {
		return code
	}
	if dev.capturing {
		return vmb.ErrorInvalidCall
	}
	dev.capturing = true
	return vmb.ErrorSuccess
}

func (d *Driver) CaptureEnd(handle vmb.Handle) vmb.ErrorCode {
	d.mu.Lock()
	defer d.mu.Unlock()
	if code, ok := d.enter(vmb.OpCaptureEnd); ok {
		return code
	}
	dev, code := d.device(handle)
	if code != vmb.ErrorSuccess {
		return code
	}
	dev.capturing = false
	dev.acquiring = false
	return vmb.ErrorSuccess
}

func (d *Driver) CaptureFrameQueue(handle vmb.Handle, frame *vmb.RawFrame) vmb.ErrorCode {
	d.mu.Lock()
	defer d.mu.Unlock()
	if code, ok := d.enter(vmb.OpCaptureFrameQueue); ok {
		return code
	}
	dev, code := d.device(handle)
	if code != vmb.ErrorSuccess {
		return code
	}
	if !dev.capturing {
		return vmb.ErrorInvalidCall
	}
	if !slices.Contains(dev.announced, frame) {
		return vmb.ErrorBadParameter
	}
	if slices.Contains(dev.queued, frame) {
		return vmb.ErrorAlready
	}
	dev.queued = append(dev.queued, frame)
	return vmb.ErrorSuccess
}

// CaptureFrameWait fills the frame with a deterministic pattern (byte i of
// the buffer is i mod 256) and the geometry of the camera's features.
func (d *Driver) CaptureFrameWait(handle vmb.Handle, frame *vmb.RawFrame, timeoutMs uint32) vmb.ErrorCode {
	d.mu.Lock()
	if code, ok := d.enter(vmb.OpCaptureFrameWait); ok {
		d.mu.Unlock()
		return code
	}
	dev, code := d.device(handle)
	if code != vmb.ErrorSuccess {
		d.mu.Unlock()
		return code
	}
	idx := slices.Index(dev.queued, frame)
	if idx < 0 {
		d.mu.Unlock()
		return vmb.ErrorBadParameter
	}

	if d.NeverComplete || (d.RequireTrigger && !dev.acquiring) {
		sleep := min(time.Duration(timeoutMs)*time.Millisecond, d.MaxWait)
		d.mu.Unlock()
		time.Sleep(sleep)
		return vmb.ErrorTimeout
	}
	defer d.mu.Unlock()

	dev.queued = slices.Delete(dev.queued, idx, idx+1)
	data := frame.Data()
	for i := range data {
		data[i] = byte(i)
	}
	dev.frames++

	result := vmb.Frame{
		Status:    d.Status,
		FrameID:   dev.frames,
		Timestamp: uint64(time.Now().UnixNano()),
		ImageSize: frame.BufferSize,
	}
	feats := dev.cam.Features
	if w, ok := feats[vmb.FeatureWidth].(int64); ok {
		result.Width = uint32(w)
	}
	if h, ok := feats[vmb.FeatureHeight].(int64); ok {
		result.Height = uint32(h)
	}
	if pf, ok := feats[vmb.FeaturePixelFormat].(Enum); ok {
		result.PixelFormat, _ = vmb.ParsePixelFormat(string(pf))
	}
	if p, ok := feats[vmb.FeaturePayloadSize].(int64); ok && p > 0 && p < int64(frame.BufferSize) {
		result.ImageSize = uint32(p)
	}
	frame.SetResult(result)
	return vmb.ErrorSuccess
}

func (d *Driver) CaptureQueueFlush(handle vmb.Handle) vmb.ErrorCode {
	d.mu.Lock()
	defer d.mu.Unlock()
	if code, ok := d.enter(vmb.OpCaptureQueueFlush); ok {
		return code
	}
	dev, code := d.device(handle)
	if code != vmb.ErrorSuccess {
		return code
	}
	dev.queued = nil
	return vmb.ErrorSuccess
}
