package vmb

import (
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"github.com/ebitengine/purego"
)

// Library is a loaded Vmb shared library with its entry points bound.
// It must stay open for as long as any Session created from it.
type Library struct {
	path   string
	handle uintptr
	closed atomic.Bool

	startup           func() int32
	shutdown          func()
	versionQuery      func(info *VersionInfo, sizeofInfo uint32) int32
	camerasList       func(list *RawCameraInfo, listLength uint32, numFound *uint32, sizeofInfo uint32) int32
	cameraOpen        func(id string, mode uint32, handle *uintptr) int32
	cameraClose       func(handle uintptr) int32
	featureIntGet     func(handle uintptr, name string, value *int64) int32
	featureFloatGet   func(handle uintptr, name string, value *float64) int32
	featureBoolGet    func(handle uintptr, name string, value *uint8) int32
	featureEnumGet    func(handle uintptr, name string, value *uintptr) int32
	featureStringGet  func(handle uintptr, name string, buffer *byte, bufferSize uint32, sizeFilled *uint32) int32
	featureCommandRun func(handle uintptr, name string) int32
	frameAnnounce     func(handle uintptr, frame *RawFrame, sizeofFrame uint32) int32
	frameRevoke       func(handle uintptr, frame *RawFrame) int32
	captureStart      func(handle uintptr) int32
	captureEnd        func(handle uintptr) int32
	captureFrameQueue func(handle uintptr, frame *RawFrame, callback uintptr) int32
	captureFrameWait  func(handle uintptr, frame *RawFrame, timeout uint32) int32
	captureQueueFlush func(handle uintptr) int32
}

var _ Driver = (*Library)(nil)

// Load opens the shared library at path and resolves every entry point the
// package uses. It fails with ErrLibraryNotFound or ErrSymbolMissing (wrapped
// in *LoadError) and never retries.
func Load(path string) (*Library, error) {
	handle, err := openLibrary(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: ErrLibraryNotFound, Cause: err}
	}

	l := &Library{path: path, handle: handle}
	if err := l.bind(); err != nil {
		if cerr := closeLibrary(handle); cerr != nil {
			logger().Warn("failed to unload library after bind error", "path", path, "error", cerr)
		}
		return nil, err
	}

	logger().Debug("loaded Vmb library", "path", path, "generation", Generation)
	return l, nil
}

func (l *Library) bind() error {
	symbols := []struct {
		name string
		fn   any
	}{
		{OpShutdown, &l.shutdown},
		{OpVersionQuery, &l.versionQuery},
		{OpCamerasList, &l.camerasList},
		{OpCameraOpen, &l.cameraOpen},
		{OpCameraClose, &l.cameraClose},
		{OpFeatureIntGet, &l.featureIntGet},
		{OpFeatureFloatGet, &l.featureFloatGet},
		{OpFeatureBoolGet, &l.featureBoolGet},
		{OpFeatureEnumGet, &l.featureEnumGet},
		{OpFeatureStringGet, &l.featureStringGet},
		{OpFeatureCommandRun, &l.featureCommandRun},
		{OpFrameAnnounce, &l.frameAnnounce},
		{OpFrameRevoke, &l.frameRevoke},
		{OpCaptureStart, &l.captureStart},
		{OpCaptureEnd, &l.captureEnd},
		{OpCaptureFrameQueue, &l.captureFrameQueue},
		{OpCaptureFrameWait, &l.captureFrameWait},
		{OpCaptureQueueFlush, &l.captureQueueFlush},
	}

	// Resolve everything before binding anything so a version mismatch is
	// reported against the first missing name.
	startup, err := l.resolve(OpStartup)
	if err != nil {
		return err
	}
	addrs := make([]uintptr, len(symbols))
	for i, s := range symbols {
		if addrs[i], err = l.resolve(s.name); err != nil {
			return err
		}
	}

	l.startup = bindStartup(startup)
	for i, s := range symbols {
		purego.RegisterFunc(s.fn, addrs[i])
	}
	return nil
}

func (l *Library) resolve(name string) (uintptr, error) {
	addr, err := lookupSymbol(l.handle, name)
	if err != nil || addr == 0 {
		return 0, &LoadError{Path: l.path, Symbol: name, Err: ErrSymbolMissing, Cause: err}
	}
	return addr, nil
}

// Path returns the path the library was loaded from.
func (l *Library) Path() string {
	return l.path
}

// Close unloads the library. Every Session using it must be closed first.
// A second call returns ErrLibraryClosed.
func (l *Library) Close() error {
	if l == nil {
		return nil
	}
	if !l.closed.CompareAndSwap(false, true) {
		return ErrLibraryClosed
	}
	return closeLibrary(l.handle)
}

func (l *Library) Startup() ErrorCode {
	if l.closed.Load() {
		return ErrorApiNotStarted
	}
	return ErrorCode(l.startup())
}

func (l *Library) Shutdown() {
	if l.closed.Load() {
		return
	}
	l.shutdown()
}

func (l *Library) VersionQuery(info *VersionInfo, sizeofInfo uint32) ErrorCode {
	if l.closed.Load() {
		return ErrorApiNotStarted
	}
	return ErrorCode(l.versionQuery(info, sizeofInfo))
}

func (l *Library) CamerasList(list *RawCameraInfo, listLength uint32, numFound *uint32, sizeofInfo uint32) ErrorCode {
	if l.closed.Load() {
		return ErrorApiNotStarted
	}
	return ErrorCode(l.camerasList(list, listLength, numFound, sizeofInfo))
}

func (l *Library) CameraOpen(id string, mode AccessMode, handle *Handle) ErrorCode {
	if l.closed.Load() {
		return ErrorApiNotStarted
	}
	return ErrorCode(l.cameraOpen(id, uint32(mode), (*uintptr)(handle)))
}

func (l *Library) CameraClose(handle Handle) ErrorCode {
	if l.closed.Load() {
		return ErrorApiNotStarted
	}
	return ErrorCode(l.cameraClose(uintptr(handle)))
}

func (l *Library) FeatureIntGet(handle Handle, name string, value *int64) ErrorCode {
	if l.closed.Load() {
		return ErrorApiNotStarted
	}
	return ErrorCode(l.featureIntGet(uintptr(handle), name, value))
}

func (l *Library) FeatureFloatGet(handle Handle, name string, value *float64) ErrorCode {
	if l.closed.Load() {
		return ErrorApiNotStarted
	}
	return ErrorCode(l.featureFloatGet(uintptr(handle), name, value))
}

func (l *Library) FeatureBoolGet(handle Handle, name string, value *uint8) ErrorCode {
	if l.closed.Load() {
		return ErrorApiNotStarted
	}
	return ErrorCode(l.featureBoolGet(uintptr(handle), name, value))
}

func (l *Library) FeatureEnumGet(handle Handle, name string, value *uintptr) ErrorCode {
	if l.closed.Load() {
		return ErrorApiNotStarted
	}
	return ErrorCode(l.featureEnumGet(uintptr(handle), name, value))
}

func (l *Library) FeatureStringGet(handle Handle, name string, buffer *byte, bufferSize uint32, sizeFilled *uint32) ErrorCode {
	if l.closed.Load() {
		return ErrorApiNotStarted
	}
	return ErrorCode(l.featureStringGet(uintptr(handle), name, buffer, bufferSize, sizeFilled))
}

func (l *Library) FeatureCommandRun(handle Handle, name string) ErrorCode {
	if l.closed.Load() {
		return ErrorApiNotStarted
	}
	return ErrorCode(l.featureCommandRun(uintptr(handle), name))
}

func (l *Library) FrameAnnounce(handle Handle, frame *RawFrame, sizeofFrame uint32) ErrorCode {
	if l.closed.Load() {
		return ErrorApiNotStarted
	}
	return ErrorCode(l.frameAnnounce(uintptr(handle), frame, sizeofFrame))
}

func (l *Library) FrameRevoke(handle Handle, frame *RawFrame) ErrorCode {
	if l.closed.Load() {
		return ErrorApiNotStarted
	}
	return ErrorCode(l.frameRevoke(uintptr(handle), frame))
}

func (l *Library) CaptureStart(handle Handle) ErrorCode {
	if l.closed.Load() {
		return ErrorApiNotStarted
	}
	return ErrorCode(l.captureStart(uintptr(handle)))
}

func (l *Library) CaptureEnd(handle Handle) ErrorCode {
	if l.closed.Load() {
		return ErrorApiNotStarted
	}
	return ErrorCode(l.captureEnd(uintptr(handle)))
}

// CaptureFrameQueue queues without a completion callback; frames are
// collected with CaptureFrameWait.
func (l *Library) CaptureFrameQueue(handle Handle, frame *RawFrame) ErrorCode {
	if l.closed.Load() {
		return ErrorApiNotStarted
	}
	return ErrorCode(l.captureFrameQueue(uintptr(handle), frame, 0))
}

func (l *Library) CaptureFrameWait(handle Handle, frame *RawFrame, timeoutMs uint32) ErrorCode {
	if l.closed.Load() {
		return ErrorApiNotStarted
	}
	return ErrorCode(l.captureFrameWait(uintptr(handle), frame, timeoutMs))
}

func (l *Library) CaptureQueueFlush(handle Handle) ErrorCode {
	if l.closed.Load() {
		return ErrorApiNotStarted
	}
	return ErrorCode(l.captureQueueFlush(uintptr(handle)))
}

// DefaultLibraryPath returns the install location of the SDK on this platform.
func DefaultLibraryPath() string {
	return defaultLibraryPaths[runtime.GOOS]
}

// LibraryFileName returns the file name of the shared library on this platform.
func LibraryFileName() string {
	if name, ok := libraryFileNames[runtime.GOOS]; ok {
		return name
	}
	return libraryFileNames["linux"]
}

// ResolveLibraryPath turns a configured value into a path for Load. An empty
// value selects DefaultLibraryPath; a directory is joined with LibraryFileName.
func ResolveLibraryPath(pathOrDir string) string {
	if pathOrDir == "" {
		return DefaultLibraryPath()
	}
	if fi, err := os.Stat(pathOrDir); err == nil && fi.IsDir() {
		return filepath.Join(pathOrDir, LibraryFileName())
	}
	return pathOrDir
}
