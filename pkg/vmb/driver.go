package vmb

// Driver is the subset of the Vmb C API used by this package, one method per
// exported C function. *Library implements it against the real shared
// library; vmbtest.Driver implements it in memory.
//
// Pointers passed to a Driver follow the C rules: out parameters are written
// before the call returns, and a *RawFrame handed to FrameAnnounce stays
// registered until FrameRevoke.
type Driver interface {
	Startup() ErrorCode
	Shutdown()
	VersionQuery(info *VersionInfo, sizeofInfo uint32) ErrorCode

	CamerasList(list *RawCameraInfo, listLength uint32, numFound *uint32, sizeofInfo uint32) ErrorCode
	CameraOpen(id string, mode AccessMode, handle *Handle) ErrorCode
	CameraClose(handle Handle) ErrorCode

	FeatureIntGet(handle Handle, name string, value *int64) ErrorCode
	FeatureFloatGet(handle Handle, name string, value *float64) ErrorCode
	FeatureBoolGet(handle Handle, name string, value *uint8) ErrorCode
	FeatureEnumGet(handle Handle, name string, value *uintptr) ErrorCode
	FeatureStringGet(handle Handle, name string, buffer *byte, bufferSize uint32, sizeFilled *uint32) ErrorCode
	FeatureCommandRun(handle Handle, name string) ErrorCode

	FrameAnnounce(handle Handle, frame *RawFrame, sizeofFrame uint32) ErrorCode
	FrameRevoke(handle Handle, frame *RawFrame) ErrorCode
	CaptureStart(handle Handle) ErrorCode
	CaptureEnd(handle Handle) ErrorCode
	CaptureFrameQueue(handle Handle, frame *RawFrame) ErrorCode
	CaptureFrameWait(handle Handle, frame *RawFrame, timeoutMs uint32) ErrorCode
	CaptureQueueFlush(handle Handle) ErrorCode
}

// C entry point names, also used as APIError.Op.
const (
	OpStartup           = "VmbStartup"
	OpShutdown          = "VmbShutdown"
	OpVersionQuery      = "VmbVersionQuery"
	OpCamerasList       = "VmbCamerasList"
	OpCameraOpen        = "VmbCameraOpen"
	OpCameraClose       = "VmbCameraClose"
	OpFeatureIntGet     = "VmbFeatureIntGet"
	OpFeatureFloatGet   = "VmbFeatureFloatGet"
	OpFeatureBoolGet    = "VmbFeatureBoolGet"
	OpFeatureEnumGet    = "VmbFeatureEnumGet"
	OpFeatureStringGet  = "VmbFeatureStringGet"
	OpFeatureCommandRun = "VmbFeatureCommandRun"
	OpFrameAnnounce     = "VmbFrameAnnounce"
	OpFrameRevoke       = "VmbFrameRevoke"
	OpCaptureStart      = "VmbCaptureStart"
	OpCaptureEnd        = "VmbCaptureEnd"
	OpCaptureFrameQueue = "VmbCaptureFrameQueue"
	OpCaptureFrameWait  = "VmbCaptureFrameWait"
	OpCaptureQueueFlush = "VmbCaptureQueueFlush"
)
