package vmb

import (
	"encoding/json"
	"fmt"
)

// ErrorCode is the VmbError_t result of every Vmb API call.
type ErrorCode int32

const (
	ErrorSuccess                 ErrorCode = 0
	ErrorInternalFault           ErrorCode = -1
	ErrorApiNotStarted           ErrorCode = -2
	ErrorNotFound                ErrorCode = -3
	ErrorBadHandle               ErrorCode = -4
	ErrorDeviceNotOpen           ErrorCode = -5
	ErrorInvalidAccess           ErrorCode = -6
	ErrorBadParameter            ErrorCode = -7
	ErrorStructSize              ErrorCode = -8
	ErrorMoreData                ErrorCode = -9
	ErrorWrongType               ErrorCode = -10
	ErrorInvalidValue            ErrorCode = -11
	ErrorTimeout                 ErrorCode = -12
	ErrorOther                   ErrorCode = -13
	ErrorResources               ErrorCode = -14
	ErrorInvalidCall             ErrorCode = -15
	ErrorNoTL                    ErrorCode = -16
	ErrorNotImplemented          ErrorCode = -17
	ErrorNotSupported            ErrorCode = -18
	ErrorIncomplete              ErrorCode = -19
	ErrorIO                      ErrorCode = -20
	ErrorValidValueSetNotPresent ErrorCode = -21
	ErrorGenTLUnspecified        ErrorCode = -22
	ErrorUnspecified             ErrorCode = -23
	ErrorBusy                    ErrorCode = -24
	ErrorNoData                  ErrorCode = -25
	ErrorParsingChunkData        ErrorCode = -26
	ErrorInUse                   ErrorCode = -27
	ErrorUnknown                 ErrorCode = -28
	ErrorXml                     ErrorCode = -29
	ErrorNotAvailable            ErrorCode = -30
	ErrorNotInitialized          ErrorCode = -31
	ErrorInvalidAddress          ErrorCode = -32
	ErrorAlready                 ErrorCode = -33
	ErrorNoChunkData             ErrorCode = -34
	ErrorUserCallbackException   ErrorCode = -35
	ErrorFeaturesUnavailable     ErrorCode = -36
	ErrorTLNotFound              ErrorCode = -37
	ErrorAmbiguous               ErrorCode = -39
	ErrorRetriesExceeded         ErrorCode = -40
	ErrorInsufficientBufferCount ErrorCode = -41
	ErrorCustom                  ErrorCode = 1
)

var errorCodeNames = map[ErrorCode]string{
	ErrorSuccess:                 "VmbErrorSuccess",
	ErrorInternalFault:           "VmbErrorInternalFault",
	ErrorApiNotStarted:           "VmbErrorApiNotStarted",
	ErrorNotFound:                "VmbErrorNotFound",
	ErrorBadHandle:               "VmbErrorBadHandle",
	ErrorDeviceNotOpen:           "VmbErrorDeviceNotOpen",
	ErrorInvalidAccess:           "VmbErrorInvalidAccess",
	ErrorBadParameter:            "VmbErrorBadParameter",
	ErrorStructSize:              "VmbErrorStructSize",
	ErrorMoreData:                "VmbErrorMoreData",
	ErrorWrongType:               "VmbErrorWrongType",
	ErrorInvalidValue:            "VmbErrorInvalidValue",
	ErrorTimeout:                 "VmbErrorTimeout",
	ErrorOther:                   "VmbErrorOther",
	ErrorResources:               "VmbErrorResources",
	ErrorInvalidCall:             "VmbErrorInvalidCall",
	ErrorNoTL:                    "VmbErrorNoTL",
	ErrorNotImplemented:          "VmbErrorNotImplemented",
	ErrorNotSupported:            "VmbErrorNotSupported",
	ErrorIncomplete:              "VmbErrorIncomplete",
	ErrorIO:                      "VmbErrorIO",
	ErrorValidValueSetNotPresent: "VmbErrorValidValueSetNotPresent",
	ErrorGenTLUnspecified:        "VmbErrorGenTLUnspecified",
	ErrorUnspecified:             "VmbErrorUnspecified",
	ErrorBusy:                    "VmbErrorBusy",
	ErrorNoData:                  "VmbErrorNoData",
	ErrorParsingChunkData:        "VmbErrorParsingChunkData",
	ErrorInUse:                   "VmbErrorInUse",
	ErrorUnknown:                 "VmbErrorUnknown",
	ErrorXml:                     "VmbErrorXml",
	ErrorNotAvailable:            "VmbErrorNotAvailable",
	ErrorNotInitialized:          "VmbErrorNotInitialized",
	ErrorInvalidAddress:          "VmbErrorInvalidAddress",
	ErrorAlready:                 "VmbErrorAlready",
	ErrorNoChunkData:             "VmbErrorNoChunkData",
	ErrorUserCallbackException:   "VmbErrorUserCallbackException",
	ErrorFeaturesUnavailable:     "VmbErrorFeaturesUnavailable",
	ErrorTLNotFound:              "VmbErrorTLNotFound",
	ErrorAmbiguous:               "VmbErrorAmbiguous",
	ErrorRetriesExceeded:         "VmbErrorRetriesExceeded",
	ErrorInsufficientBufferCount: "VmbErrorInsufficientBufferCount",
	ErrorCustom:                  "VmbErrorCustom",
}

// String returns the symbolic name of the code as spelled in VmbCommonTypes.h.
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("VmbError(%d)", int32(c))
}

// Known reports whether c is one of the codes defined by the API headers.
func (c ErrorCode) Known() bool {
	_, ok := errorCodeNames[c]
	return ok
}

func (c ErrorCode) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// FrameStatus is the receiveStatus of a frame after VmbCaptureFrameWait.
type FrameStatus int32

const (
	FrameStatusComplete   FrameStatus = 0
	FrameStatusIncomplete FrameStatus = -1
	FrameStatusTooSmall   FrameStatus = -2
	FrameStatusInvalid    FrameStatus = -3
)

func (s FrameStatus) String() string {
	switch s {
	case FrameStatusComplete:
		return "complete"
	case FrameStatusIncomplete:
		return "incomplete"
	case FrameStatusTooSmall:
		return "too small"
	case FrameStatusInvalid:
		return "invalid"
	}
	return fmt.Sprintf("status(%d)", int32(s))
}

func (s FrameStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// PixelFormat is a GenICam PFNC pixel format value as reported in VmbFrame_t.
type PixelFormat uint32

const (
	PixelFormatMono8    PixelFormat = 0x01080001
	PixelFormatMono10   PixelFormat = 0x01100003
	PixelFormatMono12   PixelFormat = 0x01100005
	PixelFormatMono14   PixelFormat = 0x01100025
	PixelFormatMono16   PixelFormat = 0x01100007
	PixelFormatBayerGR8 PixelFormat = 0x01080008
	PixelFormatBayerRG8 PixelFormat = 0x01080009
	PixelFormatBayerGB8 PixelFormat = 0x0108000A
	PixelFormatBayerBG8 PixelFormat = 0x0108000B
	PixelFormatRGB8     PixelFormat = 0x02180014
	PixelFormatBGR8     PixelFormat = 0x02180015
	PixelFormatRGBA8    PixelFormat = 0x02200016
	PixelFormatBGRA8    PixelFormat = 0x02200017
)

var pixelFormatNames = map[PixelFormat]string{
	PixelFormatMono8:    "Mono8",
	PixelFormatMono10:   "Mono10",
	PixelFormatMono12:   "Mono12",
	PixelFormatMono14:   "Mono14",
	PixelFormatMono16:   "Mono16",
	PixelFormatBayerGR8: "BayerGR8",
	PixelFormatBayerRG8: "BayerRG8",
	PixelFormatBayerGB8: "BayerGB8",
	PixelFormatBayerBG8: "BayerBG8",
	PixelFormatRGB8:     "RGB8",
	PixelFormatBGR8:     "BGR8",
	PixelFormatRGBA8:    "RGBA8",
	PixelFormatBGRA8:    "BGRA8",
}

func (p PixelFormat) String() string {
	if name, ok := pixelFormatNames[p]; ok {
		return name
	}
	return fmt.Sprintf("0x%08x", uint32(p))
}

// BitsPerPixel is encoded in bits 16..23 of every PFNC value.
func (p PixelFormat) BitsPerPixel() int {
	return int((uint32(p) >> 16) & 0xff)
}

// ParsePixelFormat maps a PixelFormat enum entry name (as returned by the
// PixelFormat feature) to its PFNC value.
func ParsePixelFormat(name string) (PixelFormat, bool) {
	for p, n := range pixelFormatNames {
		if n == name {
			return p, true
		}
	}
	return 0, false
}
