package vmb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strawlab/vmbc-go/pkg/vmb"
	"github.com/strawlab/vmbc-go/pkg/vmb/vmbtest"
)

func openCamera(t *testing.T, cam *vmbtest.Camera) (*vmb.Camera, *vmbtest.Driver) {
	t.Helper()
	sess, drv := openSession(t, cam)
	c, err := sess.OpenCameraByID(cam.Info.ID, vmb.AccessModeFull)
	require.NoError(t, err)
	return c, drv
}

func TestOpenCamera(t *testing.T) {
	sess, drv := openSession(t, vmbtest.NewCamera("DEV_1"))

	cam, err := sess.OpenCameraByID("DEV_1", vmb.AccessModeFull)
	require.NoError(t, err)
	assert.Equal(t, "DEV_1", cam.Info().ID)
	assert.Equal(t, vmb.AccessModeFull, cam.AccessMode())
	assert.NotZero(t, cam.Handle())

	_, err = sess.OpenCameraByID("DEV_1", vmb.AccessModeRead)
	assert.ErrorIs(t, err, vmb.ErrCameraAlreadyOpen)
	assert.Equal(t, 1, drv.Count(vmb.OpCameraOpen))

	_, err = sess.OpenCameraByID("DEV_7", vmb.AccessModeRead)
	assert.ErrorIs(t, err, vmb.ErrCameraNotFound)

	_, err = sess.OpenCamera(vmb.CameraInfo{ID: "bad\x00id"}, vmb.AccessModeRead)
	assert.ErrorIs(t, err, vmb.ErrCameraNotFound)
}

func TestOpenCameraAccessDenied(t *testing.T) {
	busy := vmbtest.NewCamera("DEV_1")
	busy.Busy = true
	sess, _ := openSession(t, busy)

	_, err := sess.OpenCamera(busy.Info, vmb.AccessModeFull)
	assert.ErrorIs(t, err, vmb.ErrAccessDenied)

	var apiErr *vmb.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, vmb.OpCameraOpen, apiErr.Op)
	assert.Contains(t, err.Error(), "VmbErrorInvalidAccess (-6)")
}

func TestCameraDoubleClose(t *testing.T) {
	cam, drv := openCamera(t, vmbtest.NewCamera("DEV_1"))

	require.NoError(t, cam.Close())
	require.NoError(t, cam.Close())
	assert.Equal(t, 1, drv.Count(vmb.OpCameraClose))
	assert.Zero(t, drv.OpenHandles())

	_, err := cam.FeatureInt(vmb.FeaturePayloadSize)
	assert.ErrorIs(t, err, vmb.ErrCameraClosed)
}

func TestReopenAfterClose(t *testing.T) {
	mock := vmbtest.NewCamera("DEV_1")
	sess, _ := openSession(t, mock)

	cam, err := sess.OpenCamera(mock.Info, vmb.AccessModeFull)
	require.NoError(t, err)
	require.NoError(t, cam.Close())

	cam, err = sess.OpenCamera(mock.Info, vmb.AccessModeFull)
	require.NoError(t, err)
	assert.NoError(t, cam.Close())
}

func TestFeatures(t *testing.T) {
	cam, _ := openCamera(t, vmbtest.NewCamera("DEV_1"))

	payload, err := cam.PayloadSize()
	require.NoError(t, err)
	assert.EqualValues(t, 1024, payload)

	width, err := cam.FeatureInt(vmb.FeatureWidth)
	require.NoError(t, err)
	assert.EqualValues(t, 640, width)

	exposure, err := cam.FeatureFloat("ExposureTime")
	require.NoError(t, err)
	assert.InDelta(t, 5000.0, exposure, 1e-9)

	reverse, err := cam.FeatureBool("ReverseX")
	require.NoError(t, err)
	assert.False(t, reverse)

	pf, err := cam.FeatureEnum(vmb.FeaturePixelFormat)
	require.NoError(t, err)
	assert.Equal(t, "Mono8", pf)

	fw, err := cam.FeatureString(vmb.FeatureDeviceFirmwareVersion)
	require.NoError(t, err)
	assert.Equal(t, "00.01.00.mock", fw)

	assert.NoError(t, cam.RunCommand(vmb.FeatureAcquisitionStop))
}

func TestFeatureEnumIsCopied(t *testing.T) {
	mock := vmbtest.NewCamera("DEV_1")
	cam, _ := openCamera(t, mock)

	first, err := cam.FeatureEnum(vmb.FeaturePixelFormat)
	require.NoError(t, err)

	// the driver reuses its storage for the next read
	mock.Features[vmb.FeaturePixelFormat] = vmbtest.Enum("RGB8")
	second, err := cam.FeatureEnum(vmb.FeaturePixelFormat)
	require.NoError(t, err)

	assert.Equal(t, "Mono8", first)
	assert.Equal(t, "RGB8", second)
}

func TestFeatureErrors(t *testing.T) {
	cam, drv := openCamera(t, vmbtest.NewCamera("DEV_1"))

	_, err := cam.FeatureInt("NoSuchFeature")
	assert.ErrorIs(t, err, vmb.ErrFeatureNotFound)

	_, err = cam.FeatureEnum(vmb.FeatureWidth)
	assert.ErrorIs(t, err, vmb.ErrTypeMismatch)

	_, err = cam.FeatureString(vmb.FeaturePayloadSize)
	assert.ErrorIs(t, err, vmb.ErrTypeMismatch)

	drv.Fail(vmb.OpFeatureBoolGet, vmb.ErrorInvalidAccess)
	_, err = cam.FeatureBool("ReverseX")
	assert.ErrorIs(t, err, vmb.ErrAccessDenied)

	before := len(drv.Calls())
	_, err = cam.FeatureInt("")
	assert.ErrorIs(t, err, vmb.ErrInvalidFeatureName)
	_, err = cam.FeatureEnum("Pixel\x00Format")
	assert.ErrorIs(t, err, vmb.ErrInvalidFeatureName)
	assert.ErrorIs(t, cam.RunCommand(""), vmb.ErrInvalidFeatureName)
	assert.Len(t, drv.Calls(), before, "invalid names never reach the library")
}
