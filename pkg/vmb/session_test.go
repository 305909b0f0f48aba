package vmb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strawlab/vmbc-go/pkg/vmb"
	"github.com/strawlab/vmbc-go/pkg/vmb/vmbtest"
)

func openSession(t *testing.T, cameras ...*vmbtest.Camera) (*vmb.Session, *vmbtest.Driver) {
	t.Helper()
	drv := vmbtest.New(cameras...)
	sess, err := vmb.Open(drv)
	require.NoError(t, err)
	t.Cleanup(func() { sess.Close() })
	return sess, drv
}

func TestSessionLifecycle(t *testing.T) {
	sess, drv := openSession(t)

	assert.True(t, sess.Active())
	assert.NotEmpty(t, sess.ID())
	assert.True(t, drv.Started())

	v, err := sess.Version()
	require.NoError(t, err)
	assert.Equal(t, "1.0.4", v.String())

	require.NoError(t, sess.Close())
	assert.False(t, sess.Active())
	assert.False(t, drv.Started())

	_, err = sess.Cameras()
	assert.ErrorIs(t, err, vmb.ErrSessionClosed)
}

func TestDoubleShutdown(t *testing.T) {
	sess, drv := openSession(t)

	require.NoError(t, sess.Close())
	require.NoError(t, sess.Close())
	assert.Equal(t, 1, drv.Count(vmb.OpShutdown))
	assert.Equal(t, 1, drv.Count(vmb.OpStartup))
}

func TestSingleActiveSession(t *testing.T) {
	sess, _ := openSession(t)

	other := vmbtest.New()
	_, err := vmb.Open(other)
	assert.ErrorIs(t, err, vmb.ErrSessionActive)
	assert.Empty(t, other.Calls(), "no vendor call while another session is active")

	require.NoError(t, sess.Close())

	again, err := vmb.Open(other)
	require.NoError(t, err)
	assert.NoError(t, again.Close())
}

func TestStartupFailure(t *testing.T) {
	drv := vmbtest.New()
	drv.Fail(vmb.OpStartup, vmb.ErrorNoTL)

	_, err := vmb.Open(drv)
	var apiErr *vmb.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, vmb.OpStartup, apiErr.Op)
	assert.Equal(t, vmb.ErrorNoTL, apiErr.Code)
	assert.Zero(t, drv.Count(vmb.OpShutdown))

	// the guard is released
	drv.Clear(vmb.OpStartup)
	sess, err := vmb.Open(drv)
	require.NoError(t, err)
	assert.NoError(t, sess.Close())
}

func TestSessionCloseClosesCameras(t *testing.T) {
	sess, drv := openSession(t, vmbtest.NewCamera("DEV_1"), vmbtest.NewCamera("DEV_2"))

	cameras, err := sess.Cameras()
	require.NoError(t, err)
	for _, info := range cameras {
		_, err := sess.OpenCamera(info, vmb.AccessModeFull)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, drv.OpenHandles())

	require.NoError(t, sess.Close())
	assert.Equal(t, 2, drv.Count(vmb.OpCameraClose))

	calls := drv.Calls()
	assert.Equal(t, vmb.OpShutdown, calls[len(calls)-1])
}

func TestEnumerate(t *testing.T) {
	sess, drv := openSession(t, vmbtest.NewCamera("DEV_1"), vmbtest.NewCamera("DEV_2"))

	cameras, err := sess.Cameras()
	require.NoError(t, err)
	require.Len(t, cameras, 2)
	assert.Equal(t, "DEV_1", cameras[0].ID)
	assert.Equal(t, "SN-DEV_2", cameras[1].Serial)
	assert.Equal(t, "Mock-640", cameras[1].Model)
	assert.True(t, cameras[0].PermittedAccess.Has(vmb.AccessModeFull))
	assert.Equal(t, 2, drv.Count(vmb.OpCamerasList))

	info, err := sess.Camera("SN-DEV_2")
	require.NoError(t, err)
	assert.Equal(t, "DEV_2", info.ID)

	_, err = sess.Camera("DEV_9")
	assert.ErrorIs(t, err, vmb.ErrCameraNotFound)
}

func TestEnumerateEmpty(t *testing.T) {
	sess, drv := openSession(t)

	cameras, err := sess.Cameras()
	require.NoError(t, err)
	assert.NotNil(t, cameras)
	assert.Empty(t, cameras)
	assert.Equal(t, 1, drv.Count(vmb.OpCamerasList), "no fill call for zero cameras")
}

func TestEnumerationRace(t *testing.T) {
	tests := []struct {
		name     string
		hotplug  func(d *vmbtest.Driver)
		expected uint32
	}{
		{
			name:     "camera added",
			hotplug:  func(d *vmbtest.Driver) { d.AddCamera(vmbtest.NewCamera("DEV_3")) },
			expected: 2,
		},
		{
			name:     "camera removed",
			hotplug:  func(d *vmbtest.Driver) { d.RemoveCamera("DEV_2") },
			expected: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, drv := openSession(t, vmbtest.NewCamera("DEV_1"), vmbtest.NewCamera("DEV_2"))
			drv.AfterCount = tt.hotplug

			cameras, err := sess.Cameras()
			assert.ErrorIs(t, err, vmb.ErrEnumerationRace)
			assert.Nil(t, cameras, "no partial list")

			var race *vmb.EnumerationRaceError
			require.ErrorAs(t, err, &race)
			assert.Equal(t, tt.expected, race.Expected)
			assert.NotEqual(t, race.Expected, race.Found)

			// a retry sees a stable topology
			cameras, err = sess.Cameras()
			require.NoError(t, err)
			assert.Len(t, cameras, int(race.Found))
		})
	}
}
