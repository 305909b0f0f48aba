package vmb

import (
	"strings"

	"github.com/pkg/errors"
)

// Well known feature names from the GenICam SFNC.
const (
	FeaturePayloadSize           = "PayloadSize"
	FeaturePixelFormat           = "PixelFormat"
	FeatureWidth                 = "Width"
	FeatureHeight                = "Height"
	FeatureDeviceFirmwareVersion = "DeviceFirmwareVersion"
	FeatureAcquisitionStart      = "AcquisitionStart"
	FeatureAcquisitionStop       = "AcquisitionStop"
)

func validateFeatureName(name string) error {
	if name == "" {
		return errors.Wrap(ErrInvalidFeatureName, "empty name")
	}
	if strings.IndexByte(name, 0) >= 0 {
		return errors.Wrapf(ErrInvalidFeatureName, "%q contains a NUL byte", name)
	}
	return nil
}

// FeatureInt reads an integer feature.
func (c *Camera) FeatureInt(name string) (int64, error) {
	if err := validateFeatureName(name); err != nil {
		return 0, err
	}
	c.lock()
	defer c.unlock()
	return c.featureIntLocked(name)
}

func (c *Camera) featureIntLocked(name string) (int64, error) {
	var v int64
	err := c.call(func() error {
		return checkFeature(OpFeatureIntGet, name, c.sess.drv.FeatureIntGet(c.handle, name, &v))
	})
	return v, err
}

// FeatureFloat reads a float feature.
func (c *Camera) FeatureFloat(name string) (float64, error) {
	if err := validateFeatureName(name); err != nil {
		return 0, err
	}
	c.lock()
	defer c.unlock()

	var v float64
	err := c.call(func() error {
		return checkFeature(OpFeatureFloatGet, name, c.sess.drv.FeatureFloatGet(c.handle, name, &v))
	})
	return v, err
}

// FeatureBool reads a boolean feature.
func (c *Camera) FeatureBool(name string) (bool, error) {
	if err := validateFeatureName(name); err != nil {
		return false, err
	}
	c.lock()
	defer c.unlock()

	var v uint8
	err := c.call(func() error {
		return checkFeature(OpFeatureBoolGet, name, c.sess.drv.FeatureBoolGet(c.handle, name, &v))
	})
	return v != 0, err
}

// FeatureEnum reads the current entry of an enumeration feature. The entry
// name is copied before the library can reuse its storage.
func (c *Camera) FeatureEnum(name string) (string, error) {
	if err := validateFeatureName(name); err != nil {
		return "", err
	}
	c.lock()
	defer c.unlock()

	var v string
	err := c.call(func() error {
		var p uintptr
		if err := checkFeature(OpFeatureEnumGet, name, c.sess.drv.FeatureEnumGet(c.handle, name, &p)); err != nil {
			return err
		}
		v = goString(p)
		return nil
	})
	return v, err
}

// FeatureString reads a string feature. The required size is queried first
// so values of any length are returned whole.
func (c *Camera) FeatureString(name string) (string, error) {
	if err := validateFeatureName(name); err != nil {
		return "", err
	}
	c.lock()
	defer c.unlock()

	var v string
	err := c.call(func() error {
		var size uint32
		if err := checkFeature(OpFeatureStringGet, name, c.sess.drv.FeatureStringGet(c.handle, name, nil, 0, &size)); err != nil {
			return err
		}
		if size == 0 {
			return nil
		}

		buf := make([]byte, size)
		var filled uint32
		if err := checkFeature(OpFeatureStringGet, name, c.sess.drv.FeatureStringGet(c.handle, name, &buf[0], size, &filled)); err != nil {
			return err
		}
		buf = buf[:min(filled, size)]
		if i := strings.IndexByte(string(buf), 0); i >= 0 {
			buf = buf[:i]
		}
		v = string(buf)
		return nil
	})
	return v, err
}

// RunCommand executes a command feature such as AcquisitionStart.
func (c *Camera) RunCommand(name string) error {
	if err := validateFeatureName(name); err != nil {
		return err
	}
	c.lock()
	defer c.unlock()
	return c.runCommandLocked(name)
}

func (c *Camera) runCommandLocked(name string) error {
	return c.call(func() error {
		return checkFeature(OpFeatureCommandRun, name, c.sess.drv.FeatureCommandRun(c.handle, name))
	})
}

// PayloadSize returns the number of bytes one frame occupies.
func (c *Camera) PayloadSize() (int64, error) {
	return c.FeatureInt(FeaturePayloadSize)
}
