package vmb

// Cameras lists the cameras currently visible to the API.
//
// The count is queried first, a buffer of that size is filled, and the two
// counts must agree: a camera plugged or unplugged in between yields an
// *EnumerationRaceError instead of a truncated list. Strings are copied out
// of library memory before the session lock is released.
func (s *Session) Cameras() ([]CameraInfo, error) {
	var cameras []CameraInfo
	err := s.do(func() error {
		var count uint32
		if err := check(OpCamerasList, s.drv.CamerasList(nil, 0, &count, rawCameraInfoSize)); err != nil {
			return err
		}
		if count == 0 {
			cameras = []CameraInfo{}
			return nil
		}

		raw := make([]RawCameraInfo, count)
		var found uint32
		code := s.drv.CamerasList(&raw[0], count, &found, rawCameraInfoSize)
		if code == ErrorMoreData {
			return &EnumerationRaceError{Expected: count, Found: found}
		}
		if err := check(OpCamerasList, code); err != nil {
			return err
		}
		if found != count {
			return &EnumerationRaceError{Expected: count, Found: found}
		}

		cameras = make([]CameraInfo, count)
		for i := range raw {
			cameras[i] = raw[i].Describe()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("enumerated cameras", "count", len(cameras))
	return cameras, nil
}

// Camera finds a camera by id, extended id or serial number.
func (s *Session) Camera(id string) (CameraInfo, error) {
	cameras, err := s.Cameras()
	if err != nil {
		return CameraInfo{}, err
	}
	for _, c := range cameras {
		if c.ID == id || (c.ExtendedID != "" && c.ExtendedID == id) || (c.Serial != "" && c.Serial == id) {
			return c, nil
		}
	}
	return CameraInfo{}, ErrCameraNotFound
}
