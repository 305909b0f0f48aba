package vmb

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/vishalkuo/bimap"
	"k8s.io/utils/keymutex"
)

// The underlying SDK keeps process wide driver state, so only one Session
// may be active at a time.
var (
	activeMu sync.Mutex
	active   *Session
)

// Session is the started state of the API, bounded by VmbStartup and
// VmbShutdown. All driver calls made through a Session, its cameras and
// their captures are serialised on one mutex.
type Session struct {
	id  string
	drv Driver
	log *slog.Logger

	mu      sync.Mutex
	active  bool
	closing bool
	cameras []*Camera
	handles *bimap.BiMap[string, Handle]

	// camLock serialises open, close and capture transitions per camera id.
	camLock keymutex.KeyMutex
}

// Open starts the API on d. It fails with ErrSessionActive, without calling
// into the library, while another Session is active in the process.
func Open(d Driver) (*Session, error) {
	activeMu.Lock()
	defer activeMu.Unlock()

	if active != nil {
		return nil, ErrSessionActive
	}

	if err := check(OpStartup, d.Startup()); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	s := &Session{
		id:      id,
		drv:     d,
		log:     logger().With("session", id),
		active:  true,
		handles: bimap.NewBiMap[string, Handle](),
		camLock: keymutex.NewHashed(0),
	}
	active = s
	s.log.Debug("API started")
	return s, nil
}

// ID returns a random identifier used to correlate log lines.
func (s *Session) ID() string {
	return s.id
}

// Active reports whether Close has not been called yet.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active && !s.closing
}

// Close closes every camera still open (tearing down their captures) and
// then shuts the API down. Shutdown is issued exactly once; later calls are
// no-ops. Failures while closing cameras are returned but never prevent the
// shutdown.
func (s *Session) Close() error {
	s.mu.Lock()
	if !s.active || s.closing {
		s.mu.Unlock()
		return nil
	}
	s.closing = true
	cameras := append([]*Camera(nil), s.cameras...)
	s.mu.Unlock()

	var first error
	for _, c := range cameras {
		if err := c.Close(); err != nil {
			if first == nil {
				first = err
			} else {
				s.log.Warn("failed to close camera during shutdown", "camera", c.info.ID, "error", err)
			}
		}
	}

	s.mu.Lock()
	s.drv.Shutdown()
	s.active = false
	s.mu.Unlock()

	activeMu.Lock()
	if active == s {
		active = nil
	}
	activeMu.Unlock()

	s.log.Debug("API shut down")
	return first
}

// Version queries the version of the loaded API.
func (s *Session) Version() (VersionInfo, error) {
	var v VersionInfo
	err := s.do(func() error {
		return check(OpVersionQuery, s.drv.VersionQuery(&v, versionInfoSize))
	})
	return v, err
}

// do runs fn with the session lock held, after checking the API is started.
func (s *Session) do(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return ErrSessionClosed
	}
	return fn()
}
