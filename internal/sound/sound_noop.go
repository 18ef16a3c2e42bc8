//go:build ci

package sound

// Manager is a silent stand-in for builds without audio support.
type Manager struct{}

func NewManager(string) *Manager {
	return &Manager{}
}

func (m *Manager) Init() error {
	return nil
}

func (m *Manager) Play(Effect) {
	// No-op
}

func (m *Manager) Close() {
	// No-op
}
