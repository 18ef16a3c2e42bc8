//go:build !ci

package sound

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

const sampleRate = beep.SampleRate(44100)

// Manager decodes the effect files once and plays them from memory.
type Manager struct {
	dir     string
	mu      sync.RWMutex
	buffers map[Effect]*beep.Buffer
	enabled bool
}

func NewManager(dir string) *Manager {
	if dir == "" {
		dir = DefaultDir
	}
	return &Manager{
		dir:     dir,
		buffers: make(map[Effect]*beep.Buffer),
	}
}

// Init opens the speaker and loads the effect files. Without a working
// audio device the manager stays silent.
func (m *Manager) Init() error {
	// Small buffer keeps the smash sound close to the key press
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/20)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}

	m.mu.Lock()
	m.enabled = true
	m.mu.Unlock()

	return m.load()
}

// load decodes every mp3/wav file in the sound directory
func (m *Manager) load() error {
	files, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read sound directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(file.Name()))
		if ext != ".mp3" && ext != ".wav" {
			continue
		}
		buf, err := decodeFile(filepath.Join(m.dir, file.Name()), ext)
		if err != nil {
			// One broken file should not silence the rest
			continue
		}

		m.mu.Lock()
		m.buffers[Effect(strings.TrimSuffix(file.Name(), filepath.Ext(file.Name())))] = buf
		m.mu.Unlock()
	}
	return nil
}

func decodeFile(path, ext string) (*beep.Buffer, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		streamer, format, err = wav.Decode(f)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = streamer.Close() }()

	var resampled beep.Streamer = streamer
	if format.SampleRate != sampleRate {
		resampled = beep.Resample(4, format.SampleRate, sampleRate, streamer)
	}

	buf := beep.NewBuffer(beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 4})
	buf.Append(resampled)
	return buf, nil
}

// Play starts the effect without waiting for it to finish. Unknown effects
// are ignored.
func (m *Manager) Play(e Effect) {
	m.mu.RLock()
	buf, ok := m.buffers[e]
	enabled := m.enabled
	m.mu.RUnlock()

	if !enabled || !ok {
		return
	}
	speaker.Play(buf.Streamer(0, buf.Len()))
}

func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enabled {
		m.enabled = false
		speaker.Close()
	}
}

// has reports whether an effect was loaded
func (m *Manager) has(e Effect) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.buffers[e]
	return ok
}
