package device

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// idBytes is how many leading SHA-256 bytes form a device ID (16 hex chars).
const idBytes = 8

// Manager owns the identity of this device.
type Manager struct {
	mu    sync.RWMutex
	info  Info
	store Store
}

// NewManager loads the identity from store or, on first run, derives one
// from fp and saves it.
//
// Parameters:
//   - store: Where the identity is persisted
//   - fp: Hardware fingerprint used when no identity is stored
//
// Returns:
//   - *Manager: The manager holding the identity
//   - error: A store that cannot be read or written
func NewManager(store Store, fp Fingerprint) (*Manager, error) {
	info, err := store.Load()
	switch {
	case err == nil:
		logrus.WithFields(logrus.Fields{
			"function":    "NewManager",
			"device_id":   info.DeviceID,
			"device_name": info.DeviceName,
		}).Debug("Loaded stored identity")
	case errors.Is(err, ErrNoIdentity):
		info = Info{
			DeviceID:   GenerateID(fp),
			DeviceName: GenerateName(fp.Manufacturer, fp.Model),
		}
		if err := store.Save(info); err != nil {
			return nil, fmt.Errorf("failed to save identity: %w", err)
		}
		logrus.WithFields(logrus.Fields{
			"function":    "NewManager",
			"device_id":   info.DeviceID,
			"device_name": info.DeviceName,
		}).Info("Generated new device identity")
	default:
		return nil, err
	}

	info.IsOnline = false
	return &Manager{info: info, store: store}, nil
}

// Info returns a copy of the identity.
func (m *Manager) Info() Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.info
}

// SetOnline records the presence state last reported to the server.
func (m *Manager) SetOnline(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.info.IsOnline = online
}

// GenerateID hashes the fingerprint with SHA-256 and hex-encodes the first
// eight bytes. An empty fingerprint gets a random UUID instead.
func GenerateID(fp Fingerprint) string {
	if fp.IsZero() {
		return uuid.NewString()
	}
	sum := sha256.Sum256([]byte(fp.String()))
	return hex.EncodeToString(sum[:idBytes])
}

// GenerateName returns model alone when it already starts with the
// manufacturer (case-insensitive), otherwise "manufacturer model".
func GenerateName(manufacturer, model string) string {
	if strings.HasPrefix(strings.ToLower(model), strings.ToLower(manufacturer)) {
		return model
	}
	return manufacturer + " " + model
}

// HostFingerprint describes the machine this process runs on.
func HostFingerprint() Fingerprint {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	machine := hostname
	if id, err := os.ReadFile("/etc/machine-id"); err == nil {
		if s := strings.TrimSpace(string(id)); s != "" {
			machine = s
		}
	}

	return Fingerprint{
		Brand:        runtime.GOOS,
		Manufacturer: runtime.GOOS,
		Model:        hostname,
		Device:       machine,
		Board:        runtime.GOARCH,
	}
}
