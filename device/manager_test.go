package device

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pixel = Fingerprint{
	Brand:        "google",
	Manufacturer: "Google",
	Model:        "Pixel 7",
	Device:       "panther",
	Board:        "panther",
}

func TestGenerateID(t *testing.T) {
	assert.Equal(t, "043f817355878ce2", GenerateID(pixel))
	assert.Equal(t, GenerateID(pixel), GenerateID(pixel), "stable for the same hardware")

	other := pixel
	other.Board = "cheetah"
	assert.NotEqual(t, GenerateID(pixel), GenerateID(other))
	assert.Len(t, GenerateID(other), 16)
}

func TestGenerateID_EmptyFingerprintFallsBackToUUID(t *testing.T) {
	id := GenerateID(Fingerprint{})
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.NotEqual(t, id, GenerateID(Fingerprint{}))
}

func TestGenerateName(t *testing.T) {
	tests := []struct {
		manufacturer string
		model        string
		want         string
	}{
		{"Google", "Pixel 7", "Google Pixel 7"},
		{"samsung", "SM-G991B", "samsung SM-G991B"},
		{"HUAWEI", "huawei P30", "huawei P30"},
		{"Xiaomi", "Xiaomi 13", "Xiaomi 13"},
		{"", "Model", "Model"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateName(tt.manufacturer, tt.model))
		})
	}
}

func TestNewManager_GeneratesAndPersists(t *testing.T) {
	store := NewMemoryStore()

	m, err := NewManager(store, pixel)
	require.NoError(t, err)

	info := m.Info()
	assert.Equal(t, "043f817355878ce2", info.DeviceID)
	assert.Equal(t, "Google Pixel 7", info.DeviceName)
	assert.False(t, info.IsOnline)

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, info.DeviceID, saved.DeviceID)
}

func TestNewManager_ReloadsStoredIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "identity.yaml")

	first, err := NewManager(NewFileStore(path), Fingerprint{})
	require.NoError(t, err)

	second, err := NewManager(NewFileStore(path), pixel)
	require.NoError(t, err)

	assert.Equal(t, first.Info(), second.Info(), "stored identity wins over the fingerprint")
}

type brokenStore struct{ loadErr, saveErr error }

func (b brokenStore) Load() (Info, error) { return Info{}, b.loadErr }
func (b brokenStore) Save(Info) error     { return b.saveErr }

func TestNewManager_StoreErrors(t *testing.T) {
	cause := errors.New("disk full")

	_, err := NewManager(brokenStore{loadErr: ErrNoIdentity, saveErr: cause}, pixel)
	assert.ErrorIs(t, err, cause)

	_, err = NewManager(brokenStore{loadErr: cause}, pixel)
	assert.ErrorIs(t, err, cause)
}

func TestManager_SetOnline(t *testing.T) {
	m, err := NewManager(NewMemoryStore(), pixel)
	require.NoError(t, err)

	m.SetOnline(true)
	assert.True(t, m.Info().IsOnline)
	m.SetOnline(false)
	assert.False(t, m.Info().IsOnline)
}

func TestHostFingerprint(t *testing.T) {
	fp := HostFingerprint()
	assert.False(t, fp.IsZero())
	assert.NotEmpty(t, fp.Model)
	assert.NotEmpty(t, fp.Board)
}
